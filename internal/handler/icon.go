package handler

import "strings"

type iconRule struct {
	keyword string
	icon    string
}

// Keyword rules are ordered; the first substring match wins.
var taskIconRules = []iconRule{
	{"walk", "walk"},
	{"step", "shoe-print"},
	{"run", "run"},
	{"exercise", "dumbbell"},
	{"workout", "weight-lifter"},
	{"gym", "weight-lifter"},
	{"yoga", "yoga"},
	{"stretch", "human-handsup"},
	{"bike", "bike"},
	{"swim", "swim"},
	{"sleep", "sleep"},
	{"rest", "bed"},
	{"meditate", "meditation"},
	{"medicine", "pill"},
	{"vitamin", "pill"},
	{"water", "water"},
	{"hydrate", "cup-water"},
	{"eat", "food-apple"},
	{"meal", "silverware-fork-knife"},
	{"breakfast", "coffee"},
	{"lunch", "food"},
	{"dinner", "food-turkey"},
	{"cook", "chef-hat"},
	{"protein", "food-steak"},
	{"vegetable", "carrot"},
	{"fruit", "food-apple"},
	{"read", "book-open-variant"},
	{"book", "book"},
	{"study", "school"},
	{"learn", "head-lightbulb"},
	{"write", "pencil"},
	{"journal", "notebook"},
	{"plan", "calendar-check"},
	{"hobby", "palette"},
	{"creative", "brush"},
	{"art", "palette"},
	{"music", "music"},
	{"play", "gamepad-variant"},
	{"practice", "music-note"},
	{"guitar", "guitar-acoustic"},
	{"piano", "piano"},
	{"call", "phone"},
	{"text", "message"},
	{"family", "account-group"},
	{"friend", "account-multiple"},
	{"social", "account-group"},
	{"work", "briefcase"},
	{"email", "email"},
	{"meeting", "calendar-account"},
	{"project", "folder-multiple"},
	{"shower", "shower"},
	{"skincare", "face-woman"},
	{"teeth", "tooth"},
	{"brush", "toothbrush"},
	{"floss", "tooth"},
	{"clean", "broom"},
	{"laundry", "washing-machine"},
	{"dishes", "dishwasher"},
	{"trash", "delete"},
	{"active", "run-fast"},
	{"minute", "clock-outline"},
	{"time", "clock"},
	{"daily", "calendar-today"},
	{"goal", "flag-checkered"},
}

var householdIconRules = []iconRule{
	{"clean", "spray-bottle"},
	{"vacuum", "robot-vacuum"},
	{"mop", "water"},
	{"dust", "weather-dust"},
	{"sweep", "broom"},
	{"scrub", "dishwasher"},
	{"wipe", "paper-roll"},
	{"toilet", "toilet"},
	{"bathroom", "shower"},
	{"shower", "shower"},
	{"bath", "bathtub"},
	{"kitchen", "silverware-fork-knife"},
	{"dish", "dishwasher"},
	{"oven", "stove"},
	{"microwave", "microwave"},
	{"refrigerator", "fridge"},
	{"fridge", "fridge"},
	{"laundry", "washing-machine"},
	{"wash", "tshirt-crew"},
	{"dry", "tumble-dryer"},
	{"iron", "iron"},
	{"lawn", "grass"},
	{"mow", "lawnmower"},
	{"garden", "flower"},
	{"plant", "sprout"},
	{"leaf", "leaf"},
	{"leaves", "leaf"},
	{"yard", "tree"},
	{"gutter", "home-roof"},
	{"fix", "wrench"},
	{"repair", "tools"},
	{"replace", "swap-horizontal"},
	{"filter", "air-filter"},
	{"hvac", "air-conditioner"},
	{"air", "air-conditioner"},
	{"check", "clipboard-check"},
	{"inspect", "magnify"},
	{"test", "test-tube"},
	{"trash", "delete"},
	{"garbage", "delete"},
	{"recycle", "recycle"},
	{"compost", "sprout"},
	{"pet", "paw"},
	{"dog", "dog"},
	{"cat", "cat"},
	{"feed", "bowl-mix"},
	{"car", "car"},
	{"vehicle", "car-wash"},
	{"oil", "oil"},
	{"window", "window-closed"},
	{"door", "door"},
	{"lock", "lock"},
	{"water", "water"},
	{"paint", "format-paint"},
	{"organize", "folder-multiple"},
}

func matchIcon(rules []iconRule, title, fallback string) string {
	lower := strings.ToLower(title)
	for _, r := range rules {
		if strings.Contains(lower, r.keyword) {
			return r.icon
		}
	}
	return fallback
}

// defaultTaskIcon picks a Material Design icon from title keywords.
func defaultTaskIcon(title string) string {
	return matchIcon(taskIconRules, title, "check-circle")
}

func defaultHouseholdIcon(title string) string {
	return matchIcon(householdIconRules, title, "checkbox-marked-circle")
}
