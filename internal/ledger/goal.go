package ledger

import (
	"time"

	"github.com/moresby/homestead/internal/model"
)

// GoalResult summarizes one auto-check evaluation pass.
type GoalResult struct {
	Evaluated int `json:"evaluated"`
	Checked   int `json:"checked"`
	Unchecked int `json:"unchecked"`
}

func goalMet(value, goal float64, op model.GoalOperator) bool {
	switch op {
	case model.OpGTE:
		return value >= goal
	case model.OpLTE:
		return value <= goal
	case model.OpEQ:
		return value == goal
	}
	return false
}

// ApplyGoalChecks evaluates metric samples against every auto-check task's
// goal for the date, checking tasks whose goal is met and unchecking
// previously checked tasks whose goal no longer holds (metric sources can
// revise a day's value downward after a later sync).
func (l *Ledger) ApplyGoalChecks(date time.Time, profileID int64) (GoalResult, error) {
	var res GoalResult

	tasks, err := l.tasks.ListGoalTasks(profileID)
	if err != nil {
		return res, err
	}

	for _, t := range tasks {
		res.Evaluated++

		sample, err := l.metrics.Get(profileID, date, t.GoalMetricType)
		if err != nil {
			return res, err
		}

		met := sample != nil && t.GoalValue != nil && goalMet(sample.Value, *t.GoalValue, t.GoalOperator)
		if met {
			if _, err := l.SetCheck(date, t.ID, true, profileID); err != nil {
				return res, err
			}
			res.Checked++
			continue
		}

		existing, err := l.checks.Get(date, t.ID)
		if err != nil {
			return res, err
		}
		if existing != nil && existing.Checked {
			if _, err := l.SetCheck(date, t.ID, false, profileID); err != nil {
				return res, err
			}
			res.Unchecked++
		}
	}
	return res, nil
}
