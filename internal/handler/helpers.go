// Package handler implements the JSON API. Handlers validate input, call
// into stores and the ledger, broadcast change events, and reply with
// writeJSON; business rules live below this layer.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/moresby/homestead/internal/dates"
)

// profileHeader selects which profile a request acts as. The app runs on
// a shared device with no accounts; the client sends the active profile.
const profileHeader = "X-Profile-ID"

const defaultProfileID = 1

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parseDateParam reads a YYYY-MM-DD path segment.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	return dates.Parse(r.PathValue(name))
}

// requestProfileID resolves the acting profile from the request header,
// falling back to the seeded default profile.
func requestProfileID(r *http.Request) int64 {
	if v := r.Header.Get(profileHeader); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return defaultProfileID
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
