// Package timezones resolves the IANA zone names accepted by date filters.
package timezones

import (
	"fmt"
	"sync"
	"time"
)

type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region,omitempty"`
}

var curated = []Zone{
	{ID: "UTC", Label: "UTC", Region: "Other"},
	{ID: "America/New_York", Label: "Eastern Time (US)", Region: "Americas"},
	{ID: "America/Chicago", Label: "Central Time (US)", Region: "Americas"},
	{ID: "America/Denver", Label: "Mountain Time (US)", Region: "Americas"},
	{ID: "America/Phoenix", Label: "Arizona", Region: "Americas"},
	{ID: "America/Los_Angeles", Label: "Pacific Time (US)", Region: "Americas"},
	{ID: "America/Anchorage", Label: "Alaska", Region: "Americas"},
	{ID: "Pacific/Honolulu", Label: "Hawaii", Region: "Americas"},
	{ID: "America/Sao_Paulo", Label: "Brasilia", Region: "Americas"},
	{ID: "Europe/London", Label: "London", Region: "Europe"},
	{ID: "Europe/Berlin", Label: "Central Europe", Region: "Europe"},
	{ID: "Europe/Athens", Label: "Eastern Europe", Region: "Europe"},
	{ID: "Africa/Johannesburg", Label: "South Africa", Region: "Africa"},
	{ID: "Asia/Kolkata", Label: "India", Region: "Asia"},
	{ID: "Asia/Shanghai", Label: "China", Region: "Asia"},
	{ID: "Asia/Tokyo", Label: "Japan", Region: "Asia"},
	{ID: "Australia/Sydney", Label: "Sydney", Region: "Oceania"},
}

var (
	byID = func() map[string]Zone {
		m := make(map[string]Zone, len(curated))
		for _, z := range curated {
			m[z.ID] = z
		}
		return m
	}()

	locMu sync.Mutex
	locs  = map[string]*time.Location{}
)

// All returns the curated list of zones in a stable order.
func All() []Zone {
	out := make([]Zone, len(curated))
	copy(out, curated)
	return out
}

// Label returns the human-friendly label for an ID, or the ID itself if not found.
func Label(id string) string {
	if z, ok := byID[id]; ok {
		return z.Label
	}
	return id
}

// Valid reports whether the given ID exists in the curated list.
func Valid(id string) bool {
	_, ok := byID[id]
	return ok
}

// Location loads a curated zone. An empty id is UTC.
func Location(id string) (*time.Location, error) {
	if id == "" || id == "UTC" {
		return time.UTC, nil
	}
	if !Valid(id) {
		return nil, fmt.Errorf("unknown time zone %q", id)
	}

	locMu.Lock()
	defer locMu.Unlock()
	if loc, ok := locs[id]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, err
	}
	locs[id] = loc
	return loc, nil
}
