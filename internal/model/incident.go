package model

import "time"

// Incident is one tracked failure episode. ResolvedAt nil means unresolved.
type Incident struct {
	ID           int64
	JobType      string
	Provider     string
	Event        string
	Ticker       string
	ErrorMessage string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
	ResolvedBy   string
}

type VendorEvent struct {
	ID        int64
	Provider  string
	Event     string
	OK        bool
	LatencyMS int64
	CreatedAt time.Time
}
