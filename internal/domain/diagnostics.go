package domain

import "time"

// DiagnosticStatus indicates whether a single backend check passed.
type DiagnosticStatus string

const (
	DiagnosticStatusPass DiagnosticStatus = "pass"
	DiagnosticStatusFail DiagnosticStatus = "fail"
)

// DiagnosticItem is one reachability check result with an optional hint.
type DiagnosticItem struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Endpoint  string           `json:"endpoint"`
	Status    DiagnosticStatus `json:"status"`
	Message   string           `json:"message"`
	Hint      string           `json:"hint,omitempty"`
	LatencyMS int64            `json:"latencyMs"`
}

// DiagnosticReport aggregates backend checks for the UI and the doctor command.
type DiagnosticReport struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	HasFailures bool             `json:"hasFailures"`
	Items       []DiagnosticItem `json:"items"`
}
