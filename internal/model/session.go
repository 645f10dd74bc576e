package model

import "time"

// Draft is the persisted form of an in-progress report session. Values hold
// user-entered fields only; computed fields are re-derived on restore.
type Draft struct {
	ID          string            `json:"id"`
	ClinicianID string            `json:"clinicianId"`
	Values      map[string]string `json:"values"`
	StartedAt   time.Time         `json:"startedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// SessionView is what a client sees of a session.
type SessionView struct {
	ID        string            `json:"id"`
	Values    map[string]string `json:"values"`
	Active    []string          `json:"active"`
	Validity  ValidityView      `json:"validity"`
	StartedAt time.Time         `json:"startedAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ValidityView reports whether the session would pass submission.
type ValidityView struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Field   string   `json:"field,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// FieldUpdate is the response to a single field write: every value that
// changed, computed ones included, and the resulting active set.
type FieldUpdate struct {
	SessionID string        `json:"sessionId"`
	Changes   []FieldChange `json:"changes"`
	Active    []string      `json:"active"`
}

// FieldChange mirrors one value transition.
type FieldChange struct {
	Field    string `json:"field"`
	Old      string `json:"old"`
	New      string `json:"new"`
	Computed bool   `json:"computed,omitempty"`
}

// SubmitResult is returned after a successful submission.
type SubmitResult struct {
	ReportID    string    `json:"reportId"`
	SubmittedAt time.Time `json:"submittedAt"`
}
