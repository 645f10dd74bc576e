package form

import (
	"fmt"
	"strings"
)

// Result is the outcome of validating a form.
type Result struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Field   string   `json:"field,omitempty"`   // first offending field
	Missing []string `json:"missing,omitempty"` // all missing base-required fields
}

// Err returns nil for a valid result and a *ValidationFailure otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationFailure{Field: r.Field, Reason: r.Reason}
}

// Validate checks required fields. Base-required fields are checked first,
// all together, then active required conditional fields one at a time in
// declaration order. The first failing step wins; values are not
// type-checked.
func Validate(s *State) Result {
	var missing, labels []string
	for _, f := range s.schema.fields {
		if f.Required && !f.Conditional() && blank(s.values[f.Name]) {
			missing = append(missing, f.Name)
			labels = append(labels, f.Label)
		}
	}
	if len(missing) > 0 {
		return Result{
			Reason:  "please fill in required fields: " + strings.Join(labels, ", "),
			Field:   missing[0],
			Missing: missing,
		}
	}

	for _, f := range s.schema.fields {
		if !f.Required || !f.Conditional() || !s.active(f) {
			continue
		}
		if blank(s.values[f.Name]) {
			return Result{
				Reason: fmt.Sprintf("%s is %q, so %s is required",
					f.ControlledBy, s.values[f.ControlledBy], f.Label),
				Field: f.Name,
			}
		}
	}
	return Result{Valid: true}
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
