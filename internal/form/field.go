// Package form is the declarative form engine behind echo reports.
// It holds the field catalogue, the per-report form state, derived field
// evaluation, conditional visibility, submission validation and the mapping
// of a finished form onto a persisted record.
package form

import "slices"

// InputKind identifies how a field is entered.
type InputKind string

const (
	KindText   InputKind = "short-text"
	KindNumber InputKind = "numeric"
	KindDate   InputKind = "date"
	KindChoice InputKind = "single-choice"
)

// Valid reports whether k is a known input kind.
func (k InputKind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindDate, KindChoice:
		return true
	}
	return false
}

// Field is an immutable field definition.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    InputKind `json:"kind"`
	Section string    `json:"section"`
	Options []string  `json:"options,omitempty"` // single-choice only

	Required bool `json:"required,omitempty"`
	Computed bool `json:"computed,omitempty"` // value owned by a derivation

	// ControlledBy names the field whose value activates this one.
	// Empty for unconditional fields.
	ControlledBy string   `json:"controlledBy,omitempty"`
	ActivatedBy  []string `json:"activatedBy,omitempty"`

	Suffix      string `json:"suffix,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Tooltip     string `json:"tooltip,omitempty"`
}

// Conditional reports whether the field is only active under a controlling value.
func (f Field) Conditional() bool {
	return f.ControlledBy != ""
}

// Default returns the value a fresh form holds for this field.
func (f Field) Default() string {
	if f.Kind == KindChoice && len(f.Options) > 0 {
		return f.Options[0]
	}
	return ""
}

// ActivatedByValue reports whether value is one of the field's activation values.
func (f Field) ActivatedByValue(value string) bool {
	return slices.Contains(f.ActivatedBy, value)
}

func (f Field) clone() Field {
	f.Options = slices.Clone(f.Options)
	f.ActivatedBy = slices.Clone(f.ActivatedBy)
	return f
}
