package form

// IsActive reports whether the named field is currently active. Unconditional
// fields are always active; a conditional field is active when its
// controlling field holds one of its activation values. Nothing is cached,
// so the answer always reflects the latest state.
func (s *State) IsActive(name string) (bool, error) {
	f, ok := s.schema.Field(name)
	if !ok {
		return false, &UnknownFieldError{Name: name}
	}
	return s.active(f), nil
}

func (s *State) active(f Field) bool {
	if !f.Conditional() {
		return true
	}
	return f.ActivatedByValue(s.values[f.ControlledBy])
}

// ActiveFields returns the names of all currently active fields in
// declaration order.
func (s *State) ActiveFields() []string {
	out := make([]string, 0, len(s.schema.fields))
	for _, f := range s.schema.fields {
		if s.active(f) {
			out = append(out, f.Name)
		}
	}
	return out
}
