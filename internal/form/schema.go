package form

import (
	"fmt"
	"slices"
)

// Schema is the ordered, validated field catalogue. It is read-only once built.
type Schema struct {
	fields      []Field
	index       map[string]int
	sections    []string
	derivations []Derivation
	eval        *evaluator
}

// NewSchema validates the definitions and derivations and builds a schema.
// Every integrity problem is reported at once in a *SchemaError.
func NewSchema(fields []Field, derivations []Derivation) (*Schema, error) {
	s := &Schema{
		index: make(map[string]int, len(fields)),
	}
	var problems []string
	problem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, f := range fields {
		if f.Name == "" {
			problem("field #%d has no name", i)
			continue
		}
		if _, dup := s.index[f.Name]; dup {
			problem("duplicate field %q", f.Name)
			continue
		}
		if !f.Kind.Valid() {
			problem("field %q has unknown kind %q", f.Name, f.Kind)
		}
		if f.Kind == KindChoice && len(f.Options) == 0 {
			problem("choice field %q has no options", f.Name)
		}
		if f.Conditional() && len(f.ActivatedBy) == 0 {
			problem("conditional field %q has no activation values", f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f.clone())
		if !slices.Contains(s.sections, f.Section) {
			s.sections = append(s.sections, f.Section)
		}
	}

	for _, f := range s.fields {
		if !f.Conditional() {
			continue
		}
		if f.ControlledBy == f.Name {
			problem("field %q controls itself", f.Name)
			continue
		}
		if _, ok := s.index[f.ControlledBy]; !ok {
			problem("field %q is controlled by unknown field %q", f.Name, f.ControlledBy)
		}
	}
	if len(problems) == 0 {
		for _, cycle := range s.controlCycles() {
			problem("control cycle through %q", cycle)
		}
	}

	problems = append(problems, s.checkDerivations(derivations)...)

	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}
	s.derivations = slices.Clone(derivations)
	s.eval = newEvaluator(s.derivations)
	return s, nil
}

// controlCycles walks each controlling chain and returns the first field of
// every cycle found. Each field has at most one controller, so a chain that
// revisits a field is a cycle.
func (s *Schema) controlCycles() []string {
	var cycles []string
	done := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		if done[f.Name] {
			continue
		}
		onPath := map[string]bool{}
		name := f.Name
		for name != "" && !done[name] {
			if onPath[name] {
				cycles = append(cycles, name)
				break
			}
			onPath[name] = true
			name = s.fields[s.index[name]].ControlledBy
		}
		for n := range onPath {
			done[n] = true
		}
	}
	return cycles
}

func (s *Schema) checkDerivations(derivations []Derivation) []string {
	var problems []string
	targets := map[string]bool{}
	for _, d := range derivations {
		target := d.Target()
		i, ok := s.index[target]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("derivation targets unknown field %q", target))
			continue
		case !s.fields[i].Computed:
			problems = append(problems, fmt.Sprintf("derivation target %q is not a computed field", target))
		case targets[target]:
			problems = append(problems, fmt.Sprintf("field %q has more than one derivation", target))
		}
		targets[target] = true
		for _, src := range d.Sources() {
			j, ok := s.index[src]
			if !ok {
				problems = append(problems, fmt.Sprintf("derivation of %q reads unknown field %q", target, src))
				continue
			}
			if s.fields[j].Computed {
				problems = append(problems, fmt.Sprintf("derivation of %q reads computed field %q", target, src))
			}
		}
	}
	for _, f := range s.fields {
		if f.Computed && !targets[f.Name] {
			problems = append(problems, fmt.Sprintf("computed field %q has no derivation", f.Name))
		}
	}
	return problems
}

// Fields returns the definitions in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.clone()
	}
	return out
}

// Field looks up a definition by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i].clone(), true
}

// Has reports whether name is part of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Sections returns section names in first-appearance order.
func (s *Schema) Sections() []string {
	return slices.Clone(s.sections)
}

// Section returns the fields of one section in declaration order.
func (s *Schema) Section(name string) []Field {
	var out []Field
	for _, f := range s.fields {
		if f.Section == name {
			out = append(out, f.clone())
		}
	}
	return out
}

// Dependents returns the fields directly controlled by name.
func (s *Schema) Dependents(name string) []string {
	var out []string
	for _, f := range s.fields {
		if f.ControlledBy == name {
			out = append(out, f.Name)
		}
	}
	return out
}

// Derivations returns the computed field relations.
func (s *Schema) Derivations() []Derivation {
	return slices.Clone(s.derivations)
}
