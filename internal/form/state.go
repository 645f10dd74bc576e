package form

import (
	"maps"
	"time"
)

// Change describes one value transition in a State.
type Change struct {
	Field    string `json:"field"`
	Old      string `json:"old"`
	New      string `json:"new"`
	Computed bool   `json:"computed"`
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the time source used by date-based derivations.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// State holds the current values of one in-progress form. It is owned by a
// single session and is not safe for concurrent use.
type State struct {
	schema    *Schema
	values    map[string]string
	now       func() time.Time
	listeners map[int]func(Change)
	nextID    int
}

// NewState creates a form with every field at its default and computed
// fields derived from those defaults.
func NewState(schema *Schema, opts ...Option) *State {
	s := &State{
		schema:    schema,
		values:    make(map[string]string, schema.Len()),
		now:       time.Now,
		listeners: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, f := range schema.fields {
		s.values[f.Name] = f.Default()
	}
	for _, d := range schema.derivations {
		s.values[d.Target()] = d.Compute(s.value, s.now())
	}
	return s
}

// Schema returns the schema the state was built from.
func (s *State) Schema() *Schema { return s.schema }

// Get returns the current value of a field.
func (s *State) Get(name string) (string, error) {
	if !s.schema.Has(name) {
		return "", &UnknownFieldError{Name: name}
	}
	return s.values[name], nil
}

func (s *State) value(name string) string {
	return s.values[name]
}

// Set writes a user value and re-derives every computed field that reads it.
// Writing the value already held is a no-op.
func (s *State) Set(name, value string) error {
	f, ok := s.schema.Field(name)
	if !ok {
		return &UnknownFieldError{Name: name}
	}
	if f.Computed {
		return &ReadOnlyFieldError{Name: name}
	}
	old := s.values[name]
	if old == value {
		return nil
	}
	s.values[name] = value
	s.emit(Change{Field: name, Old: old, New: value})

	for _, d := range s.schema.eval.affectedBy(name) {
		s.derive(d)
	}
	return nil
}

// Recompute re-derives every computed field and returns how many changed.
func (s *State) Recompute() int {
	changed := 0
	for _, d := range s.schema.derivations {
		if s.derive(d) {
			changed++
		}
	}
	return changed
}

// derive stores a freshly computed value, short-circuiting when it matches
// the stored one so unchanged sources produce no notification.
func (s *State) derive(d Derivation) bool {
	target := d.Target()
	next := d.Compute(s.value, s.now())
	old := s.values[target]
	if next == old {
		return false
	}
	s.values[target] = next
	s.emit(Change{Field: target, Old: old, New: next, Computed: true})
	return true
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it.
func (s *State) Subscribe(fn func(Change)) (cancel func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

func (s *State) emit(c Change) {
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fn(c)
		}
	}
}

// Snapshot returns a copy of every field value, active or not.
func (s *State) Snapshot() map[string]string {
	return maps.Clone(s.values)
}

// Restore replays a snapshot onto the state through Set. Computed entries
// are ignored since they are re-derived from their sources.
func (s *State) Restore(snapshot map[string]string) error {
	for name := range snapshot {
		if !s.schema.Has(name) {
			return &UnknownFieldError{Name: name}
		}
	}
	for _, f := range s.schema.fields {
		v, ok := snapshot[f.Name]
		if !ok || f.Computed {
			continue
		}
		if err := s.Set(f.Name, v); err != nil {
			return err
		}
	}
	return nil
}
