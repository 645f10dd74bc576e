package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	interventionOption = "Post cardiac intervention (CABG, ASD D/C, PTMC)"
	preOpOption        = "Pre operative assessment"
)

// today is the fixed date every engine test runs at.
var today = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func echoCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	cat, err := Echo()
	require.NoError(t, err)
	return cat
}

func newEchoState(t *testing.T) *State {
	t.Helper()
	return echoCatalogue(t).NewState(WithClock(fixedClock))
}

// completeState fills every base-required field.
func completeState(t *testing.T) *State {
	t.Helper()
	return fillBase(t, newEchoState(t))
}

// fillBase sets every base-required field of st and returns it.
func fillBase(t *testing.T, st *State) *State {
	t.Helper()
	mustSet(t, st, "Name", "Jane Perera")
	mustSet(t, st, "ID", "C12345")
	mustSet(t, st, "DOB", "1980-03-14")
	mustSet(t, st, "LV EDD", "45.2")
	return st
}

func mustSet(t *testing.T, st *State, name, value string) {
	t.Helper()
	require.NoError(t, st.Set(name, value))
}

func mustGet(t *testing.T, st *State, name string) string {
	t.Helper()
	v, err := st.Get(name)
	require.NoError(t, err)
	return v
}
