package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateDefaults(t *testing.T) {
	st := newEchoState(t)

	assert.Equal(t, "Assessment of cardiac function for ischaemic heart disease", mustGet(t, st, "Indication"))
	assert.Equal(t, "No", mustGet(t, st, "Mitral stenosis"))
	assert.Equal(t, "", mustGet(t, st, "Name"))
	assert.Equal(t, "", mustGet(t, st, "Age"))
	assert.Equal(t, "0", mustGet(t, st, "Score Total"), "score total is derived from empty sub-scores")
	assert.Len(t, st.Snapshot(), st.Schema().Len())
}

func TestGetUnknownField(t *testing.T) {
	st := newEchoState(t)

	_, err := st.Get("Heart Rate")
	var unknown *UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Heart Rate", unknown.Name)
}

func TestSetRejectsUnknownAndComputedFields(t *testing.T) {
	st := newEchoState(t)

	var unknown *UnknownFieldError
	require.ErrorAs(t, st.Set("Heart Rate", "70"), &unknown)

	var readOnly *ReadOnlyFieldError
	require.ErrorAs(t, st.Set("Age", "40"), &readOnly)
	assert.Equal(t, "Age", readOnly.Name)
	require.ErrorAs(t, st.Set("Score Total", "12"), &readOnly)

	assert.Equal(t, "", mustGet(t, st, "Age"))
	assert.Equal(t, "0", mustGet(t, st, "Score Total"))
}

func TestAgeFromDateOfBirth(t *testing.T) {
	cases := []struct {
		name string
		dob  string
		want string
	}{
		{"birthday already passed this year", "1980-03-14", "46"},
		{"birthday is today", "1980-10-19", "46"},
		{"birthday is tomorrow", "1980-10-20", "45"},
		{"birthday later this month", "2000-10-31", "25"},
		{"birthday in an earlier month", "2000-09-30", "26"},
		{"born today", "2026-10-19", "0"},
		{"leap day birthday", "2004-02-29", "22"},
		{"empty", "", ""},
		{"unparseable", "14/03/1980", ""},
		{"garbage", "yesterday", ""},
		{"future date", "2027-01-01", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newEchoState(t)
			mustSet(t, st, "DOB", "1950-01-01")
			mustSet(t, st, "DOB", tc.dob)
			assert.Equal(t, tc.want, mustGet(t, st, "Age"))
		})
	}
}

func TestAgeFollowsTheClock(t *testing.T) {
	now := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
	st := echoCatalogue(t).NewState(WithClock(func() time.Time { return now }))

	mustSet(t, st, "DOB", "2000-02-29")
	assert.Equal(t, "23", mustGet(t, st, "Age"))

	now = now.Add(24 * time.Hour)
	assert.Equal(t, 1, st.Recompute())
	assert.Equal(t, "24", mustGet(t, st, "Age"))
}

func TestScoreTotal(t *testing.T) {
	parts := []string{"Score Thickening", "Score Calcification", "Score Sub valvular", "Score Pliability"}
	cases := []struct {
		name   string
		scores []string
		want   string
	}{
		{"all valid", []string{"2", "1", "0", "4"}, "7"},
		{"all empty", []string{"", "", "", ""}, "0"},
		{"all out of range", []string{"5", "-1", "4.01", "100"}, "0"},
		{"unparseable and empty", []string{"abc", "", "NaN", "two"}, "0"},
		{"mixed", []string{"3", "9", "", "1"}, "4"},
		{"fractional", []string{"2.5", "1.5", "0", "0"}, "4"},
		{"bounds inclusive", []string{"0", "4", "4", "4"}, "12"},
		{"surrounding whitespace", []string{" 2 ", "2", "", ""}, "4"},
		{"hex floats are not decimal", []string{"0x1p1", "0X2", "-0x1", "3"}, "3"},
		{"infinity is out of range", []string{"Inf", "+Inf", "infinity", "1"}, "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newEchoState(t)
			for i, part := range parts {
				mustSet(t, st, part, "1")
				mustSet(t, st, part, tc.scores[i])
			}
			assert.Equal(t, tc.want, mustGet(t, st, "Score Total"))
		})
	}
}

func TestSetNotifiesSubscribers(t *testing.T) {
	st := newEchoState(t)
	var changes []Change
	st.Subscribe(func(c Change) { changes = append(changes, c) })

	mustSet(t, st, "DOB", "1980-03-14")

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Field: "DOB", Old: "", New: "1980-03-14"}, changes[0])
	assert.Equal(t, Change{Field: "Age", Old: "", New: "46", Computed: true}, changes[1])
}

func TestEvaluatorIsIdempotent(t *testing.T) {
	st := newEchoState(t)
	mustSet(t, st, "DOB", "1980-03-14")
	mustSet(t, st, "Score Thickening", "2")

	notified := 0
	st.Subscribe(func(Change) { notified++ })

	assert.Equal(t, 0, st.Recompute())
	assert.Equal(t, 0, st.Recompute())
	assert.Zero(t, notified)

	t.Run("rewriting a source with the same value is silent", func(t *testing.T) {
		mustSet(t, st, "DOB", "1980-03-14")
		assert.Zero(t, notified)
	})

	t.Run("a source change that leaves the result unchanged only reports the source", func(t *testing.T) {
		mustSet(t, st, "Score Calcification", "9")
		assert.Equal(t, 1, notified)
		assert.Equal(t, "2", mustGet(t, st, "Score Total"))
	})
}

func TestSubscribeCancel(t *testing.T) {
	st := newEchoState(t)
	first, second := 0, 0
	cancel := st.Subscribe(func(Change) { first++ })
	st.Subscribe(func(Change) { second++ })

	mustSet(t, st, "Name", "A")
	cancel()
	mustSet(t, st, "Name", "B")

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestSnapshotIsACopy(t *testing.T) {
	st := newEchoState(t)
	snap := st.Snapshot()
	snap["Name"] = "mutated"

	assert.Equal(t, "", mustGet(t, st, "Name"))
}

func TestRestore(t *testing.T) {
	src := newEchoState(t)
	mustSet(t, src, "Name", "Jane Perera")
	mustSet(t, src, "DOB", "1980-03-14")
	mustSet(t, src, "Mitral stenosis", "Mild")
	mustSet(t, src, "Score Thickening", "3")

	t.Run("replays user values and re-derives computed ones", func(t *testing.T) {
		snap := src.Snapshot()
		snap["Age"] = "999"
		snap["Score Total"] = "999"

		dst := newEchoState(t)
		require.NoError(t, dst.Restore(snap))

		assert.Equal(t, "Jane Perera", mustGet(t, dst, "Name"))
		assert.Equal(t, "46", mustGet(t, dst, "Age"))
		assert.Equal(t, "3", mustGet(t, dst, "Score Total"))
		assert.Equal(t, src.Snapshot(), dst.Snapshot())
	})

	t.Run("unknown keys are rejected before anything is applied", func(t *testing.T) {
		dst := newEchoState(t)
		err := dst.Restore(map[string]string{"Name": "X", "Legacy Field": "1"})

		var unknown *UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "", mustGet(t, dst, "Name"))
	})
}

func TestIndependentStates(t *testing.T) {
	cat := echoCatalogue(t)
	a := cat.NewState(WithClock(fixedClock))
	b := cat.NewState(WithClock(fixedClock))

	require.NoError(t, a.Set("Name", "A"))
	assert.Equal(t, "", mustGet(t, b, "Name"))
}
