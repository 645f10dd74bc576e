package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompleteForm(t *testing.T) {
	res := Validate(completeState(t))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reason)
	assert.NoError(t, res.Err())
}

func TestValidateEmptyFormListsEveryBaseField(t *testing.T) {
	res := Validate(newEchoState(t))

	require.False(t, res.Valid)
	assert.Equal(t, "Name", res.Field)
	assert.Equal(t, []string{"Name", "ID", "DOB", "LV EDD"}, res.Missing)
	assert.Equal(t, "please fill in required fields: Patient Name, Clinic ID, Date of Birth, LV EDD", res.Reason)
}

func TestValidateBaseFieldsBeforeConditionals(t *testing.T) {
	st := completeState(t)
	mustSet(t, st, "ID", "")
	mustSet(t, st, "Indication", interventionOption)

	res := Validate(st)
	require.False(t, res.Valid)
	assert.Equal(t, "ID", res.Field)
	assert.Equal(t, []string{"ID"}, res.Missing)
	assert.Contains(t, res.Reason, "Clinic ID")
	assert.NotContains(t, res.Reason, "Date of Intervention")
}

func TestValidateActiveConditional(t *testing.T) {
	t.Run("intervention needs a date", func(t *testing.T) {
		st := completeState(t)
		mustSet(t, st, "Indication", interventionOption)

		res := Validate(st)
		require.False(t, res.Valid)
		assert.Equal(t, "Date of Intervention", res.Field)
		assert.Contains(t, res.Reason, "Date of Intervention")
		assert.Contains(t, res.Reason, interventionOption)
		assert.Empty(t, res.Missing)

		mustSet(t, st, "Date of Intervention", "2026-09-01")
		assert.True(t, Validate(st).Valid)
	})

	t.Run("pre-op needs details", func(t *testing.T) {
		st := completeState(t)
		mustSet(t, st, "Indication", preOpOption)

		res := Validate(st)
		require.False(t, res.Valid)
		assert.Equal(t, "Pre-Op Specify", res.Field)

		mustSet(t, st, "Pre-Op Specify", "Hip replacement")
		assert.True(t, Validate(st).Valid)
	})
}

func TestValidateIgnoresInactiveConditional(t *testing.T) {
	st := completeState(t)
	mustSet(t, st, "Indication", "Assessment of valvular heart disease")

	assert.True(t, Validate(st).Valid)
}

func TestValidateWhitespaceIsBlank(t *testing.T) {
	st := completeState(t)
	mustSet(t, st, "Name", "   ")
	mustSet(t, st, "LV EDD", "\t")

	res := Validate(st)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"Name", "LV EDD"}, res.Missing)

	st = completeState(t)
	mustSet(t, st, "Indication", interventionOption)
	mustSet(t, st, "Date of Intervention", " ")
	assert.Equal(t, "Date of Intervention", Validate(st).Field)
}

func TestValidateDoesNotTypeCheck(t *testing.T) {
	st := completeState(t)
	mustSet(t, st, "LV EDD", "not a number")
	mustSet(t, st, "EF", "lots")

	assert.True(t, Validate(st).Valid)
}

func TestResultErr(t *testing.T) {
	st := completeState(t)
	mustSet(t, st, "Indication", preOpOption)

	err := Validate(st).Err()
	var failure *ValidationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Pre-Op Specify", failure.Field)
	assert.Contains(t, err.Error(), "validation failed: ")
}
