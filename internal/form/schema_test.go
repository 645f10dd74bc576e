package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaProblems(t *testing.T, fields []Field, derivations []Derivation) []string {
	t.Helper()
	_, err := NewSchema(fields, derivations)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	return schemaErr.Problems
}

func TestNewSchema(t *testing.T) {
	fields := []Field{
		{Name: "Grade", Kind: KindChoice, Section: "A", Options: []string{"No", "Yes"}},
		{Name: "Detail", Kind: KindText, Section: "A", ControlledBy: "Grade", ActivatedBy: []string{"Yes"}},
		{Name: "Count", Kind: KindNumber, Section: "B"},
		{Name: "Total", Kind: KindNumber, Section: "B", Computed: true},
	}
	schema, err := NewSchema(fields, []Derivation{ScoreSum{Into: "Total", Parts: []string{"Count"}, Min: 0, Max: 10}})
	require.NoError(t, err)

	assert.Equal(t, 4, schema.Len())
	assert.Equal(t, []string{"A", "B"}, schema.Sections())
	assert.Len(t, schema.Section("B"), 2)
	assert.Equal(t, []string{"Detail"}, schema.Dependents("Grade"))
	assert.True(t, schema.Has("Detail"))
	assert.False(t, schema.Has("detail"))

	t.Run("definitions are copies", func(t *testing.T) {
		fields[0].Options[0] = "mutated"
		f, ok := schema.Field("Grade")
		require.True(t, ok)
		assert.Equal(t, "No", f.Options[0])

		f.Options[0] = "mutated again"
		again, _ := schema.Field("Grade")
		assert.Equal(t, "No", again.Options[0])
	})
}

func TestNewSchemaRejectsBadDefinitions(t *testing.T) {
	cases := []struct {
		name    string
		fields  []Field
		derived []Derivation
		want    string
	}{
		{
			name:   "duplicate name",
			fields: []Field{{Name: "A", Kind: KindText}, {Name: "A", Kind: KindNumber}},
			want:   `duplicate field "A"`,
		},
		{
			name:   "missing name",
			fields: []Field{{Kind: KindText}},
			want:   "has no name",
		},
		{
			name:   "unknown kind",
			fields: []Field{{Name: "A", Kind: "long-text"}},
			want:   "unknown kind",
		},
		{
			name:   "choice without options",
			fields: []Field{{Name: "A", Kind: KindChoice}},
			want:   `choice field "A" has no options`,
		},
		{
			name:   "dangling controller",
			fields: []Field{{Name: "A", Kind: KindText, ControlledBy: "Ghost", ActivatedBy: []string{"x"}}},
			want:   `controlled by unknown field "Ghost"`,
		},
		{
			name:   "self control",
			fields: []Field{{Name: "A", Kind: KindText, ControlledBy: "A", ActivatedBy: []string{"x"}}},
			want:   "controls itself",
		},
		{
			name: "control cycle",
			fields: []Field{
				{Name: "A", Kind: KindText, ControlledBy: "B", ActivatedBy: []string{"x"}},
				{Name: "B", Kind: KindText, ControlledBy: "A", ActivatedBy: []string{"y"}},
			},
			want: "control cycle",
		},
		{
			name: "no activation values",
			fields: []Field{
				{Name: "A", Kind: KindText},
				{Name: "B", Kind: KindText, ControlledBy: "A"},
			},
			want: "no activation values",
		},
		{
			name:   "computed without derivation",
			fields: []Field{{Name: "A", Kind: KindNumber, Computed: true}},
			want:   `computed field "A" has no derivation`,
		},
		{
			name:    "derivation into user field",
			fields:  []Field{{Name: "A", Kind: KindNumber}, {Name: "B", Kind: KindNumber}},
			derived: []Derivation{ScoreSum{Into: "B", Parts: []string{"A"}, Max: 4}},
			want:    `"B" is not a computed field`,
		},
		{
			name:    "derivation reads unknown source",
			fields:  []Field{{Name: "B", Kind: KindNumber, Computed: true}},
			derived: []Derivation{Age{Into: "B", From: "DOB"}},
			want:    `reads unknown field "DOB"`,
		},
		{
			name: "derivation reads computed source",
			fields: []Field{
				{Name: "A", Kind: KindNumber, Computed: true},
				{Name: "B", Kind: KindNumber, Computed: true},
				{Name: "C", Kind: KindNumber},
			},
			derived: []Derivation{
				ScoreSum{Into: "A", Parts: []string{"C"}, Max: 4},
				ScoreSum{Into: "B", Parts: []string{"A"}, Max: 4},
			},
			want: `reads computed field "A"`,
		},
		{
			name:   "two derivations for one field",
			fields: []Field{{Name: "A", Kind: KindNumber, Computed: true}, {Name: "C", Kind: KindDate}},
			derived: []Derivation{
				Age{Into: "A", From: "C"},
				Age{Into: "A", From: "C"},
			},
			want: "more than one derivation",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems := schemaProblems(t, tc.fields, tc.derived)
			require.NotEmpty(t, problems)
			assert.Contains(t, problems[0], tc.want)
		})
	}
}

func TestNewSchemaReportsEveryProblem(t *testing.T) {
	problems := schemaProblems(t, []Field{
		{Name: "A", Kind: KindChoice},
		{Name: "A", Kind: KindText},
		{Name: "B", Kind: KindText, ControlledBy: "Ghost", ActivatedBy: []string{"x"}},
	}, nil)
	assert.Len(t, problems, 3)
}
