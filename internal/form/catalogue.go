package form

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var echoYAML []byte

// Catalogue bundles a schema with its record projection.
type Catalogue struct {
	Schema *Schema
	Mapper *Mapper
}

// NewState creates a fresh form for this catalogue.
func (c *Catalogue) NewState(opts ...Option) *State {
	return NewState(c.Schema, opts...)
}

type catalogueDoc struct {
	// OptionSets only exists to hold YAML anchors shared by several fields.
	OptionSets  map[string][]string `yaml:"x-option-sets"`
	Sections    []sectionDoc        `yaml:"sections"`
	Derivations []derivationDoc     `yaml:"derivations"`
	Columns     []Column            `yaml:"columns"`
}

type sectionDoc struct {
	Title  string     `yaml:"title"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name        string        `yaml:"name"`
	Label       string        `yaml:"label"`
	Kind        InputKind     `yaml:"kind"`
	Options     []string      `yaml:"options"`
	Required    bool          `yaml:"required"`
	Computed    bool          `yaml:"computed"`
	When        *conditionDoc `yaml:"when"`
	Suffix      string        `yaml:"suffix"`
	Placeholder string        `yaml:"placeholder"`
	Tooltip     string        `yaml:"tooltip"`
}

type conditionDoc struct {
	Field string   `yaml:"field"`
	In    []string `yaml:"in"`
}

type derivationDoc struct {
	Kind string   `yaml:"kind"`
	Into string   `yaml:"into"`
	From []string `yaml:"from"`
	Min  *float64 `yaml:"min"`
	Max  *float64 `yaml:"max"`
}

// Echo loads the built-in echocardiography catalogue.
func Echo() (*Catalogue, error) {
	return LoadCatalogue(bytes.NewReader(echoYAML))
}

// LoadCatalogueFile loads a catalogue from a YAML file.
func LoadCatalogueFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()
	return LoadCatalogue(f)
}

// LoadCatalogue decodes a YAML catalogue and validates it. Unknown keys are
// rejected so typos in the catalogue fail at startup.
func LoadCatalogue(r io.Reader) (*Catalogue, error) {
	var doc catalogueDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}

	var fields []Field
	for _, sec := range doc.Sections {
		for _, fd := range sec.Fields {
			f := Field{
				Name:        fd.Name,
				Label:       fd.Label,
				Kind:        fd.Kind,
				Section:     sec.Title,
				Options:     fd.Options,
				Required:    fd.Required,
				Computed:    fd.Computed,
				Suffix:      fd.Suffix,
				Placeholder: fd.Placeholder,
				Tooltip:     fd.Tooltip,
			}
			if f.Label == "" {
				f.Label = f.Name
			}
			if fd.When != nil {
				f.ControlledBy = fd.When.Field
				f.ActivatedBy = fd.When.In
			}
			fields = append(fields, f)
		}
	}

	derivations := make([]Derivation, 0, len(doc.Derivations))
	var problems []string
	for _, dd := range doc.Derivations {
		d, err := dd.build()
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		derivations = append(derivations, d)
	}
	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	schema, err := NewSchema(fields, derivations)
	if err != nil {
		return nil, err
	}
	mapper, err := NewMapper(schema, doc.Columns)
	if err != nil {
		return nil, err
	}
	return &Catalogue{Schema: schema, Mapper: mapper}, nil
}

func (dd derivationDoc) build() (Derivation, error) {
	switch dd.Kind {
	case "age":
		if len(dd.From) != 1 {
			return nil, fmt.Errorf("age derivation of %q needs exactly one source", dd.Into)
		}
		return Age{Into: dd.Into, From: dd.From[0]}, nil
	case "score-sum":
		if len(dd.From) == 0 {
			return nil, fmt.Errorf("score-sum derivation of %q has no sources", dd.Into)
		}
		if dd.Min == nil || dd.Max == nil || *dd.Min > *dd.Max {
			return nil, fmt.Errorf("score-sum derivation of %q needs a min <= max range", dd.Into)
		}
		return ScoreSum{Into: dd.Into, Parts: dd.From, Min: *dd.Min, Max: *dd.Max}, nil
	}
	return nil, fmt.Errorf("derivation of %q has unknown kind %q", dd.Into, dd.Kind)
}
