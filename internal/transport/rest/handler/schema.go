package handler

import (
	"net/http"

	"echoreport/internal/form"
)

// SchemaHandler serves the field catalogue so clients can render the form.
type SchemaHandler struct {
	catalogue *form.Catalogue
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(catalogue *form.Catalogue) *SchemaHandler {
	return &SchemaHandler{catalogue: catalogue}
}

type sectionView struct {
	Title  string       `json:"title"`
	Fields []form.Field `json:"fields"`
}

type derivationView struct {
	Field   string   `json:"field"`
	Sources []string `json:"sources"`
}

type schemaView struct {
	Sections    []sectionView    `json:"sections"`
	Derivations []derivationView `json:"derivations"`
	Columns     []form.Column    `json:"columns"`
}

// Get handles GET /v1/schema
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	schema := h.catalogue.Schema
	view := schemaView{Columns: h.catalogue.Mapper.Columns()}
	for _, title := range schema.Sections() {
		view.Sections = append(view.Sections, sectionView{Title: title, Fields: schema.Section(title)})
	}
	for _, d := range schema.Derivations() {
		view.Derivations = append(view.Derivations, derivationView{Field: d.Target(), Sources: d.Sources()})
	}
	writeJSON(w, http.StatusOK, view)
}
