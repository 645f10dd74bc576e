package model

import (
	"time"

	"echoreport/internal/form"
)

// Column names of a persisted report. They match the projection declared in
// the field catalogue.
const (
	ColPatientName        = "patient_name"
	ColClinicID           = "clinic_id"
	ColDOB                = "dob"
	ColAge                = "age"
	ColIndication         = "indication"
	ColDateOfIntervention = "date_of_intervention"
	ColPreOpSpecify       = "pre_op_specify"
)

// Report is a submitted echo report: the indexed columns plus the full form
// snapshot.
type Report struct {
	ID                 string            `json:"id" bson:"_id"`
	PatientName        string            `json:"patientName" bson:"patientName"`
	ClinicID           string            `json:"clinicId" bson:"clinicId"`
	DOB                string            `json:"dob" bson:"dob"`
	Age                string            `json:"age" bson:"age"`
	Indication         string            `json:"indication" bson:"indication"`
	DateOfIntervention string            `json:"dateOfIntervention,omitempty" bson:"dateOfIntervention,omitempty"`
	PreOpSpecify       string            `json:"preOpSpecify,omitempty" bson:"preOpSpecify,omitempty"`
	FormData           map[string]string `json:"formData" bson:"formData"`
	CreatedAt          time.Time         `json:"createdAt" bson:"createdAt"`
	CreatedBy          string            `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
}

// NewReport builds a report from a mapped record.
func NewReport(id string, rec *form.Record) *Report {
	return &Report{
		ID:                 id,
		PatientName:        rec.Column(ColPatientName),
		ClinicID:           rec.Column(ColClinicID),
		DOB:                rec.Column(ColDOB),
		Age:                rec.Column(ColAge),
		Indication:         rec.Column(ColIndication),
		DateOfIntervention: rec.Column(ColDateOfIntervention),
		PreOpSpecify:       rec.Column(ColPreOpSpecify),
		FormData:           rec.Snapshot,
		CreatedAt:          rec.SubmittedAt.UTC(),
	}
}

// ReportSummary is the list view of a report.
type ReportSummary struct {
	ID          string    `json:"id" bson:"_id"`
	PatientName string    `json:"patientName" bson:"patientName"`
	ClinicID    string    `json:"clinicId" bson:"clinicId"`
	Indication  string    `json:"indication" bson:"indication"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Summary returns the list view of r.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		PatientName: r.PatientName,
		ClinicID:    r.ClinicID,
		Indication:  r.Indication,
		CreatedAt:   r.CreatedAt,
	}
}
