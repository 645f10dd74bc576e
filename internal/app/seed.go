package app

import (
	"context"
	"fmt"

	"echoreport/internal/model"
	"echoreport/internal/service"
)

// demoEntries is a complete pre-operative study, entered in form order.
var demoEntries = []struct{ field, value string }{
	{"Name", "Jane Perera"},
	{"ID", "C12345"},
	{"DOB", "1962-03-14"},
	{"Indication", "Pre operative assessment"},
	{"Pre-Op Specify", "Elective hip replacement"},
	{"LV EDD", "48"},
	{"LV ESD", "31"},
	{"EF", "60"},
	{"RWMA", "None"},
	{"Systolic Comment", "Good LV systolic function"},
	{"E/A ratio", "1.1"},
	{"Diastolic Comment", "No diastolic dysfunction"},
	{"Mitral Regurgitation", "Mild"},
	{"VC", "0.2"},
	{"Mitral stenosis", "Mild"},
	{"Score Thickening", "1"},
	{"Score Calcification", "1"},
	{"Score Sub valvular", "1"},
	{"Score Pliability", "2"},
	{"Pericardium", "Thin rim of pericardial effusion"},
	{"Effusion Measurement Apical", "3"},
	{"Conclusion", "Structurally normal heart. Fit for surgery from a cardiac standpoint."},
}

// SeedDemo submits one complete demo report through the session workflow.
func SeedDemo(ctx context.Context, sessions *service.SessionService, clinicianID string) (*model.SubmitResult, error) {
	sess, err := sessions.Start(ctx, clinicianID)
	if err != nil {
		return nil, err
	}
	for _, e := range demoEntries {
		if _, err := sessions.SetField(ctx, sess.ID, e.field, e.value); err != nil {
			sessions.Discard(ctx, sess.ID)
			return nil, fmt.Errorf("set %q: %w", e.field, err)
		}
	}
	return sessions.Submit(ctx, sess.ID)
}
