package survey

import (
	"testing"
)

func TestClassifyHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Submission ID", "photo:id"},
		{"Photo name", "photo:custom_id"},
		{"Municipality", "photo:municipality"},
		{" Status ", "photo:status"},
		{"Initials", "photo:initials"},
		{"Number of substrates", "photo:substrate_count"},
		{"Last updated", "photo:last_updated"},
		{"Submission started", "photo:submission_started"},
		{"Started", "photo:submission_started"},
		{"Started at", "photo:submission_started"},
		{"Photo link", "photo:photo_link"},
		{"Placement 1", "substrate-start"},
		{"Placement 12", "substrate-start"},
		{"Placement (3)", "substrate-start"},
		{"Placement_2", "substrate-start"},
		{"Placement", "substrate-start"},
		{"This isn't really a sign 1", "substrate-field:not_a_sign"},
		{"This isn’t really a sign 2", "substrate-field:not_a_sign"},
		{"This isnt really a sign? 3", "substrate-field:not_a_sign"},
		{"This isn't really a sign - what is it? 1", "substrate-field:what_is_it"},
		{"What is it? 1", "substrate-field:what_is_it"},
		{"This isn't really a sign because 1", "unrecognized"},
		{"Additional substrate notes 1", "substrate-field:additional_notes"},
		{"Typeface Style 1", "typeface-start"},
		{"typeface style 4", "typeface-start"},
		{"Copy 1", "typeface-field:copy"},
		{"Lettering ontology 2", "typeface-field:lettering_ontology"},
		{"Message function 2", "typeface-field:message_function"},
		{"Covid related 1", "typeface-field:covid_related"},
		{"Covid-related 1", "typeface-field:covid_related"},
		{"Additional typeface notes 1", "typeface-field:additional_notes"},
		{"Overall confidence 1", "substrate-trailer:confidence"},
		{"Confidence reasoning 1", "substrate-trailer:confidence_reasoning"},
		{"Additional info 1", "substrate-trailer:additional_info"},
		{"Respondent IP", "unrecognized"},
		{"", "unrecognized"},
		{"7", "unrecognized"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := ClassifyHeader(tt.header).String()
			if got != tt.want {
				t.Errorf("ClassifyHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestClassify_Layout(t *testing.T) {
	header := []string{"Submission ID", "Browser", "Placement 1", "Typeface Style 1", "Placement 2", "Notes for admin"}

	layout := Classify(header)

	if len(layout.Roles) != len(header) {
		t.Fatalf("len(Roles) = %d, want %d", len(layout.Roles), len(header))
	}
	if got := layout.Recognized(); got != 4 {
		t.Errorf("Recognized() = %d, want 4", got)
	}
	if !layout.HasSubstrates() {
		t.Error("HasSubstrates() = false, want true")
	}

	wantUnrecognized := []string{"Browser", "Notes for admin"}
	if len(layout.Unrecognized) != len(wantUnrecognized) {
		t.Fatalf("Unrecognized = %v, want %v", layout.Unrecognized, wantUnrecognized)
	}
	for i := range wantUnrecognized {
		if layout.Unrecognized[i] != wantUnrecognized[i] {
			t.Errorf("Unrecognized[%d] = %q, want %q", i, layout.Unrecognized[i], wantUnrecognized[i])
		}
	}
}

func TestHeaderBase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Copy", "copy"},
		{"index", "Copy 2", "copy"},
		{"parenthesized index", "Copy (2)", "copy"},
		{"question mark before index", "What is it? 4", "what is it"},
		{"excel formula wrapper", `="Placement 1"`, "placement"},
		{"collapsed whitespace", "Typeface   Style\t1", "typeface style"},
		{"unbalanced paren kept", "Copy 2)", "copy 2)"},
		{"curly apostrophe", "This isn’t really a sign", "this isn't really a sign"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderBase(tt.input); got != tt.want {
				t.Errorf("HeaderBase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRulesHaveNoShadowedPhotoFields(t *testing.T) {
	// Every photo field must be reachable through at least one header.
	fields := map[Field]bool{}
	for _, r := range rules {
		if r.role.Kind == KindPhoto {
			fields[r.role.Field] = true
		}
	}
	for _, f := range []Field{
		FieldID, FieldCustomID, FieldMunicipality, FieldInitials, FieldStatus,
		FieldSubmissionStarted, FieldLastUpdated, FieldSubstrateCount, FieldPhotoLink,
	} {
		if !fields[f] {
			t.Errorf("no rule classifies photo field %q", f)
		}
	}
}
