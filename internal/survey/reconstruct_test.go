package survey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleHeader = []string{
	"Submission ID", "Status", "Municipality", "Photo name",
	"Placement 1", "This isn't really a sign 1", "Typeface Style 1", "Copy 1", "Covid related 1", "Overall confidence 1",
}

func TestReconstruct_EndToEnd(t *testing.T) {
	row := []string{"123", "finished", " Irvine ", "sign001.jpg", "Storefront window", "false", "Serif, Script", "OPEN", "false", "80"}

	photo := Reconstruct(Classify(exampleHeader), row)

	assert.Equal(t, "123", photo.ID)
	assert.Equal(t, StatusFinished, photo.Status)
	assert.Equal(t, "Irvine", photo.Municipality)
	assert.Equal(t, "sign001.jpg", photo.CustomID)

	require.Len(t, photo.Substrates, 1)
	sub := photo.Substrates[0]
	assert.Equal(t, "Storefront window", sub.Placement)
	assert.False(t, sub.ThisIsntReallyASign)
	require.NotNil(t, sub.Confidence)
	assert.Equal(t, 80, *sub.Confidence)

	require.Len(t, sub.Typefaces, 1)
	tf := sub.Typefaces[0]
	assert.Equal(t, []string{"Serif", "Script"}, tf.TypefaceStyle)
	assert.Equal(t, "OPEN", tf.Copy)
	assert.False(t, tf.CovidRelated)
}

func TestReconstruct_BooleansAreExactLiterals(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"true", true},
		{" true ", false},
		{`="true"`, false},
		{"True", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			row := []string{"126", "finished", "Irvine", "sign004.jpg", "Window", tt.cell, "Serif", "OPEN", tt.cell, "50"}

			photo := Reconstruct(Classify(exampleHeader), row)

			require.Len(t, photo.Substrates, 1)
			assert.Equal(t, tt.want, photo.Substrates[0].ThisIsntReallyASign)
			require.Len(t, photo.Substrates[0].Typefaces, 1)
			assert.Equal(t, tt.want, photo.Substrates[0].Typefaces[0].CovidRelated)
		})
	}
}

func TestReconstruct_EmptyPlacementGate(t *testing.T) {
	row := []string{"124", "unclaimed", "Irvine", "sign002.jpg", "", "true", "Serif", "CLOSED", "true", "90"}

	photo := Reconstruct(Classify(exampleHeader), row)

	assert.Empty(t, photo.Substrates)
	assert.NotNil(t, photo.Substrates, "substrates serialize as [] not null")
}

func TestReconstruct_EmptyStyleGate(t *testing.T) {
	row := []string{"125", "unclaimed", "Irvine", "sign003.jpg", "Awning", "false", "", "SALE", "false", "70"}

	photo := Reconstruct(Classify(exampleHeader), row)

	require.Len(t, photo.Substrates, 1)
	assert.Empty(t, photo.Substrates[0].Typefaces)
	require.NotNil(t, photo.Substrates[0].Confidence)
	assert.Equal(t, 70, *photo.Substrates[0].Confidence)
}

func TestReconstruct_MultipleGroupsInHeaderOrder(t *testing.T) {
	header := []string{
		"Submission ID", "Photo name",
		"Placement 1", "Typeface Style 1", "Copy 1", "Typeface Style 2", "Copy 2", "Overall confidence 1", "Additional info 1",
		"Placement 2", "This isn't really a sign 2", "What is it? 2", "Typeface Style 3", "Copy 3", "Overall confidence 2",
		"Placement 3", "Typeface Style 4", "Copy 4", "Overall confidence 3",
	}
	row := []string{
		"9", "sign009.jpg",
		"Window", "Sans", "A", "Script", "B", "60", "faded",
		"", "true", "mural", "Serif", "ghost", "10",
		"Door", "Blackletter, Sans", "C", "not a number",
	}

	photo := Reconstruct(Classify(header), row)

	require.Len(t, photo.Substrates, 2)

	first := photo.Substrates[0]
	assert.Equal(t, "Window", first.Placement)
	assert.Equal(t, "faded", first.AdditionalInfo)
	require.Len(t, first.Typefaces, 2)
	assert.Equal(t, "A", first.Typefaces[0].Copy)
	assert.Equal(t, "B", first.Typefaces[1].Copy)

	second := photo.Substrates[1]
	assert.Equal(t, "Door", second.Placement)
	assert.Nil(t, second.Confidence, "unparseable confidence is absent")
	require.Len(t, second.Typefaces, 1)
	assert.Equal(t, []string{"Blackletter", "Sans"}, second.Typefaces[0].TypefaceStyle)
}

func TestStep_StateTransitions(t *testing.T) {
	placement := Role{Kind: KindSubstrateStart}
	style := Role{Kind: KindTypefaceStart}
	copyField := Role{Kind: KindTypefaceField, Field: FieldCopy}
	confidence := Role{Kind: KindSubstrateTrailer, Field: FieldConfidence}

	s := NewState()
	assert.Equal(t, PhaseNoSubstrate, s.Phase())

	// Fields with nothing open are dropped.
	s = Step(s, copyField, "orphan")
	s = Step(s, style, "Serif")
	assert.Equal(t, PhaseNoSubstrate, s.Phase(), "typeface cannot open without a substrate")

	s = Step(s, placement, "Window")
	assert.Equal(t, PhaseSubstrateOpen, s.Phase())

	s = Step(s, style, "Serif")
	assert.Equal(t, PhaseTypefaceOpen, s.Phase())

	s = Step(s, copyField, "OPEN")
	s = Step(s, confidence, "50")
	assert.Equal(t, PhaseSubstrateOpen, s.Phase(), "trailer closes the typeface group")
	require.Len(t, s.Substrate.Typefaces, 1)
	assert.Equal(t, "OPEN", s.Substrate.Typefaces[0].Copy)

	// A typeface field after the trailer has nowhere to go.
	s = Step(s, copyField, "late")

	photo := Finish(s)
	require.Len(t, photo.Substrates, 1)
	require.Len(t, photo.Substrates[0].Typefaces, 1)
	assert.Equal(t, "OPEN", photo.Substrates[0].Typefaces[0].Copy)
}

func TestStep_GatedSubstrateDiscardsOpenTypeface(t *testing.T) {
	s := NewState()
	s = Step(s, Role{Kind: KindSubstrateStart}, "Window")
	s = Step(s, Role{Kind: KindTypefaceStart}, "Serif")

	// Simulate a substrate whose placement was cleared after opening.
	s.Substrate.Placement = ""
	s = Step(s, Role{Kind: KindSubstrateStart}, "")

	assert.Equal(t, PhaseNoSubstrate, s.Phase())
	assert.Empty(t, Finish(s).Substrates)
}

func TestStep_TypefaceWithBlankTagsIsDiscarded(t *testing.T) {
	s := NewState()
	s = Step(s, Role{Kind: KindSubstrateStart}, "Window")
	s = Step(s, Role{Kind: KindTypefaceStart}, " , ")
	assert.Equal(t, PhaseTypefaceOpen, s.Phase())

	photo := Finish(s)
	require.Len(t, photo.Substrates, 1)
	assert.Empty(t, photo.Substrates[0].Typefaces)
}

func TestFold_ShortRow(t *testing.T) {
	photo := Fold(Classify(exampleHeader), []string{"1", "claimed"})

	assert.Equal(t, "1", photo.ID)
	assert.Equal(t, StatusClaimed, photo.Status)
	assert.Empty(t, photo.Substrates)
}

func TestPhoto_JSONShape(t *testing.T) {
	row := []string{"123", "finished", "Irvine", "sign001.jpg", "Storefront window", "false", "Serif, Script", "OPEN", "false", "80"}
	photo := Reconstruct(Classify(exampleHeader), row)

	data, err := json.Marshal(photo)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "sign001.jpg", decoded["custom_id"])

	subs := decoded["substrates"].([]any)
	sub := subs[0].(map[string]any)
	assert.Equal(t, false, sub["thisIsntReallyASign"])
	assert.Equal(t, float64(80), sub["confidence"])

	tf := sub["typefaces"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"Serif", "Script"}, tf["typefaceStyle"])
	assert.Equal(t, []any{}, tf["letteringOntology"])
}
