// Package survey reconstructs flat sign-survey export rows into nested
// Photo records.
//
// An export has one row per photographed sign. Substrates (physical surfaces
// bearing text) and their Typefaces repeat as groups of columns whose headers
// differ only by a group index ("Placement 1", "Placement 2", ...). The number
// of groups varies per export, so the header is classified once into a
// [Layout] of column roles and every row is folded through a small state
// machine ([Step] / [Finish]) that opens and flushes groups as it walks the
// columns left to right.
package survey

import "time"

// Status is the review state of a Photo.
type Status string

const (
	StatusUnclaimed  Status = "unclaimed"
	StatusClaimed    Status = "claimed"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Valid reports whether s is one of the four known statuses. Matching is
// case-sensitive.
func (s Status) Valid() bool {
	switch s {
	case StatusUnclaimed, StatusClaimed, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// Photo is one physical sign photographed once.
type Photo struct {
	ID                 string      `json:"id"`
	CustomID           string      `json:"custom_id"`
	Municipality       string      `json:"municipality"`
	Initials           string      `json:"initials,omitempty"`
	Status             Status      `json:"status"`
	SubmissionStarted  *time.Time  `json:"submissionStarted,omitempty"`
	LastUpdated        *time.Time  `json:"lastUpdated,omitempty"`
	NumberOfSubstrates int         `json:"numberOfSubstrates"` // Declared by the surveyor; Substrates is authoritative
	PhotoLink          string      `json:"photoLink,omitempty"`
	Substrates         []Substrate `json:"substrates"`
}

// Substrate is one physical surface bearing text on a Photo.
type Substrate struct {
	Placement           string     `json:"placement"`
	AdditionalNotes     string     `json:"additionalNotes,omitempty"`
	ThisIsntReallyASign bool       `json:"thisIsntReallyASign"`
	WhatIsIt            string     `json:"whatIsIt,omitempty"`
	Typefaces           []Typeface `json:"typefaces"`
	Confidence          *int       `json:"confidence,omitempty"`
	ConfidenceReasoning string     `json:"confidenceReasoning,omitempty"`
	AdditionalInfo      string     `json:"additionalInfo,omitempty"`
}

// Typeface is one distinct lettering instance within a Substrate.
type Typeface struct {
	TypefaceStyle     []string `json:"typefaceStyle"`
	Copy              string   `json:"copy"`
	LetteringOntology []string `json:"letteringOntology"`
	MessageFunction   []string `json:"messageFunction"`
	CovidRelated      bool     `json:"covidRelated"`
	AdditionalNotes   string   `json:"additionalNotes,omitempty"`
}
