package survey

// reconstruct.go folds one classified row into a Photo.
//
// The row is walked left to right. Two pieces of open state are carried in
// State: the substrate group currently being filled and the typeface group
// currently being filled inside it. A group is flushed into its parent when
// the next group of the same kind starts, when a substrate trailer column is
// reached (typefaces only), or at the end of the row. Flushing is gated: a
// substrate without a placement and a typeface without style tags are
// discarded, together with anything opened beneath them.

// Phase names the state of the reconstruction machine.
type Phase int

const (
	PhaseNoSubstrate Phase = iota
	PhaseSubstrateOpen
	PhaseTypefaceOpen
)

func (p Phase) String() string {
	switch p {
	case PhaseSubstrateOpen:
		return "substrate-open-no-typeface"
	case PhaseTypefaceOpen:
		return "substrate-and-typeface-open"
	default:
		return "no-open-substrate"
	}
}

// State is the accumulator threaded through Step.
type State struct {
	Photo     Photo
	Substrate *Substrate // nil when no substrate group is open
	Typeface  *Typeface  // nil when no typeface group is open
}

// NewState returns the initial state for one row.
func NewState() State {
	return State{Photo: Photo{Substrates: []Substrate{}}}
}

// Phase reports which state the machine is in.
func (s State) Phase() Phase {
	switch {
	case s.Substrate == nil:
		return PhaseNoSubstrate
	case s.Typeface == nil:
		return PhaseSubstrateOpen
	default:
		return PhaseTypefaceOpen
	}
}

// Step applies one column to the state and returns the next state.
func Step(s State, role Role, cell string) State {
	value := cellValue(role.Field, cell)

	switch role.Kind {
	case KindPhoto:
		setPhotoField(&s.Photo, role.Field, value)

	case KindSubstrateStart:
		s = flushSubstrate(s)
		if value != "" {
			s.Substrate = &Substrate{Placement: value, Typefaces: []Typeface{}}
		}

	case KindSubstrateField:
		if s.Substrate != nil {
			setSubstrateField(s.Substrate, role.Field, value)
		}

	case KindTypefaceStart:
		s = flushTypeface(s)
		if value != "" && s.Substrate != nil {
			s.Typeface = &Typeface{
				TypefaceStyle:     SplitTags(value),
				LetteringOntology: []string{},
				MessageFunction:   []string{},
			}
		}

	case KindTypefaceField:
		if s.Typeface != nil {
			setTypefaceField(s.Typeface, role.Field, value)
		}

	case KindSubstrateTrailer:
		s = flushTypeface(s)
		if s.Substrate != nil {
			setSubstrateField(s.Substrate, role.Field, value)
		}
	}

	return s
}

// cellValue cleans a cell for writing. Boolean columns are taken verbatim so
// that only the exact literal "true" is true.
func cellValue(f Field, cell string) string {
	if f == FieldNotASign || f == FieldCovidRelated {
		return cell
	}
	return CleanCell(cell)
}

// Finish flushes any open groups and returns the accumulated Photo.
func Finish(s State) Photo {
	s = flushSubstrate(s)
	return s.Photo
}

// Fold runs the whole row through the machine. Cells beyond the header and
// header columns missing from a short row are ignored.
func Fold(layout Layout, row []string) Photo {
	s := NewState()
	for i, role := range layout.Roles {
		if i >= len(row) {
			break
		}
		s = Step(s, role, row[i])
	}
	return Finish(s)
}

// flushTypeface commits the open typeface into the open substrate when it has
// style tags; otherwise it is dropped.
func flushTypeface(s State) State {
	if s.Typeface == nil {
		return s
	}
	if s.Substrate != nil && len(s.Typeface.TypefaceStyle) > 0 {
		s.Substrate.Typefaces = append(s.Substrate.Typefaces, *s.Typeface)
	}
	s.Typeface = nil
	return s
}

// flushSubstrate commits the open substrate, after flushing its open
// typeface, when it has a placement. A substrate without placement is
// discarded along with its typefaces.
func flushSubstrate(s State) State {
	if s.Substrate == nil {
		s.Typeface = nil
		return s
	}
	if s.Substrate.Placement == "" {
		s.Substrate = nil
		s.Typeface = nil
		return s
	}
	s = flushTypeface(s)
	s.Photo.Substrates = append(s.Photo.Substrates, *s.Substrate)
	s.Substrate = nil
	return s
}

func setPhotoField(p *Photo, f Field, v string) {
	switch f {
	case FieldID:
		p.ID = v
	case FieldCustomID:
		p.CustomID = v
	case FieldMunicipality:
		p.Municipality = v
	case FieldInitials:
		p.Initials = v
	case FieldStatus:
		p.Status = Status(v)
	case FieldSubmissionStarted:
		p.SubmissionStarted = ParseTimestamp(v)
	case FieldLastUpdated:
		p.LastUpdated = ParseTimestamp(v)
	case FieldSubstrateCount:
		p.NumberOfSubstrates, _ = ParseInt(v)
	case FieldPhotoLink:
		p.PhotoLink = v
	}
}

func setSubstrateField(sub *Substrate, f Field, v string) {
	switch f {
	case FieldAdditionalNotes:
		sub.AdditionalNotes = v
	case FieldNotASign:
		sub.ThisIsntReallyASign = ParseBool(v)
	case FieldWhatIsIt:
		sub.WhatIsIt = v
	case FieldConfidence:
		if n, ok := ParseInt(v); ok {
			sub.Confidence = &n
		} else {
			sub.Confidence = nil
		}
	case FieldConfidenceReasoning:
		sub.ConfidenceReasoning = v
	case FieldAdditionalInfo:
		sub.AdditionalInfo = v
	}
}

func setTypefaceField(tf *Typeface, f Field, v string) {
	switch f {
	case FieldCopy:
		tf.Copy = v
	case FieldLetteringOntology:
		tf.LetteringOntology = SplitTags(v)
	case FieldMessageFunction:
		tf.MessageFunction = SplitTags(v)
	case FieldCovidRelated:
		tf.CovidRelated = ParseBool(v)
	case FieldAdditionalNotes:
		tf.AdditionalNotes = v
	}
}
