package survey

// classify.go maps export header cells to column roles.
//
// Rules live in one ordered table and the first matching rule wins, so a
// reviewer can see every pattern and its precedence in one place. Headers are
// normalized before matching and the trailing group index of repeating
// columns ("Placement 2", "Copy (3)") is dropped without being parsed: group
// boundaries come from column position alone.

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Kind is the structural class of a column.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindPhoto
	KindSubstrateStart
	KindSubstrateField
	KindSubstrateTrailer
	KindTypefaceStart
	KindTypefaceField
)

// Field names the record field a column writes to.
type Field string

const (
	// Photo fields
	FieldID                Field = "id"
	FieldCustomID          Field = "custom_id"
	FieldMunicipality      Field = "municipality"
	FieldInitials          Field = "initials"
	FieldStatus            Field = "status"
	FieldSubmissionStarted Field = "submission_started"
	FieldLastUpdated       Field = "last_updated"
	FieldSubstrateCount    Field = "substrate_count"
	FieldPhotoLink         Field = "photo_link"

	// Substrate fields
	FieldPlacement           Field = "placement"
	FieldNotASign            Field = "not_a_sign"
	FieldWhatIsIt            Field = "what_is_it"
	FieldConfidence          Field = "confidence"
	FieldConfidenceReasoning Field = "confidence_reasoning"
	FieldAdditionalInfo      Field = "additional_info"

	// Typeface fields
	FieldTypefaceStyle     Field = "typeface_style"
	FieldCopy              Field = "copy"
	FieldLetteringOntology Field = "lettering_ontology"
	FieldMessageFunction   Field = "message_function"
	FieldCovidRelated      Field = "covid_related"

	// Shared by substrates and typefaces
	FieldAdditionalNotes Field = "additional_notes"
)

// Role is the classification of one header column.
type Role struct {
	Kind  Kind
	Field Field
}

// Unrecognized is the role of columns no rule matches. Later stages ignore them.
var Unrecognized = Role{Kind: KindUnrecognized}

// String renders the role as "photo:<field>", "substrate-start", etc.
func (r Role) String() string {
	switch r.Kind {
	case KindPhoto:
		return "photo:" + string(r.Field)
	case KindSubstrateStart:
		return "substrate-start"
	case KindSubstrateField:
		return "substrate-field:" + string(r.Field)
	case KindSubstrateTrailer:
		return "substrate-trailer:" + string(r.Field)
	case KindTypefaceStart:
		return "typeface-start"
	case KindTypefaceField:
		return "typeface-field:" + string(r.Field)
	default:
		return "unrecognized"
	}
}

// Layout is the classified header of one export. It is computed once and
// reused for every row.
type Layout struct {
	Header       []string
	Roles        []Role
	Unrecognized []string // Header cells no rule matched, in header order
}

// Recognized returns the number of columns with a known role.
func (l Layout) Recognized() int {
	return len(l.Roles) - len(l.Unrecognized)
}

// HasSubstrates reports whether the header contains at least one substrate group.
func (l Layout) HasSubstrates() bool {
	for _, r := range l.Roles {
		if r.Kind == KindSubstrateStart {
			return true
		}
	}
	return false
}

// Classify assigns a role to every header cell.
func Classify(header []string) Layout {
	layout := Layout{
		Header: header,
		Roles:  make([]Role, len(header)),
	}
	for i, h := range header {
		role := ClassifyHeader(h)
		layout.Roles[i] = role
		if role.Kind == KindUnrecognized {
			layout.Unrecognized = append(layout.Unrecognized, h)
		}
	}
	return layout
}

// ClassifyHeader returns the role of a single header cell.
func ClassifyHeader(header string) Role {
	base := HeaderBase(header)
	if base == "" {
		return Unrecognized
	}
	for _, r := range rules {
		if r.match(base) {
			return r.role
		}
	}
	return Unrecognized
}

type rule struct {
	match func(base string) bool
	role  Role
}

const notASignPrefix = "this isn't really a sign"

// rules is evaluated top to bottom. The "what is it" description column shares
// its opening words with the not-a-sign flag in some exports, so the
// description rule precedes the flag rule and the flag only matches its exact
// header. Anything else opening with the flag's words is reported as
// unrecognized instead of guessed.
var rules = []rule{
	{exact("submission id"), Role{KindPhoto, FieldID}},
	{exact("photo name"), Role{KindPhoto, FieldCustomID}},
	{exact("municipality"), Role{KindPhoto, FieldMunicipality}},
	{exact("initials"), Role{KindPhoto, FieldInitials}},
	{exact("status"), Role{KindPhoto, FieldStatus}},
	{exact("submission started", "started", "started at"), Role{KindPhoto, FieldSubmissionStarted}},
	{exact("last updated"), Role{KindPhoto, FieldLastUpdated}},
	{exact("number of substrates", "how many substrates"), Role{KindPhoto, FieldSubstrateCount}},
	{exact("photo link", "photo url"), Role{KindPhoto, FieldPhotoLink}},

	{exact("placement"), Role{KindSubstrateStart, ""}},
	{exact("additional substrate notes", "substrate notes"), Role{KindSubstrateField, FieldAdditionalNotes}},
	{prefixContaining(notASignPrefix, "what is it"), Role{KindSubstrateField, FieldWhatIsIt}},
	{exact("what is it"), Role{KindSubstrateField, FieldWhatIsIt}},
	{exact(notASignPrefix), Role{KindSubstrateField, FieldNotASign}},
	{prefix(notASignPrefix), Unrecognized},

	{exact("typeface style"), Role{KindTypefaceStart, ""}},
	{exact("copy"), Role{KindTypefaceField, FieldCopy}},
	{exact("lettering ontology"), Role{KindTypefaceField, FieldLetteringOntology}},
	{exact("message function"), Role{KindTypefaceField, FieldMessageFunction}},
	{exact("covid related"), Role{KindTypefaceField, FieldCovidRelated}},
	{exact("additional typeface notes", "typeface notes"), Role{KindTypefaceField, FieldAdditionalNotes}},

	{exact("overall confidence", "confidence"), Role{KindSubstrateTrailer, FieldConfidence}},
	{exact("confidence reasoning"), Role{KindSubstrateTrailer, FieldConfidenceReasoning}},
	{exact("additional info"), Role{KindSubstrateTrailer, FieldAdditionalInfo}},
}

func exact(names ...string) func(string) bool {
	return func(base string) bool {
		for _, n := range names {
			if base == n {
				return true
			}
		}
		return false
	}
}

func prefix(p string) func(string) bool {
	return func(base string) bool {
		return strings.HasPrefix(base, p)
	}
}

func prefixContaining(p, sub string) func(string) bool {
	return func(base string) bool {
		return strings.HasPrefix(base, p) && strings.Contains(base[len(p):], sub)
	}
}

var quoteFolder = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"ʼ", "'", // modifier letter apostrophe
	"`", "'",
	"isnt ", "isn't ",
	"is not ", "isn't ",
	"-", " ",
)

// HeaderBase normalizes a header cell for rule matching: Unicode NFC,
// apostrophes folded, lower case, whitespace collapsed, trailing punctuation
// and group index removed.
func HeaderBase(header string) string {
	s := norm.NFC.String(CleanCell(header))
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	s = quoteFolder.Replace(s + " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, " ?:")
	s = stripGroupIndex(s)
	return strings.TrimRight(s, " ?:")
}

// stripGroupIndex drops a trailing "2", " 2", "_2", "#2" or "(2)".
func stripGroupIndex(s string) string {
	inner := strings.TrimSuffix(s, ")")
	rest := strings.TrimRightFunc(inner, unicode.IsDigit)
	if len(rest) == len(inner) {
		return s
	}
	if inner != s {
		if !strings.HasSuffix(rest, "(") {
			return s
		}
		rest = strings.TrimSuffix(rest, "(")
	}
	return strings.TrimRight(rest, " _#")
}
