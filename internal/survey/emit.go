package survey

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidStatus and ErrMissingInitials are the rule violations Validate
// reports. They are wrapped in *ValidationError.
var (
	ErrInvalidStatus   = errors.New("invalid enum for status")
	ErrMissingInitials = errors.New("empty required field initials")
)

// ValidationError reports why a Photo cannot be stored.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %q", e.Err, e.Value)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Emitter finalizes reconstructed Photos.
type Emitter struct {
	// PhotoBaseURL, when set, is used to derive PhotoLink for photos whose
	// export row has no link: PhotoBaseURL + "/" + escaped CustomID.
	PhotoBaseURL string
}

// Emit trims text fields and applies defaults. It never rejects a row; a
// Photo with no substrates is emitted as is.
func (e Emitter) Emit(p Photo) Photo {
	p.ID = strings.TrimSpace(p.ID)
	p.CustomID = strings.TrimSpace(p.CustomID)
	p.Municipality = strings.TrimSpace(p.Municipality)
	p.Initials = strings.TrimSpace(p.Initials)
	p.PhotoLink = strings.TrimSpace(p.PhotoLink)

	if p.Status == "" {
		p.Status = StatusUnclaimed
	}
	if p.PhotoLink == "" && e.PhotoBaseURL != "" && p.CustomID != "" {
		p.PhotoLink = strings.TrimRight(e.PhotoBaseURL, "/") + "/" + url.PathEscape(p.CustomID)
	}
	if p.Substrates == nil {
		p.Substrates = []Substrate{}
	}
	return p
}

// Reconstruct folds row through layout and emits the resulting Photo.
func (e Emitter) Reconstruct(layout Layout, row []string) Photo {
	return e.Emit(Fold(layout, row))
}

// Reconstruct is Emitter.Reconstruct with the zero Emitter.
func Reconstruct(layout Layout, row []string) Photo {
	return Emitter{}.Reconstruct(layout, row)
}

// Validate checks the record-level rules a Photo must satisfy before it is
// stored: a known status, and initials unless the photo is unclaimed.
func Validate(p Photo) error {
	if !p.Status.Valid() {
		return &ValidationError{Field: string(FieldStatus), Value: string(p.Status), Err: ErrInvalidStatus}
	}
	if p.Initials == "" && p.Status != StatusUnclaimed {
		return &ValidationError{Field: string(FieldInitials), Err: ErrMissingInitials}
	}
	return nil
}
