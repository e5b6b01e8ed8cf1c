package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxTitleRunes = 100
	MaxNoteRunes  = 2000

	PhotoRefScheme  = "s3://"
	photoDataPrefix = "data:"
)

// MomentInput is what a user submits to create a moment.
type MomentInput struct {
	Title string        `json:"title"`
	Note  string        `json:"note"`
	Date  calendar.Date `json:"date"`
	Photo string        `json:"photo,omitempty"`
	// LegacyID is set only for rows imported from a legacy local store.
	LegacyID string `json:"legacy_id,omitempty"`
}

// ValidationError names the offending field. It matches common.ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", common.ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// Sanitize returns a normalized copy: NFC, trimmed, control characters
// removed. The note keeps newlines and tabs.
func (in MomentInput) Sanitize() MomentInput {
	out := in
	out.Title = clean(in.Title, false)
	out.Note = clean(in.Note, true)
	out.Photo = strings.TrimSpace(in.Photo)
	out.LegacyID = strings.TrimSpace(in.LegacyID)
	return out
}

func clean(s string, multiline bool) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if multiline && (r == '\n' || r == '\t') {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Validate checks a sanitized input.
func (in MomentInput) Validate() error {
	switch {
	case in.Title == "":
		return &ValidationError{Field: "title", Reason: "is required"}
	case utf8.RuneCountInString(in.Title) > MaxTitleRunes:
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("exceeds %d characters", MaxTitleRunes)}
	case utf8.RuneCountInString(in.Note) > MaxNoteRunes:
		return &ValidationError{Field: "note", Reason: fmt.Sprintf("exceeds %d characters", MaxNoteRunes)}
	case in.Date.IsZero():
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if in.Photo != "" {
		if err := validatePhoto(in.Photo); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeAndValidate is the usual entry point for user input.
func (in MomentInput) SanitizeAndValidate() (MomentInput, error) {
	out := in.Sanitize()
	return out, out.Validate()
}

var errBadPhoto = errors.New("must be a data: base64 payload or an s3:// reference")

func validatePhoto(p string) error {
	switch {
	case strings.HasPrefix(p, PhotoRefScheme):
		if len(p) == len(PhotoRefScheme) {
			return &ValidationError{Field: "photo", Reason: errBadPhoto.Error()}
		}
		return nil
	case strings.HasPrefix(p, photoDataPrefix):
		_, payload, ok := strings.Cut(p, ";base64,")
		if !ok || payload == "" {
			return &ValidationError{Field: "photo", Reason: errBadPhoto.Error()}
		}
		if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
			return &ValidationError{Field: "photo", Reason: "has invalid base64 payload"}
		}
		return nil
	default:
		return &ValidationError{Field: "photo", Reason: errBadPhoto.Error()}
	}
}

// PhotoKey extracts the object key from an s3:// reference.
func PhotoKey(ref string) (string, bool) {
	if !strings.HasPrefix(ref, PhotoRefScheme) || len(ref) == len(PhotoRefScheme) {
		return "", false
	}
	return ref[len(PhotoRefScheme):], true
}
