// Package models defines the Daybook records shared by the client and the
// server: moments, streak rows, rewards, profiles and shares.
package models

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
)

// PlaceholderPrefix marks client-generated ids for rows not yet confirmed by
// the server. Server ids are UUIDs and never carry it.
const PlaceholderPrefix = "temp-"

// MaxPageSize is the largest page the server returns from one list call.
const MaxPageSize = 100

var placeholderSeq atomic.Uint64

// NewPlaceholderID returns a process-unique placeholder id.
func NewPlaceholderID() string {
	return fmt.Sprintf("%s%d-%d", PlaceholderPrefix, time.Now().UnixNano(), placeholderSeq.Add(1))
}

// IsPlaceholderID reports whether id was produced by NewPlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// Moment is one journal record.
type Moment struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Title      string        `json:"title"`
	Note       string        `json:"note"`
	Date       calendar.Date `json:"date"`
	Photo      string        `json:"photo,omitempty"`
	IsFeatured bool          `json:"is_featured"`
	Seq        int64         `json:"seq"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Less reports whether m sorts before o in list order: featured first, then
// newest date, then newest insertion.
func (m Moment) Less(o Moment) bool {
	if m.IsFeatured != o.IsFeatured {
		return m.IsFeatured
	}
	if c := m.Date.Compare(o.Date); c != 0 {
		return c > 0
	}
	return m.Seq > o.Seq
}

// Placeholder builds the optimistic row shown while an insert is in flight.
func (in MomentInput) Placeholder(userID string, now time.Time) Moment {
	return Moment{
		ID:        NewPlaceholderID(),
		UserID:    userID,
		Title:     in.Title,
		Note:      in.Note,
		Date:      in.Date,
		Photo:     in.Photo,
		Seq:       -1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
