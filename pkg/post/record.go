// Package post defines the normalized post record produced by fetchers and
// consumed by the interaction graph builder.
package post

import (
	"fmt"
	"time"
)

// Record is one observed post, reduced to the fields the graph builder needs
// plus the descriptive columns carried through to exports.
// A Record is treated as immutable once a producer returns it.
type Record struct {
	// Actor is the handle of the posting account. Never empty for valid records.
	Actor string `json:"actor"`
	// MentionedActors lists handles referenced in the post, in text order.
	MentionedActors []string `json:"mentioned_actors,omitempty"`
	// ResharedFromActor is the origin author of a reshare. Empty means "not a reshare".
	ResharedFromActor string `json:"reshared_from_actor,omitempty"`

	ID           string    `json:"id,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	Truncated    bool      `json:"truncated,omitempty"`
	Description  string    `json:"description,omitempty"` // Author profile bio
	Following    int       `json:"following,omitempty"`
	Followers    int       `json:"followers,omitempty"`
	TotalPosts   int       `json:"total_posts,omitempty"`
	ReshareCount int       `json:"reshare_count,omitempty"`
	Text         string    `json:"text,omitempty"`
	Hashtags     []string  `json:"hashtags,omitempty"`
}

// IsReshare reports whether the record republishes another actor's post.
func (r Record) IsReshare() bool {
	return r.ResharedFromActor != ""
}

// InvalidRecordError reports a record that cannot enter the graph.
// Position is the zero-based index of the record in its input sequence.
type InvalidRecordError struct {
	Position int
	Record   Record
	Reason   string
}

func (e *InvalidRecordError) Error() string {
	if e.Record.ID != "" {
		return fmt.Sprintf("invalid record at position %d (id %s): %s", e.Position, e.Record.ID, e.Reason)
	}
	return fmt.Sprintf("invalid record at position %d: %s", e.Position, e.Reason)
}

// Check validates a single record found at the given position.
func Check(pos int, r Record) error {
	if r.Actor == "" {
		return &InvalidRecordError{Position: pos, Record: r, Reason: "empty actor"}
	}
	return nil
}

// Validate checks every record and returns the first violation.
// Producers call it before handing records to the graph builder.
func Validate(records []Record) error {
	for i, r := range records {
		if err := Check(i, r); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns the valid records and the errors for the ones dropped.
func Filter(records []Record) ([]Record, []error) {
	valid := make([]Record, 0, len(records))
	var errs []error
	for i, r := range records {
		if err := Check(i, r); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, r)
	}
	return valid, errs
}
