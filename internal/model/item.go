// Package model defines the core memory data types.
package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// TimeLayout is the fixed-width UTC ISO 8601 form used for timestamps the
// store generates. Expiry compares these strings directly, so every
// timestamp in a collection should share this layout.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Kind is the category tag of an item.
type Kind string

const (
	KindFact     Kind = "fact"
	KindDecision Kind = "decision"
	KindDoc      Kind = "doc"
	KindNote     Kind = "note"
)

// ValidKinds are the allowed item kinds.
var ValidKinds = map[Kind]bool{
	KindFact:     true,
	KindDecision: true,
	KindDoc:      true,
	KindNote:     true,
}

// KindNames lists the valid kinds in a stable order for messages and help text.
var KindNames = []string{"fact", "decision", "doc", "note"}

// Valid reports whether k is one of the allowed kinds.
func (k Kind) Valid() bool {
	return ValidKinds[k]
}

// KindList returns the valid kinds joined for display.
func KindList() string {
	return strings.Join(KindNames, ", ")
}

// Item represents a stored memory entry.
type Item struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Text      string          `json:"text"`
	CreatedAt string          `json:"createdAt"`
	ExpiresAt string          `json:"expiresAt,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	c := it
	if it.Tags != nil {
		c.Tags = slices.Clone(it.Tags)
	}
	if it.Source != nil {
		c.Source = slices.Clone(it.Source)
	}
	if it.Meta != nil {
		c.Meta = slices.Clone(it.Meta)
	}
	return c
}

// Expired reports whether the item's expiry is at or before now. Both values
// are compared as strings.
func (it Item) Expired(now string) bool {
	return it.ExpiresAt != "" && it.ExpiresAt <= now
}

// HasTags reports whether the item carries every tag in want.
func (it Item) HasTags(want []string) bool {
	for _, t := range want {
		if !slices.Contains(it.Tags, t) {
			return false
		}
	}
	return true
}

// Patch is a partial update. Nil fields are left unchanged. An item's ID
// cannot be changed through a patch.
type Patch struct {
	Kind      *Kind           `json:"kind,omitempty"`
	Text      *string         `json:"text,omitempty"`
	CreatedAt *string         `json:"createdAt,omitempty"`
	ExpiresAt *string         `json:"expiresAt,omitempty"` // "" clears the expiry
	Tags      *[]string       `json:"tags,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// Apply returns a copy of it with the patch merged in.
func (p Patch) Apply(it Item) Item {
	out := it.Clone()
	if p.Kind != nil {
		out.Kind = *p.Kind
	}
	if p.Text != nil {
		out.Text = *p.Text
	}
	if p.CreatedAt != nil {
		out.CreatedAt = *p.CreatedAt
	}
	if p.ExpiresAt != nil {
		out.ExpiresAt = *p.ExpiresAt
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	if p.Source != nil {
		out.Source = patchRaw(p.Source)
	}
	if p.Meta != nil {
		out.Meta = patchRaw(p.Meta)
	}
	return out
}

// patchRaw copies a patched JSON value. A JSON null clears the field.
func patchRaw(v json.RawMessage) json.RawMessage {
	if string(bytes.TrimSpace(v)) == "null" {
		return nil
	}
	return slices.Clone(v)
}

// Now formats t in TimeLayout.
func Now(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NewID returns a new lexically sortable identifier.
func NewID() string {
	return ulid.Make().String()
}
