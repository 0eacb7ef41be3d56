// Package models defines the domain types for Raido.
package models

import "strings"

// NoteExt is the filename suffix every note carries in the remote store.
const NoteExt = ".md"

// NoteID is the logical note name, derived from a stored filename by
// stripping NoteExt.
type NoteID string

// NoteIDFromFilename derives the identifier for a listed filename. ok is
// false when the filename does not carry the note suffix; such entries are
// not notes and never appear in the directory.
func NoteIDFromFilename(name string) (NoteID, bool) {
	base, found := strings.CutSuffix(name, NoteExt)
	if !found || base == "" {
		return "", false
	}
	return NoteID(base), true
}

// Filename returns the stored filename for the identifier.
func (id NoteID) Filename() string {
	return string(id) + NoteExt
}

// NoteFile is the remote representation of a note. SHA is the store's
// content hash for the current version; it changes on every successful
// write and authorizes the next update.
type NoteFile struct {
	Name    string
	Content string
	SHA     string
}

// Directory is the ordered set of known note identifiers. It is rebuilt in
// full from each listing, never mutated incrementally.
type Directory struct {
	ids []NoteID
}

// NewDirectory builds a directory from listed filenames, preserving listing
// order and excluding entries without the note suffix.
func NewDirectory(filenames []string) Directory {
	var ids []NoteID
	for _, name := range filenames {
		if id, ok := NoteIDFromFilename(name); ok {
			ids = append(ids, id)
		}
	}
	return Directory{ids: ids}
}

// IDs returns the identifiers in listing order.
func (d Directory) IDs() []NoteID {
	out := make([]NoteID, len(d.ids))
	copy(out, d.ids)
	return out
}

// Len returns the number of notes in the directory.
func (d Directory) Len() int { return len(d.ids) }

// Contains reports whether id is in the directory.
func (d Directory) Contains(id NoteID) bool {
	for _, v := range d.ids {
		if v == id {
			return true
		}
	}
	return false
}
