package apperr

import "errors"

var (
	ErrAuth             = errors.New("credential rejected")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrTransport        = errors.New("transport failure")
	ErrDecode           = errors.New("malformed content")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoNoteOpen       = errors.New("no note open")
)
