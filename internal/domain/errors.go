package domain

import "errors"

var (
	ErrWindowNotFound  = errors.New("window not found")
	ErrCloseRejected   = errors.New("host rejected close")
	ErrUnsavedChanges  = errors.New("window has unsaved changes")
	ErrInvalidSettings = errors.New("invalid settings")
)
