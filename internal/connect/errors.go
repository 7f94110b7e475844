package connect

import (
	"errors"
	"fmt"
)

// ErrMissingSISID is returned when SIS addressing mode is enabled but the
// local user carries no SIS identifier.
var ErrMissingSISID = errors.New("user has no SIS ID")

// ConnectionError means the Adobe Connect server rejected our credentials.
type ConnectionError struct {
	Domain string
	Login  string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not log in to %s as %s", e.Domain, e.Login)
}

// MeetingFolderError means the configured meeting container does not exist
// on the Connect server. Raised only when meeting creation fails on the
// folder-id field.
type MeetingFolderError struct {
	Container string
}

func (e *MeetingFolderError) Error() string {
	return fmt.Sprintf("folder %q doesn't exist", e.Container)
}
