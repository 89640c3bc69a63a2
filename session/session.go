package session

import (
	"github.com/jrsteele09/mitti-dashboard/users"
)

type Status string

const (
	// StatusUnknown is the initial state while the startup check is in flight.
	StatusUnknown       Status = "unknown"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Snapshot is a copy of the session at one point in time. Identity is non-nil
// exactly when Status is StatusAuthenticated.
type Snapshot struct {
	Status     Status
	Credential string
	Identity   *users.User
}

func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

func (s Snapshot) IsLoading() bool {
	return s.Status == StatusUnknown
}
