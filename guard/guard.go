// Package guard decides whether a privileged view may render for the current
// session status.
package guard

import "github.com/jrsteele09/mitti-dashboard/session"

type Decision int

const (
	// Pending means the session is still being checked: show a neutral
	// placeholder and do not redirect.
	Pending Decision = iota
	// Redirect sends the visitor to the anonymous entry point.
	Redirect
	Allow
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Decide maps a session status to a guard decision. Anything that is not a
// known settled status is treated as still pending.
func Decide(status session.Status) Decision {
	switch status {
	case session.StatusAuthenticated:
		return Allow
	case session.StatusAnonymous:
		return Redirect
	default:
		return Pending
	}
}
