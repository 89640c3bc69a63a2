package guard_test

import (
	"testing"

	"github.com/jrsteele09/mitti-dashboard/guard"
	"github.com/jrsteele09/mitti-dashboard/session"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		status   session.Status
		expected guard.Decision
	}{
		{session.StatusUnknown, guard.Pending},
		{session.StatusAnonymous, guard.Redirect},
		{session.StatusAuthenticated, guard.Allow},
		{session.Status(""), guard.Pending},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			require.Equal(t, tt.expected, guard.Decide(tt.status))
		})
	}
}

func TestDecideFollowsSessionTransitions(t *testing.T) {
	s := session.NewStore()
	require.Equal(t, guard.Pending, guard.Decide(s.Status()))

	s.SetAnonymous()
	require.Equal(t, guard.Redirect, guard.Decide(s.Status()))
}
