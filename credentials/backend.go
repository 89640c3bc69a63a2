package credentials

import (
	"context"

	"github.com/jrsteele09/mitti-dashboard/internal/errors"
)

// SlotName is the single named slot the session token lives in.
const SlotName = "token"

// ErrNoCredential is returned by Backend.Load when the slot is empty.
var ErrNoCredential = errors.ErrNoCredential

// Backend is the durable home of the credential slot. Implementations do no
// validation of the credential's shape or expiry; that is the backend
// service's job.
type Backend interface {
	Save(ctx context.Context, credential string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
