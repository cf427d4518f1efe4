// Package messenger defines what the pipeline needs from a messaging
// platform client.
package messenger

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// CodeFunc returns the login code sent to phone.
type CodeFunc func(ctx context.Context, phone string) (string, error)

// PasswordFunc returns the two-factor password, if the account has one.
type PasswordFunc func(ctx context.Context) (string, error)

// Client is a user-account messaging client.
type Client interface {
	// Connect opens the session. It must be called before anything else.
	Connect(ctx context.Context) error
	// Authenticate signs in when the stored session is missing or expired.
	Authenticate(ctx context.Context, phone string, code CodeFunc, password PasswordFunc) error
	// Join subscribes the account to source. It returns nil,
	// ErrAlreadyMember, a *ThrottledError or another error.
	Join(ctx context.Context, source string) error
	// FetchHistory returns up to limit recent messages of source, newest
	// first.
	FetchHistory(ctx context.Context, source string, limit int) ([]model.RawMessage, error)
	// Subscribe delivers new messages from sources, or from every chat when
	// sources is empty. The channel is closed when ctx is done or the client
	// disconnects.
	Subscribe(ctx context.Context, sources []string) (<-chan model.RawMessage, error)
	// Disconnect closes the session.
	Disconnect(ctx context.Context) error
}

// ErrAlreadyMember is returned by Join when the account is already in the
// source. Callers treat it as success.
var ErrAlreadyMember = eris.New("already a member")

// ThrottledError is returned when the platform asks the client to back off.
// A zero RetryAfter means no wait was suggested.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	if e.RetryAfter <= 0 {
		return "throttled"
	}
	return fmt.Sprintf("throttled: retry after %s", e.RetryAfter)
}
