// Package store holds the single-use confirmation codes used for account
// confirmation and password reset.
package store

import (
	"context"
	"errors"
	"fmt"

	"uptask/utils"
)

// ErrTokenNotFound is returned for unknown, consumed and expired codes alike.
var ErrTokenNotFound = fmt.Errorf("confirmation token %w", utils.ErrNotFound)

var errCodeExhausted = errors.New("could not generate a unique confirmation code")

const maxIssueAttempts = 5

// TokenStore issues and redeems confirmation codes. Expired codes are
// indistinguishable from absent ones.
type TokenStore interface {
	// Issue creates a new code bound to userID. Earlier codes stay valid.
	Issue(ctx context.Context, userID uint) (string, error)
	// Validate reports the owner of a live code without consuming it.
	Validate(ctx context.Context, code string) (uint, error)
	// Consume deletes a live code and returns its owner. A code can be
	// consumed at most once.
	Consume(ctx context.Context, code string) (uint, error)
	// PurgeExpired removes expired codes and reports how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
