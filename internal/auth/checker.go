package auth

import "context"

var _ Checker = (*Service)(nil)
var _ Checker = (*TestChecker)(nil)

type Checker interface {
	Identity(ctx context.Context, token string) (Identity, error)
}

// TestChecker resolves tokens from a fixed map, for handler and middleware tests.
type TestChecker struct {
	Sessions map[string]Identity
}

func NewTestChecker() *TestChecker {
	return &TestChecker{
		Sessions: map[string]Identity{},
	}
}

func (c *TestChecker) Identity(_ context.Context, token string) (Identity, error) {
	identity, ok := c.Sessions[token]
	if !ok {
		return Identity{}, ErrSessionNotFound
	}
	return identity, nil
}
