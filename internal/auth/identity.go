package auth

import (
	"context"
	"net/http"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the authenticated caller, handed explicitly to every service entry point.
type Identity struct {
	UserID int  `json:"userId"`
	Role   Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or modify a resource owned by ownerID.
func (i Identity) CanAccess(ownerID int) bool {
	return i.IsAdmin() || i.UserID == ownerID
}

type identityCtxKey struct{}

func NewContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(Identity)
	return identity, ok
}

// BearerToken extracts the token from the "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequestIdentity returns the identity set by the auth middleware,
// or answers 401 and returns false when there is none.
func RequestIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	identity, ok := FromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return Identity{}, false
	}
	return identity, true
}
