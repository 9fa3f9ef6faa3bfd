package domain

// RoleGuest is the only role with reduced privileges.
const RoleGuest = "guest"

// Identity is the caller derived from a verified bearer token.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsGuest reports whether the identity carries the guest role.
func (i Identity) IsGuest() bool {
	return i.Role == RoleGuest
}

// TokenVerifier verifies a bearer token and returns the identity it asserts.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// TokenIssuer issues signed tokens for an identity. Used by development tooling and tests.
type TokenIssuer interface {
	Issue(identity Identity) (string, error)
}

// AuthorizeEventMutation decides whether identity may create, update or delete events.
// A nil identity means the verifier did not run.
func AuthorizeEventMutation(identity *Identity) error {
	if identity == nil || identity.IsGuest() {
		return ErrPermissionDenied
	}
	return nil
}
