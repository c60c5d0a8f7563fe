package auth

import (
	"github.com/frahmantamala/staff-registry/internal"
)

// ABACPolicy holds the attribute checks that depend on the resource, not
// only on the caller's role.
type ABACPolicy struct {
	permissions *PermissionChecker
}

func NewABACPolicy(permissions *PermissionChecker) *ABACPolicy {
	return &ABACPolicy{permissions: permissions}
}

// CanRevokeToken allows the token's owner and administrators.
func (p *ABACPolicy) CanRevokeToken(principal *internal.Principal, token *RefreshToken) error {
	if principal == nil || token == nil {
		return internal.ErrForbidden
	}
	if token.AccountID == principal.AccountID {
		return nil
	}
	if p.permissions.IsAdmin(principal) {
		return nil
	}
	return internal.ErrForbidden
}
