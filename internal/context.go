package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextPrincipalKey ctxKey = "principal"
	ContextClientIPKey  ctxKey = "clientIP"
)

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	AccountID       string `json:"account_id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Role            string `json:"role"`
	PermissionLevel int    `json:"permissions"`
}

func (p *Principal) HasLevel(required int) bool {
	return p != nil && p.PermissionLevel >= required
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ip, ok := ctx.Value(ContextClientIPKey).(string); ok {
		return ip
	}
	return ""
}

func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextClientIPKey, ip)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
