// Package auth provides JWT-based authentication for juristack-engine.
// Tokens carry the caller's reviewer role; role enforcement for review
// decisions happens in the review pipeline, not here.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for storing JWT claims.
const ClaimsKey contextKey = "claims"

// Claims represents the JWT claims structure. It embeds
// RegisteredClaims for standard fields (sub, iss, exp) and adds the
// reviewer role.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`  // Reviewer role: curator or expert
	Email string `json:"email,omitempty"` // Reviewer email address
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims stores JWT claims in the context.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// Identity returns the best available identifier for audit fields:
// email when present, otherwise the token subject.
func (c *Claims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}
