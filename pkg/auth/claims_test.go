package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestClaims_Identity(t *testing.T) {
	t.Run("prefers email", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
			Email:            "reviewer@example.com",
		}
		assert.Equal(t, "reviewer@example.com", claims.Identity())
	})

	t.Run("falls back to subject", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		}
		assert.Equal(t, "user-123", claims.Identity())
	})
}

func TestClaimsContext(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		claims := &Claims{Role: "expert", Email: "expert@example.com"}
		ctx := SetClaims(context.Background(), claims)

		got, ok := GetClaims(ctx)
		assert.True(t, ok)
		assert.Equal(t, claims, got)
	})

	t.Run("absent", func(t *testing.T) {
		got, ok := GetClaims(context.Background())
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
