package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthService validates bearer tokens on incoming requests.
type AuthService interface {
	// ValidateRequest extracts and validates the bearer token, returning
	// its claims.
	ValidateRequest(r *http.Request) (*Claims, error)
}

// Config holds auth service configuration.
type Config struct {
	// EnableVerification controls signature validation. When false,
	// tokens are parsed without verification and missing tokens yield
	// development claims. Never disable outside local development.
	EnableVerification bool
	// JWKSURL is the JWKS endpoint to validate signatures against.
	JWKSURL string
	// Issuer, when set, must match the token's iss claim.
	Issuer string
}

type authService struct {
	cfg    Config
	jwks   keyfunc.Keyfunc
	logger *zap.Logger
}

// NewAuthService creates an AuthService. When verification is enabled
// the JWKS is fetched from cfg.JWKSURL and refreshed in the background.
func NewAuthService(cfg Config, logger *zap.Logger) (AuthService, error) {
	s := &authService{cfg: cfg, logger: logger.Named("auth")}

	if cfg.EnableVerification {
		jwks, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWKS from %s: %w", cfg.JWKSURL, err)
		}
		s.jwks = jwks
	}

	return s, nil
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, error) {
	tokenString, err := extractBearerToken(r)

	if !s.cfg.EnableVerification {
		// Local development: accept unverified tokens, or fall back to
		// header-supplied identity so curl workflows stay usable.
		if err != nil {
			return devClaims(r), nil
		}
		claims := &Claims{}
		parser := jwt.NewParser()
		if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
			return devClaims(r), nil
		}
		return claims, nil
	}

	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256", "ES256"})}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, s.jwks.Keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("Authorization header is not a bearer token")
	}
	return strings.TrimPrefix(header, prefix), nil
}

func devClaims(r *http.Request) *Claims {
	claims := &Claims{
		Role:  r.Header.Get("X-Reviewer-Role"),
		Email: r.Header.Get("X-Reviewer"),
	}
	if claims.Role == "" {
		claims.Role = "curator"
	}
	if claims.Email == "" {
		claims.Email = "dev@localhost"
	}
	return claims
}
