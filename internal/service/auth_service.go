package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Cookie names set by the auth service
const (
	AccessTokenCookie  = "validate_access_token"
	RefreshTokenCookie = "valid_refresh_token"
)

// AuthService decides which login affordance to show. It never runs the
// login flow itself; it only reads the cookies the auth service leaves behind.
type AuthService struct {
	secret    []byte
	loginURL  string
	logoutURL string
}

// NewAuthService creates a new auth service
func NewAuthService(secret, loginURL, logoutURL string) *AuthService {
	return &AuthService{
		secret:    []byte(secret),
		loginURL:  loginURL,
		logoutURL: logoutURL,
	}
}

// LoginLink returns "Log Out" when both cookies are present and the access
// token verifies, "Log In" otherwise
func (s *AuthService) LoginLink(accessToken, refreshToken string) models.LoginLink {
	if accessToken != "" && refreshToken != "" {
		if _, err := s.Verify(accessToken); err == nil {
			return models.LoginLink{Authenticated: true, Text: "Log Out", Href: s.logoutURL}
		}
	}
	return models.LoginLink{Text: "Log In", Href: s.loginURL}
}

// Verify checks an HS256 access token and returns its subject
func (s *AuthService) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("verify access token: %w", err)
	}
	if !parsed.Valid {
		return "", errors.New("verify access token: invalid token")
	}
	return claims.Subject, nil
}

// Issue signs an access token for subject, valid for ttl
func (s *AuthService) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
