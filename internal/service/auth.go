package service

import (
	"errors"
	"time"

	"vidops/internal/config"
	"vidops/internal/pkg/jwt"
	"vidops/internal/pkg/password"
)

// ErrInvalidCredentials is returned for a bad username/password pair. The
// message never distinguishes the two.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService authenticates the dashboard operator. Credentials come from
// config: this is a single-tenant internal tool with one operator account.
type AuthService struct {
	cfg *config.AuthConfig
	jwt *jwt.JWT
}

// NewAuthService creates the service.
func NewAuthService(cfg *config.AuthConfig, j *jwt.JWT) *AuthService {
	return &AuthService{cfg: cfg, jwt: j}
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Login checks the operator credentials and issues an access token.
func (s *AuthService) Login(username, plaintext string) (*LoginResult, error) {
	if username != s.cfg.OperatorUser {
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(plaintext, s.cfg.OperatorHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken("operator", username, "operator")
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwt.GetExpiration()),
	}, nil
}
