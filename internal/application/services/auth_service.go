package services

import (
	"errors"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/security"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on a failed dashboard login
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues dashboard access tokens. Only the analytics rollup is
// protected; recording endpoints stay open to the host application.
type AuthService struct {
	jwtSecret     string
	passwordHash  string
	tokenLifetime time.Duration
	logger        *logging.ChanneledLogger
}

// NewAuthService creates the dashboard auth service
func NewAuthService(jwtSecret, passwordHash string, tokenLifetime time.Duration, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		jwtSecret:     jwtSecret,
		passwordHash:  passwordHash,
		tokenLifetime: tokenLifetime,
		logger:        logger,
	}
}

// Enabled reports whether dashboard auth is configured
func (s *AuthService) Enabled() bool {
	return s.jwtSecret != "" && s.passwordHash != ""
}

// Login verifies the dashboard password and issues a JWT
func (s *AuthService) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("dashboard auth not configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.logger.Auth().Warn("Dashboard login rejected")
		return "", ErrInvalidCredentials
	}

	token, err := security.GenerateDashboardToken(s.jwtSecret, s.tokenLifetime)
	if err != nil {
		return "", err
	}

	s.logger.Auth().Info("Dashboard login succeeded")
	return token, nil
}

// Validate checks a dashboard token
func (s *AuthService) Validate(token string) error {
	_, err := security.ValidateJWT(token, s.jwtSecret)
	return err
}
