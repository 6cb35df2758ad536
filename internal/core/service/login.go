package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/core/access"
	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/metrics"
)

// LoginService composes the Authenticator and SessionManager into the
// login and logout transactions.
type LoginService struct {
	auth     *Authenticator
	sessions *SessionManager
	log      zerolog.Logger
}

func NewLoginService(auth *Authenticator, sessions *SessionManager, log zerolog.Logger) *LoginService {
	return &LoginService{auth: auth, sessions: sessions, log: log}
}

// Login authenticates the credentials and, on success, replaces
// priorSessionID with a new session. Rejections come back as a
// *domain.RejectedError matching domain.ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, email, password, priorSessionID string) (*domain.LoginResult, error) {
	start := time.Now()
	result, err := s.auth.Authenticate(ctx, email, password)
	metrics.LoginDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("login failed")
		return nil, err
	}
	if !result.OK() {
		metrics.LoginAttemptsTotal.WithLabelValues(string(result.Reason)).Inc()
		s.log.Info().Str("email", domain.NormalizeEmail(email)).Str("reason", string(result.Reason)).Msg("login rejected")
		return nil, result.Err()
	}

	session, err := s.sessions.Establish(ctx, priorSessionID, result.Identity)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("identity_id", result.Identity.ID).Msg("establish session")
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionsEstablishedTotal.Inc()
	s.log.Info().Str("identity_id", result.Identity.ID).Str("role", result.Identity.Role.String()).Msg("login succeeded")

	return &domain.LoginResult{
		Session:     session,
		Identity:    result.Identity,
		Destination: access.Landing(result.Identity.Role),
	}, nil
}

// Logout destroys sessionID and returns the login page as redirect target.
func (s *LoginService) Logout(ctx context.Context, sessionID string) (string, error) {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		s.log.Error().Err(err).Msg("logout failed")
		return "", err
	}
	if sessionID != "" {
		metrics.SessionsDestroyedTotal.Inc()
	}
	return access.LoginPage, nil
}
