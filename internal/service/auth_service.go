package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prepline/internal/model"
	"prepline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// session is the in-memory record behind a token.
type session struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// authService implements AuthService. Sessions are process-local: a restart
// logs everyone out, which is acceptable for a single-venue deployment.
type authService struct {
	userRepo   repository.UserRepository
	sessionTTL time.Duration
	logger     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]session
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, sessionTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		sessionTTL: sessionTTL,
		sessions:   make(map[string]session),
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if !user.Active {
		s.logger.Warn().Str("username", username).Msg("login attempt on disabled account")
		return nil, model.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("username", username).Msg("failed login attempt")
		return nil, model.ErrInvalidCredentials
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(s.sessionTTL)

	s.mu.Lock()
	s.sessions[token] = session{userID: user.ID, expiresAt: expiresAt}
	s.mu.Unlock()

	s.logger.Info().Str("username", username).Msg("user logged in")

	return &model.Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout invalidates a session token.
func (s *authService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Authenticate resolves a session token to its user. Expired sessions are
// reaped on access.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, model.ErrUnauthorised
	}

	user, err := s.userRepo.GetByID(ctx, sess.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if user == nil || !user.Active {
		// The account was removed or disabled since login; kill the session.
		s.Logout(token)
		return nil, model.ErrUnauthorised
	}

	return user, nil
}

// Authorize checks that the user may access the given page.
func (s *authService) Authorize(ctx context.Context, user *model.User, page string) error {
	if user == nil || !user.Active {
		return model.ErrUnauthorised
	}

	if user.IsAdmin {
		return nil
	}

	has, err := s.userRepo.HasPermission(ctx, user.ID, page)
	if err != nil {
		return fmt.Errorf("failed to check permission: %w", err)
	}

	if !has {
		s.logger.Warn().
			Str("username", user.Username).
			Str("page", page).
			Msg("permission denied")
		return model.ErrForbidden
	}

	return nil
}
