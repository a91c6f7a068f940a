package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
	"github.com/Fazeel2019/Upskill-sub000/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserSuspended      = errors.New("user suspended")
	ErrSessionRevoked     = errors.New("session revoked")
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      config.SecurityConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log.With().Str("service", "auth").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DeviceInfo identifies the client a session belongs to.
type DeviceInfo struct {
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"displayName" validate:"notblank,max=80"`
	Device      DeviceInfo
}

type LoginInput struct {
	Email    string
	Password string
	Device   DeviceInfo
}

type RefreshInput struct {
	UserID       string
	RefreshToken string
	DeviceID     string
}

type AuthResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
	DeviceID     string      `json:"deviceId"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := validate.Struct(input); err != nil {
		return AuthResult{}, validationError(err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	at := s.now()
	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: hash,
		DisplayName:  input.DisplayName,
		SocialLinks:  map[string]string{},
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.openSession(ctx, user, input.Device)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.activeUser(ctx, func(ctx context.Context) (models.User, error) {
		user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
		if err != nil {
			return user, err
		}
		if ok, verr := security.VerifyPassword(input.Password, user.PasswordHash); verr != nil || !ok {
			return models.User{}, ErrInvalidCredentials
		}
		return user, nil
	})
	if err != nil {
		return AuthResult{}, err
	}
	return s.openSession(ctx, user, input.Device)
}

func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	user, err := s.activeUser(ctx, func(ctx context.Context) (models.User, error) {
		return s.users.GetByID(ctx, input.UserID)
	})
	if err != nil {
		return AuthResult{}, err
	}

	session, err := s.sessions.FindByRefreshHash(ctx, user.ID, security.HashRefreshToken(input.RefreshToken))
	if err != nil || session.DeviceID != input.DeviceID {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !session.ExpiresAt.After(s.now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.rotate(ctx, user, session)
}

// activeUser runs lookup, folding a missing user into ErrInvalidCredentials
// and rejecting anyone who is not active.
func (s *AuthService) activeUser(ctx context.Context, lookup func(context.Context) (models.User, error)) (models.User, error) {
	user, err := lookup(ctx)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return models.User{}, ErrInvalidCredentials
	case err != nil:
		return models.User{}, err
	case user.Status != models.UserStatusActive:
		return models.User{}, ErrUserSuspended
	}
	return user, nil
}

// openSession starts a session for the device, replacing any previous one
// held by the same device, then trims the user's oldest sessions.
func (s *AuthService) openSession(ctx context.Context, user models.User, device DeviceInfo) (AuthResult, error) {
	if device.DeviceID == "" {
		device.DeviceID = ids.New()
	}
	if device.DeviceName == "" {
		device.DeviceName = "Unknown Device"
	}

	at := s.now()
	result, err := s.rotate(ctx, user, models.Session{
		ID:         ids.New(),
		UserID:     user.ID,
		DeviceID:   device.DeviceID,
		DeviceName: device.DeviceName,
		IPAddress:  device.IPAddress,
		UserAgent:  device.UserAgent,
		CreatedAt:  at,
		LastSeenAt: at,
	})
	if err != nil {
		return AuthResult{}, err
	}

	if s.cfg.MaxSessions > 0 {
		trimmed, err := s.sessions.Trim(ctx, user.ID, s.cfg.MaxSessions)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("trim sessions failed")
		case trimmed > 0:
			s.log.Info().Str("user_id", user.ID).Int64("sessions", trimmed).Msg("trimmed sessions")
		}
	}
	return result, nil
}

// rotate gives the session a fresh refresh token and expiry, stores it and
// signs an access token bound to it.
func (s *AuthService) rotate(ctx context.Context, user models.User, session models.Session) (AuthResult, error) {
	refresh, hash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}
	session.RefreshTokenHash = hash
	session.ExpiresAt = s.now().Add(s.cfg.JWTRefreshTTL)
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return AuthResult{}, err
	}

	access, err := security.GenerateAccessToken(s.cfg.JWTAccessSecret, models.Identity{
		UserID:    user.ID,
		SessionID: session.ID,
		DeviceID:  session.DeviceID,
		Role:      user.Role,
	}, s.cfg.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		DeviceID:     session.DeviceID,
	}, nil
}

// PruneSessions deletes every expired session.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// Authenticate resolves a bearer token to the caller's identity. The session
// must still exist so logout and revocation take effect before token expiry.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Identity, models.User, error) {
	claims, err := security.ParseAccessToken(token, s.cfg.JWTAccessSecret)
	if err != nil {
		return models.Identity{}, models.User{}, err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil || session.UserID != claims.UserID {
		return models.Identity{}, models.User{}, ErrSessionRevoked
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return models.Identity{}, models.User{}, err
	}
	if user.Status != models.UserStatusActive {
		return models.Identity{}, models.User{}, ErrUserSuspended
	}

	id := claims.Identity()
	// The stored role wins so a role change applies without re-login.
	id.Role = user.Role
	return id, user, nil
}

func (s *AuthService) Touch(ctx context.Context, sessionID, ip, userAgent string) {
	if err := s.sessions.Touch(ctx, sessionID, ip, userAgent); err != nil {
		s.log.Debug().Err(err).Str("session_id", sessionID).Msg("touch session failed")
	}
}

func (s *AuthService) Me(ctx context.Context, id models.Identity) (models.User, error) {
	return s.users.GetByID(ctx, id.UserID)
}

func (s *AuthService) Sessions(ctx context.Context, id models.Identity) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, id.UserID)
}

func (s *AuthService) Logout(ctx context.Context, id models.Identity, deviceID string) error {
	if deviceID == "" {
		deviceID = id.DeviceID
	}
	return s.sessions.DeleteByDevice(ctx, id.UserID, deviceID)
}
