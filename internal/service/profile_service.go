package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

type ProfileService struct {
	users       UserStore
	connections ConnectionStore
	log         zerolog.Logger
}

func NewProfileService(users UserStore, connections ConnectionStore, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:       users,
		connections: connections,
		log:         log.With().Str("service", "profile").Logger(),
	}
}

// ProfileView is a profile as seen by viewer. Connections is only filled
// when viewers look at themselves.
type ProfileView struct {
	models.User
	Connection  models.ConnectionState            `json:"connection,omitempty"`
	Connections map[string]models.ConnectionState `json:"connections,omitempty"`
}

func (s *ProfileService) Get(ctx context.Context, viewer models.Identity, userID string) (ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	if user.Status != models.UserStatusActive && !viewer.IsAdmin() && viewer.UserID != userID {
		return ProfileView{}, repository.ErrUserNotFound
	}

	view := ProfileView{User: user}
	if viewer.UserID == userID {
		conns, err := s.connections.ListByUser(ctx, userID)
		if err != nil {
			return ProfileView{}, err
		}
		view.Connections = models.ConnectionMap(userID, conns)
		return view, nil
	}

	conn, err := s.connections.Get(ctx, viewer.UserID, userID)
	switch {
	case err == nil:
		view.Connection = conn.StateFor(viewer.UserID)
	case !errors.Is(err, repository.ErrConnectionNotFound):
		return ProfileView{}, err
	}
	return view, nil
}

type ProfileUpdate struct {
	DisplayName *string           `json:"displayName" validate:"omitempty,notblank,max=80"`
	PhotoURL    *string           `json:"photoUrl" validate:"omitempty,max=2048"`
	Bio         *string           `json:"bio" validate:"omitempty,max=2000"`
	Title       *string           `json:"title" validate:"omitempty,max=120"`
	Location    *string           `json:"location" validate:"omitempty,max=120"`
	Company     *string           `json:"company" validate:"omitempty,max=120"`
	SocialLinks map[string]string `json:"socialLinks" validate:"omitempty,max=10,dive,keys,notblank,max=40,endkeys,url"`
}

func (s *ProfileService) UpdateMe(ctx context.Context, id models.Identity, in ProfileUpdate) (models.User, error) {
	if err := validate.Struct(in); err != nil {
		return models.User{}, validationError(err)
	}
	if in.DisplayName != nil && strings.TrimSpace(*in.DisplayName) == "" {
		return models.User{}, invalid("displayName must not be blank")
	}
	if in.PhotoURL != nil && *in.PhotoURL != "" {
		if u, err := url.Parse(*in.PhotoURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return models.User{}, invalid("photoUrl must be an http(s) url")
		}
	}

	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return models.User{}, err
	}

	patch := models.ProfilePatch{
		DisplayName: trimmed(in.DisplayName),
		PhotoURL:    trimmed(in.PhotoURL),
		Bio:         in.Bio,
		Title:       trimmed(in.Title),
		Location:    trimmed(in.Location),
		Company:     trimmed(in.Company),
		SocialLinks: in.SocialLinks,
	}
	user.Apply(patch)

	return s.users.UpdateProfile(ctx, user)
}

func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, clampLimit(limit, 50, 200), offset)
}

func (s *ProfileService) SetRole(ctx context.Context, actor models.Identity, userID string, role models.UserRole) error {
	if !role.Valid() {
		return invalid("unknown role %q", role)
	}
	// Only a superadmin hands out or takes away admin rights.
	if role != models.UserRoleUser && actor.Role != models.UserRoleSuperAdmin {
		return ErrForbidden
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.Info().Str("actor", actor.UserID).Str("user_id", userID).Str("role", string(role)).Msg("role changed")
	return nil
}

// GrantRoleByEmail is the operator path used by the admin CLI.
func (s *ProfileService) GrantRoleByEmail(ctx context.Context, email string, role models.UserRole) (models.User, error) {
	if !role.Valid() {
		return models.User{}, invalid("unknown role %q", role)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.User{}, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return models.User{}, err
	}
	user.Role = role
	return user, nil
}

func (s *ProfileService) SetStatus(ctx context.Context, actor models.Identity, userID string, status models.UserStatus) error {
	switch status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusPending:
	default:
		return invalid("unknown status %q", status)
	}
	if actor.UserID == userID {
		return ErrForbidden
	}
	return s.users.UpdateStatus(ctx, userID, status)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
