package models

import "time"

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "superadmin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// User is the profile record. Connections are not stored on it; see Connection.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	PasswordHash []byte            `json:"-"`
	DisplayName  string            `json:"displayName"`
	PhotoURL     *string           `json:"photoUrl,omitempty"`
	Bio          string            `json:"bio"`
	Title        string            `json:"title"`
	Location     string            `json:"location"`
	Company      string            `json:"company"`
	SocialLinks  map[string]string `json:"socialLinks"`
	Role         UserRole          `json:"role"`
	Status       UserStatus        `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleSuperAdmin
}

// ProfilePatch carries a partial profile update; nil fields are left as is.
type ProfilePatch struct {
	DisplayName *string
	PhotoURL    *string
	Bio         *string
	Title       *string
	Location    *string
	Company     *string
	SocialLinks map[string]string
}

func (u *User) Apply(p ProfilePatch) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.PhotoURL != nil {
		if *p.PhotoURL == "" {
			u.PhotoURL = nil
		} else {
			url := *p.PhotoURL
			u.PhotoURL = &url
		}
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Company != nil {
		u.Company = *p.Company
	}
	if p.SocialLinks != nil {
		u.SocialLinks = p.SocialLinks
	}
}

type Session struct {
	ID               string
	UserID           string
	DeviceID         string
	DeviceName       string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}

// Identity is the authenticated caller, passed explicitly into service calls.
type Identity struct {
	UserID    string
	SessionID string
	DeviceID  string
	Role      UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == UserRoleAdmin || i.Role == UserRoleSuperAdmin
}
