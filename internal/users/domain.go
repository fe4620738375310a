package users

import "time"

// Profile carries the optional display attributes of a user.
type Profile struct {
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RoleRef references a role by name.
type RoleRef struct {
	Name string `json:"name"`
}

// User represents a tenant user account for management.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Profile   *Profile  `json:"profile,omitempty"`
	Role      *RoleRef  `json:"role,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	if u.Profile != nil {
		p := *u.Profile
		out.Profile = &p
	}
	if u.Role != nil {
		r := *u.Role
		out.Role = &r
	}
	return out
}

// RoleName returns the bound role name or "" when the user has none.
func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// Nickname returns the profile nickname or "".
func (u User) Nickname() string {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.Nickname
}

// AvatarURL returns the profile avatar reference or "".
func (u User) AvatarURL() string {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.AvatarURL
}

// DisplayName picks the nickname when requested and present, else the email.
func (u User) DisplayName(useNickname bool) string {
	if useNickname && u.Nickname() != "" {
		return u.Nickname()
	}
	return u.Email
}

// BindRoleInput is the payload of a role binding request.
type BindRoleInput struct {
	Role string `json:"role" validate:"required,max=64"`
}
