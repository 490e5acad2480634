package models

import (
	"time"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a registered student account.
type User struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password"`
	Role            string    `json:"role" db:"role"`
	Skills          []string  `json:"skills" db:"skills"`
	Interests       []string  `json:"interests" db:"interests"`
	Points          int       `json:"points" db:"points"`
	Streak          int       `json:"streak" db:"streak"`
	LastCheckinDate *Date     `json:"lastCheckinDate,omitempty" db:"last_checkin_date"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user may manage events.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Clone returns a copy that shares no slices or pointers with u.
func (u User) Clone() User {
	out := u
	out.Skills = append([]string(nil), u.Skills...)
	out.Interests = append([]string(nil), u.Interests...)
	if u.LastCheckinDate != nil {
		d := *u.LastCheckinDate
		out.LastCheckinDate = &d
	}
	return out
}

// ProfileUpdate carries the editable profile fields. A nil field is left
// unchanged.
type ProfileUpdate struct {
	Name      *string
	Skills    *[]string
	Interests *[]string
}

func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Skills == nil && u.Interests == nil
}

// Apply writes the non-nil fields onto user.
func (u ProfileUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Skills != nil {
		user.Skills = NormalizeSet(*u.Skills)
	}
	if u.Interests != nil {
		user.Interests = NormalizeSet(*u.Interests)
	}
}
