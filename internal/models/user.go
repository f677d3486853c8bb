package models

import (
	"sort"
	"time"
)

// Role is a capability a user may hold. A user may hold several at once.
type Role string

const (
	RoleAuthor   Role = "AUTHOR"
	RoleReviewer Role = "REVIEWER"
	RoleAdmin    Role = "ADMIN"
)

// MaxUserIDLength is the width of every varchar user id column.
const MaxUserIDLength = 36

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAuthor, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

// User is owned by the identity collaborator; everything else references it by UserID.
type User struct {
	UserID        string     `gorm:"primaryKey;size:36" json:"userId"`
	Email         string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	DisplayName   string     `gorm:"size:255;not null;default:''" json:"displayName"`
	CredentialRef string     `gorm:"size:255" json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	Roles         []UserRole `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
}

// UserRole associates a user with one role.
type UserRole struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	Role      Role      `gorm:"primaryKey;size:16" json:"role"`
	GrantedAt time.Time `gorm:"not null" json:"grantedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for UserRole
func (UserRole) TableName() string {
	return "user_roles"
}

// RoleSet is the point-in-time set of roles a user holds.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from a list of roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set holds role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Sorted lists the roles in a stable order.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
