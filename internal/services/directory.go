package services

import (
	"context"
	"fmt"

	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/types"
	"gorm.io/gorm"
)

// Directory answers identity and role questions. Roles are evaluated at the
// moment of the check; later grants or revocations do not affect work already done.
type Directory interface {
	RolesOf(ctx context.Context, userID string) (models.RoleSet, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

type gormDirectory struct {
	db *gorm.DB
}

// NewDirectory returns a Directory reading the users and user_roles tables
// through db. Pass a transaction handle to make the checks part of it.
func NewDirectory(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

func (d *gormDirectory) RolesOf(ctx context.Context, userID string) (models.RoleSet, error) {
	var roles []string
	if err := d.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role", &roles).Error; err != nil {
		return nil, fmt.Errorf("load roles of %s: %w", userID, err)
	}

	set := make(models.RoleSet, len(roles))
	for _, r := range roles {
		set[models.Role(r)] = struct{}{}
	}
	return set, nil
}

func (d *gormDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("look up user %s: %w", userID, err)
	}
	return count > 0, nil
}

// requireRole fails with an authorization error unless userID holds role.
// An unknown user holds no roles.
func requireRole(ctx context.Context, dir Directory, userID string, role models.Role, message string) error {
	return requireAnyRole(ctx, dir, userID, []models.Role{role}, message)
}

// requireAnyRole fails with an authorization error unless userID holds at
// least one of roles.
func requireAnyRole(ctx context.Context, dir Directory, userID string, roles []models.Role, message string) error {
	held, err := dir.RolesOf(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if held.Has(r) {
			return nil
		}
	}
	return types.Authorization("%s", message)
}

// RequireRole checks outside of any command that userID holds role.
func (e *Engine) RequireRole(ctx context.Context, userID string, role models.Role) error {
	return requireRole(ctx, NewDirectory(e.db), userID, role, fmt.Sprintf("user lacks %s", role))
}
