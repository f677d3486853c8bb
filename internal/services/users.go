package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/types"
	"gorm.io/gorm"
)

// RegisterUser creates a user holding roles. An empty actorID marks a system
// registration (seeding, identity sync); otherwise the actor must be an ADMIN.
// A blank UserID is assigned a new UUID.
func (e *Engine) RegisterUser(ctx context.Context, user models.User, roles []models.Role, actorID string) (*models.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	user.UserID = strings.TrimSpace(user.UserID)
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	user.Roles = nil

	err := e.transaction(ctx, cmdRegisterUser, func(tx *gorm.DB) error {
		if actorID != "" {
			if err := requireRole(ctx, NewDirectory(tx), actorID, models.RoleAdmin, "actor lacks ADMIN"); err != nil {
				return err
			}
		}
		if len(user.UserID) > models.MaxUserIDLength {
			return types.Validation("user id %q is longer than %d characters", user.UserID, models.MaxUserIDLength)
		}
		if !strings.Contains(user.Email, "@") {
			return types.Validation("email %q is invalid", user.Email)
		}
		for _, r := range roles {
			if !r.Valid() {
				return types.Validation("unknown role %q", r)
			}
		}

		now := e.now()
		user.CreatedAt = now
		if err := tx.Omit("Roles").Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict(err, "user %s or email %s already registered", user.UserID, user.Email)
			}
			return fmt.Errorf("insert user %s: %w", user.UserID, err)
		}

		audit := newAuditRecorder(tx, now)
		if err := audit.record(models.User{}.TableName(), user.UserID,
			models.ActionInsert, nil, user, actor(actorID)); err != nil {
			return err
		}

		for _, r := range models.NewRoleSet(roles...).Sorted() {
			grant := models.UserRole{UserID: user.UserID, Role: r, GrantedAt: now}
			if err := tx.Create(&grant).Error; err != nil {
				return fmt.Errorf("grant %s to %s: %w", r, user.UserID, err)
			}
			if err := audit.record(models.UserRole{}.TableName(), user.UserID+models.RecordKeySeparator+string(r),
				models.ActionInsert, nil, grant, actor(actorID)); err != nil {
				return err
			}
			user.Roles = append(user.Roles, grant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// userMustExist reports a NotFound error for an unknown user.
func userMustExist(ctx context.Context, dir Directory, userID string) error {
	exists, err := dir.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return types.NotFound("user %s not found", userID)
	}
	return nil
}

// GrantRole gives userID a role. Granting a role already held changes nothing.
func (e *Engine) GrantRole(ctx context.Context, userID string, role models.Role, actorID string) error {
	return e.transaction(ctx, cmdGrantRole, func(tx *gorm.DB) error {
		dir := NewDirectory(tx)
		if err := requireRole(ctx, dir, actorID, models.RoleAdmin, "actor lacks ADMIN"); err != nil {
			return err
		}
		if !role.Valid() {
			return types.Validation("unknown role %q", role)
		}
		if err := userMustExist(ctx, dir, userID); err != nil {
			return err
		}

		held, err := dir.RolesOf(ctx, userID)
		if err != nil {
			return err
		}
		if held.Has(role) {
			return nil
		}

		now := e.now()
		grant := models.UserRole{UserID: userID, Role: role, GrantedAt: now}
		if err := tx.Create(&grant).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict(err, "role %s was granted to %s concurrently", role, userID)
			}
			return fmt.Errorf("grant %s to %s: %w", role, userID, err)
		}
		return newAuditRecorder(tx, now).record(models.UserRole{}.TableName(), userID+models.RecordKeySeparator+string(role),
			models.ActionInsert, nil, grant, actor(actorID))
	})
}

// RevokeRole takes a role away from userID. Work already assigned under the
// role is unaffected.
func (e *Engine) RevokeRole(ctx context.Context, userID string, role models.Role, actorID string) error {
	return e.transaction(ctx, cmdRevokeRole, func(tx *gorm.DB) error {
		if err := requireRole(ctx, NewDirectory(tx), actorID, models.RoleAdmin, "actor lacks ADMIN"); err != nil {
			return err
		}
		if !role.Valid() {
			return types.Validation("unknown role %q", role)
		}

		var grant models.UserRole
		if err := tx.Where("user_id = ? AND role = ?", userID, role).First(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("user %s does not hold %s", userID, role)
			}
			return fmt.Errorf("load role %s of %s: %w", role, userID, err)
		}
		if err := tx.Where("user_id = ? AND role = ?", userID, role).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("revoke %s from %s: %w", role, userID, err)
		}
		return newAuditRecorder(tx, e.now()).record(models.UserRole{}.TableName(), userID+models.RecordKeySeparator+string(role),
			models.ActionDelete, grant, nil, actor(actorID))
	})
}
