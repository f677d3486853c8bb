package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
)

func TestRegisterUser(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	user, err := engine.RegisterUser(ctx, models.User{Email: " new@example.org ", DisplayName: "New"},
		[]models.Role{models.RoleReviewer, models.RoleAuthor, models.RoleReviewer}, adminID)
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	if len(user.UserID) != 36 {
		t.Errorf("Expected a generated UUID, got %q", user.UserID)
	}
	if user.Email != "new@example.org" {
		t.Errorf("Expected a trimmed email, got %q", user.Email)
	}
	if len(user.Roles) != 2 || user.Roles[0].Role != models.RoleAuthor || user.Roles[1].Role != models.RoleReviewer {
		t.Errorf("Expected AUTHOR and REVIEWER once each, got %+v", user.Roles)
	}

	roles, err := services.NewDirectory(db).RolesOf(ctx, user.UserID)
	if err != nil {
		t.Fatalf("Failed to load roles: %v", err)
	}
	if !roles.Has(models.RoleAuthor) || !roles.Has(models.RoleReviewer) || roles.Has(models.RoleAdmin) {
		t.Errorf("Unexpected roles %v", roles.Sorted())
	}

	trail, err := engine.AuditTrail(ctx, "user_roles", user.UserID+":AUTHOR")
	if err != nil {
		t.Fatalf("Failed to read audit trail: %v", err)
	}
	if len(trail) != 1 {
		t.Errorf("Expected 1 role audit entry, got %d", len(trail))
	}
}

func TestRegisterUserRejections(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	before := countRows(t, db, &models.User{}, "")

	_, err := engine.RegisterUser(ctx, models.User{Email: "x@example.org"}, nil, authorID)
	assertKind(t, err, types.ErrAuthorization)

	_, err = engine.RegisterUser(ctx, models.User{Email: "not-an-email"}, nil, adminID)
	assertKind(t, err, types.ErrValidation)

	_, err = engine.RegisterUser(ctx, models.User{Email: "y@example.org"}, []models.Role{"EDITOR"}, adminID)
	assertKind(t, err, types.ErrValidation)

	_, err = engine.RegisterUser(ctx, models.User{Email: authorID + "@example.org"}, nil, adminID)
	assertKind(t, err, types.ErrConflict)

	_, err = engine.RegisterUser(ctx, models.User{UserID: authorID, Email: "fresh@example.org"}, nil, "")
	assertKind(t, err, types.ErrConflict)

	_, err = engine.RegisterUser(ctx, models.User{UserID: strings.Repeat("u", models.MaxUserIDLength+1), Email: "long@example.org"}, nil, "")
	assertKind(t, err, types.ErrValidation)

	if n := countRows(t, db, &models.User{}, ""); n != before {
		t.Errorf("Expected no new users, got %d", n-before)
	}
}

func TestGrantAndRevokeRole(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	dir := services.NewDirectory(db)

	if err := engine.GrantRole(ctx, outsiderID, models.RoleReviewer, adminID); err != nil {
		t.Fatalf("Failed to grant role: %v", err)
	}
	// idempotent
	if err := engine.GrantRole(ctx, outsiderID, models.RoleReviewer, adminID); err != nil {
		t.Fatalf("Expected a repeated grant to succeed, got %v", err)
	}
	roles, err := dir.RolesOf(ctx, outsiderID)
	if err != nil {
		t.Fatalf("Failed to load roles: %v", err)
	}
	if !roles.Has(models.RoleReviewer) || len(roles) != 1 {
		t.Errorf("Expected REVIEWER only, got %v", roles.Sorted())
	}

	// roles apply from the moment they are granted
	paper := submittedPaper(t, engine, "Fresh", 1)
	if _, err := engine.AssignReviewer(ctx, paper.PaperID, 1, outsiderID, adminID); err != nil {
		t.Errorf("Expected the new reviewer to be assignable, got %v", err)
	}

	if err := engine.RevokeRole(ctx, outsiderID, models.RoleReviewer, adminID); err != nil {
		t.Fatalf("Failed to revoke role: %v", err)
	}
	_, err = engine.AssignReviewer(ctx, paper.PaperID, 1, outsiderID, adminID)
	assertKind(t, err, types.ErrAuthorization)

	err = engine.RevokeRole(ctx, outsiderID, models.RoleReviewer, adminID)
	assertKind(t, err, types.ErrNotFound)

	err = engine.GrantRole(ctx, "ghost", models.RoleAuthor, adminID)
	assertKind(t, err, types.ErrNotFound)

	err = engine.GrantRole(ctx, outsiderID, "EDITOR", adminID)
	assertKind(t, err, types.ErrValidation)

	err = engine.GrantRole(ctx, outsiderID, models.RoleAdmin, reviewerID)
	assertKind(t, err, types.ErrAuthorization)

	trail, err := engine.AuditTrail(ctx, "user_roles", outsiderID+":REVIEWER")
	if err != nil {
		t.Fatalf("Failed to read audit trail: %v", err)
	}
	if len(trail) != 2 || trail[0].Action != models.ActionInsert || trail[1].Action != models.ActionDelete {
		t.Errorf("Expected one grant and one revocation, got %+v", trail)
	}
}

func TestRequireRole(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	if err := engine.RequireRole(ctx, adminID, models.RoleAdmin); err != nil {
		t.Errorf("Expected admin to pass, got %v", err)
	}
	assertKind(t, engine.RequireRole(ctx, authorID, models.RoleAdmin), types.ErrAuthorization)
	assertKind(t, engine.RequireRole(ctx, "ghost", models.RoleAuthor), types.ErrAuthorization)
}
