package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/database"
	"github.com/localnerve/paperdb/internal/handlers"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
	"go.uber.org/zap"
)

// cookieSessions treats the session cookie as the user id
type cookieSessions struct{}

func (cookieSessions) ValidateSession(cookie, _, _ string) (string, error) {
	if cookie == "expired" {
		return "", errors.New("session expired")
	}
	return cookie, nil
}

// setupApp creates a fiber app over an in-memory database with an author,
// a reviewer and an admin
func setupApp(t *testing.T) (*fiber.App, *services.Engine) {
	t.Helper()
	cfg := &config.Config{
		DB: config.DBConfig{
			Type:               "sqlite-pure",
			Database:           ":memory:",
			AppConnectionLimit: 1,
			LogLevel:           "silent",
		},
	}
	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	engine := services.NewEngine(db, zap.NewNop())
	for id, role := range map[string]models.Role{"author": models.RoleAuthor, "reviewer": models.RoleReviewer, "admin": models.RoleAdmin} {
		if _, err := engine.RegisterUser(context.Background(), models.User{UserID: id, Email: id + "@example.org"}, []models.Role{role}, ""); err != nil {
			t.Fatalf("Failed to register %s: %v", id, err)
		}
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Register(app, engine, cookieSessions{})
	app.Use(handlers.NotFoundHandler)
	return app, engine
}

func request(t *testing.T, app *fiber.App, method, target, user string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.AddCookie(&http.Cookie{Name: "cookie_session", Value: user})
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

type errorResult struct {
	Status        int    `json:"status"`
	Message       string `json:"message"`
	Ok            bool   `json:"ok"`
	Type          string `json:"type"`
	ConflictError bool   `json:"conflictError"`
}

func TestPaperLifecycle(t *testing.T) {
	app, _ := setupApp(t)

	resp := request(t, app, "POST", "/api/papers", "author", nil)
	assertStatus(t, resp, fiber.StatusCreated)
	var paper models.Paper
	parseMutation(t, resp, &paper)
	if paper.PaperID == 0 || paper.Status != models.StatusDraft {
		t.Fatalf("Unexpected created paper %+v", paper)
	}

	resp = request(t, app, "POST", "/api/papers/1/versions", "author", handlers.SubmitVersionInput{
		Title: "Deep Learning", Abstract: "Neural networks", FileRef: "s3://papers/1",
	})
	assertStatus(t, resp, fiber.StatusCreated)

	resp = request(t, app, "POST", "/api/papers/1/tags", "author", handlers.TagInput{Tag: "Machine Learning"})
	assertStatus(t, resp, fiber.StatusOK)

	resp = request(t, app, "GET", "/api/papers/1", "reviewer", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var detail services.PaperDetail
	parseJSON(t, resp, &detail)
	if detail.Status != models.StatusSubmitted || detail.Current == nil || detail.Current.Title != "Deep Learning" {
		t.Errorf("Unexpected detail %+v", detail)
	}
	if len(detail.Tags) != 1 || detail.Tags[0] != "Machine Learning" {
		t.Errorf("Expected the tag, got %v", detail.Tags)
	}

	resp = request(t, app, "GET", "/api/papers/1/versions", "reviewer", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var versions []models.PaperVersion
	parseJSON(t, resp, &versions)
	if len(versions) != 1 || versions[0].VersionNumber != 1 {
		t.Errorf("Expected one version, got %+v", versions)
	}

	resp = request(t, app, "GET", "/api/search?q=neural", "reviewer", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var results []services.SearchResult
	parseJSON(t, resp, &results)
	if len(results) != 1 || results[0].PaperID != 1 {
		t.Errorf("Expected paper 1, got %+v", results)
	}

	resp = request(t, app, "DELETE", "/api/papers/1/tags/Machine%20Learning", "author", nil)
	assertStatus(t, resp, fiber.StatusOK)

	resp = request(t, app, "DELETE", "/api/papers/1", "admin", nil)
	assertStatus(t, resp, fiber.StatusOK)

	resp = request(t, app, "GET", "/api/papers/1", "admin", nil)
	assertStatus(t, resp, fiber.StatusNotFound)
}

func TestReviewRoutes(t *testing.T) {
	app, engine := setupApp(t)
	ctx := context.Background()
	paper, err := engine.CreatePaper(ctx, "author")
	if err != nil {
		t.Fatalf("Failed to create paper: %v", err)
	}
	if _, err := engine.SubmitPaperVersion(ctx, paper.PaperID, "Title", "Abstract", "s3://x", "author"); err != nil {
		t.Fatalf("Failed to submit version: %v", err)
	}

	resp := request(t, app, "POST", "/api/papers/1/versions/1/reviews", "admin", handlers.AssignReviewerInput{ReviewerID: "reviewer"})
	assertStatus(t, resp, fiber.StatusCreated)
	var review models.Review
	parseMutation(t, resp, &review)
	if review.Status != models.ReviewPending {
		t.Errorf("Expected a pending review, got %s", review.Status)
	}

	score := 9
	resp = request(t, app, "POST", "/api/reviews/1/outcome", "reviewer", handlers.ReviewOutcomeInput{Score: &score})
	assertStatus(t, resp, fiber.StatusBadRequest)

	score = 4
	comments := "Solid work"
	resp = request(t, app, "POST", "/api/reviews/1/outcome", "reviewer", handlers.ReviewOutcomeInput{Comments: &comments, Score: &score})
	assertStatus(t, resp, fiber.StatusOK)

	resp = request(t, app, "POST", "/api/reviews/1/outcome", "reviewer", handlers.ReviewOutcomeInput{Score: &score})
	assertStatus(t, resp, fiber.StatusUnprocessableEntity)

	resp = request(t, app, "GET", "/api/stats/active-reviewers", "author", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var reviewers []services.ActiveReviewer
	parseJSON(t, resp, &reviewers)
	if len(reviewers) != 1 || reviewers[0].UserID != "reviewer" || reviewers[0].CompletedReviews != 1 {
		t.Errorf("Unexpected reviewers %+v", reviewers)
	}
}

func TestCitationRoutes(t *testing.T) {
	app, engine := setupApp(t)
	ctx := context.Background()
	for _, title := range []string{"Cites", "Cited"} {
		paper, err := engine.CreatePaper(ctx, "author")
		if err != nil {
			t.Fatalf("Failed to create paper: %v", err)
		}
		if _, err := engine.SubmitPaperVersion(ctx, paper.PaperID, title, "", "s3://"+title, "author"); err != nil {
			t.Fatalf("Failed to submit version: %v", err)
		}
	}

	// the cited id may arrive as a string
	resp := request(t, app, "POST", "/api/papers/1/citations", "author", map[string]interface{}{"citedPaperId": "2"})
	assertStatus(t, resp, fiber.StatusCreated)

	resp = request(t, app, "POST", "/api/papers/1/citations", "author", map[string]interface{}{"citedPaperId": 2})
	assertStatus(t, resp, fiber.StatusConflict)
	var conflict errorResult
	parseJSON(t, resp, &conflict)
	if !conflict.ConflictError || conflict.Ok {
		t.Errorf("Expected a conflict response, got %+v", conflict)
	}

	resp = request(t, app, "GET", "/api/stats/most-cited", "author", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var cited []services.CitedPaper
	parseJSON(t, resp, &cited)
	if len(cited) != 2 || cited[0].PaperID != 2 || cited[0].CitationCount != 1 {
		t.Errorf("Unexpected citation stats %+v", cited)
	}
}

func TestUserRoutes(t *testing.T) {
	app, _ := setupApp(t)

	resp := request(t, app, "POST", "/api/users", "admin", map[string]interface{}{
		"email": "new@example.org", "displayName": "New", "roles": "author",
	})
	assertStatus(t, resp, fiber.StatusCreated)
	var user models.User
	parseMutation(t, resp, &user)
	if user.UserID == "" || len(user.Roles) != 1 || user.Roles[0].Role != models.RoleAuthor {
		t.Errorf("Unexpected user %+v", user)
	}

	resp = request(t, app, "PUT", "/api/users/"+user.UserID+"/roles/reviewer", "admin", nil)
	assertStatus(t, resp, fiber.StatusOK)
	resp = request(t, app, "DELETE", "/api/users/"+user.UserID+"/roles/REVIEWER", "admin", nil)
	assertStatus(t, resp, fiber.StatusOK)
	resp = request(t, app, "DELETE", "/api/users/"+user.UserID+"/roles/REVIEWER", "admin", nil)
	assertStatus(t, resp, fiber.StatusNotFound)

	resp = request(t, app, "PUT", "/api/users/"+user.UserID+"/roles/ADMIN", "author", nil)
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = request(t, app, "GET", "/api/audit?table=user_roles&key="+user.UserID+":REVIEWER", "admin", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var trail []models.AuditLogEntry
	parseJSON(t, resp, &trail)
	if len(trail) != 2 {
		t.Errorf("Expected a grant and a revocation, got %d entries", len(trail))
	}

	resp = request(t, app, "GET", "/api/audit", "admin", nil)
	assertStatus(t, resp, fiber.StatusBadRequest)
	resp = request(t, app, "GET", "/api/audit?table=papers", "author", nil)
	assertStatus(t, resp, fiber.StatusForbidden)
}

func TestBulkImportRoute(t *testing.T) {
	app, _ := setupApp(t)

	resp := request(t, app, "POST", "/api/papers/bulk", "admin", map[string]interface{}{"authorIds": []string{"author", "author"}})
	assertStatus(t, resp, fiber.StatusCreated)
	var papers []models.Paper
	parseMutation(t, resp, &papers)
	if len(papers) != 2 || papers[0].Status != models.StatusSubmitted {
		t.Errorf("Unexpected papers %+v", papers)
	}

	resp = request(t, app, "POST", "/api/papers/bulk", "admin", map[string]interface{}{"authorIds": "ghost"})
	assertStatus(t, resp, fiber.StatusNotFound)

	resp = request(t, app, "POST", "/api/papers/bulk", "author", map[string]interface{}{"authorIds": []string{"author"}})
	assertStatus(t, resp, fiber.StatusForbidden)
}

func TestErrorMapping(t *testing.T) {
	app, _ := setupApp(t)

	tests := []struct {
		name   string
		method string
		target string
		user   string
		body   interface{}
		status int
		kind   string
	}{
		{"no session", "GET", "/api/papers/1", "", nil, fiber.StatusForbidden, "session"},
		{"expired session", "GET", "/api/papers/1", "expired", nil, fiber.StatusForbidden, "session"},
		{"bad id", "GET", "/api/papers/abc", "author", nil, fiber.StatusBadRequest, "validation"},
		{"missing paper", "GET", "/api/papers/42", "author", nil, fiber.StatusNotFound, "not_found"},
		{"wrong role", "POST", "/api/papers", "reviewer", nil, fiber.StatusForbidden, "authorization"},
		{"bad body", "POST", "/api/papers/1/tags", "author", "not an object", fiber.StatusBadRequest, "validation"},
		{"blank search", "GET", "/api/search?q=%20", "author", nil, fiber.StatusBadRequest, "validation"},
		{"unknown route", "GET", "/api/nothing", "author", nil, fiber.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, app, tt.method, tt.target, tt.user, tt.body)
			assertStatus(t, resp, tt.status)
			var result errorResult
			parseJSON(t, resp, &result)
			if result.Ok || result.Type != tt.kind || result.Message == "" {
				t.Errorf("Unexpected error body %+v", result)
			}
		})
	}
}

func TestVersionHeader(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/stats/most-cited", nil)
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "author"})
	req.Header.Set("X-Api-Version", "1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	assertStatus(t, resp, fiber.StatusOK)
	if got := resp.Header.Get("X-Api-Version"); got != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %q", got)
	}

	req = httptest.NewRequest("GET", "/api/stats/most-cited", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	assertStatus(t, resp, fiber.StatusBadRequest)
}
