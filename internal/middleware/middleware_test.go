package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSessions map[string]string

func (s stubSessions) ValidateSession(cookie, _, _ string) (string, error) {
	if id, ok := s[cookie]; ok {
		return id, nil
	}
	return "", errors.New("unknown session")
}

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	handlers = append(handlers, func(c *fiber.Ctx) error {
		version, _ := c.Locals("apiVersion").(string)
		return c.SendString(UserID(c) + "|" + version)
	})
	app.Get("/", handlers...)
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(data)
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp(VersionMiddleware())

	tests := []struct {
		header string
		status int
		want   string
	}{
		{"", fiber.StatusOK, "|1.0.0"},
		{"1", fiber.StatusOK, "|1.0.0"},
		{"1.0", fiber.StatusOK, "|1.0.0"},
		{"1.2.0", fiber.StatusOK, "|1.2.0"},
		{"2.0.0", fiber.StatusBadRequest, "version"},
		{"v1", fiber.StatusBadRequest, "version"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("X-Api-Version", tt.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("Version %q: expected status %d, got %d", tt.header, tt.status, resp.StatusCode)
		}
		if got := body(t, resp); got != tt.want {
			t.Errorf("Version %q: expected %q, got %q", tt.header, tt.want, got)
		}
	}
}

func TestRequireSession(t *testing.T) {
	app := newApp(RequireSession(stubSessions{"good": "user-1"}))

	tests := []struct {
		cookie string
		status int
		want   string
	}{
		{"good", fiber.StatusOK, "user-1|"},
		{"bad", fiber.StatusForbidden, "session"},
		{"", fiber.StatusForbidden, "session"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: "cookie_session", Value: tt.cookie})
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("Cookie %q: expected status %d, got %d", tt.cookie, tt.status, resp.StatusCode)
		}
		if got := body(t, resp); got != tt.want {
			t.Errorf("Cookie %q: expected %q, got %q", tt.cookie, tt.want, got)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := newApp(RequestLogger(zap.New(core)), VersionMiddleware(), RequireSession(stubSessions{"good": "user-1"}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "good"})
	if _, err := app.Test(req); err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if _, err := app.Test(httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}

	ok := entries[0].ContextMap()
	if entries[0].Level != zapcore.InfoLevel || ok["status"] != int64(200) || ok["user_id"] != "user-1" || ok["api_version"] != "1.0.0" {
		t.Errorf("Unexpected entry %v %v", entries[0].Level, ok)
	}

	denied := entries[1].ContextMap()
	if entries[1].Level != zapcore.WarnLevel || denied["status"] != int64(403) {
		t.Errorf("Unexpected entry %v %v", entries[1].Level, denied)
	}
	if _, ok := denied["user_id"]; ok {
		t.Error("Expected no user on a rejected request")
	}
}
