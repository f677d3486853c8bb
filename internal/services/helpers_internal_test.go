package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/models"
	"gorm.io/gorm"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from models.PaperStatus
		want models.PaperStatus
	}{
		{models.StatusDraft, models.StatusSubmitted},
		{models.StatusSubmitted, models.StatusRevisionRequested},
		{models.StatusUnderReview, models.StatusRevisionRequested},
		{models.StatusRevisionRequested, models.StatusRevisionRequested},
		{models.StatusAccepted, models.StatusRevisionRequested},
		{models.StatusRejected, models.StatusRevisionRequested},
	}
	for _, tt := range tests {
		if got := nextStatus(tt.from); got != tt.want {
			t.Errorf("nextStatus(%s) = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestRecordKey(t *testing.T) {
	if got := recordKey(7); got != "7" {
		t.Errorf("Expected 7, got %s", got)
	}
	if got := recordKey(7, 12); got != "7:12" {
		t.Errorf("Expected 7:12, got %s", got)
	}
	if actor("") != nil {
		t.Error("Expected no actor for a system operation")
	}
	if a := actor("u1"); a == nil || *a != "u1" {
		t.Errorf("Expected actor u1, got %v", a)
	}
}

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"AI":      "%ai%",
		"100%":    "%100!%%",
		"a_b":     "%a!_b%",
		"wow!":    "%wow!!%",
		"Graph X": "%graph x%",
	}
	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWordMatcherScore(t *testing.T) {
	tests := []struct {
		term, title, abstract string
		want                  float64
	}{
		{"AI", "Advanced AI in Healthcare", "", 2},
		{"ai", "Domain Adaptation", "a chain of models", 0},
		{"AI", "Triage", "AI-assisted ranking", 1},
		{"graph", "Graph Coloring", "every graph is planar", 3},
		{"graph", "Graphs", "graphing", 0},
		{"deep nets", "Deep Learning", "neural nets", 3},
		{"Über", "über alles", "", 2},
		{"100%", "100 percent", "", 2},
		{"%", "Yields of 100% efficiency", "", 2},
		{"_", "plain", "snake_case", 1},
	}
	for _, tt := range tests {
		if got := newWordMatcher(tt.term).score(tt.title, tt.abstract); got != tt.want {
			t.Errorf("score(%q, %q, %q) = %v, want %v", tt.term, tt.title, tt.abstract, got, tt.want)
		}
	}
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"mysql", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452, Message: "foreign key"}, false},
		{"postgres", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: paper_versions.paper_id"), true},
		{"sqlserver", errors.New("mssql: Violation of PRIMARY KEY constraint 'PK_x'"), true},
		{"other", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateKey(tt.err); got != tt.want {
				t.Errorf("isDuplicateKey(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMailNotifierMessage(t *testing.T) {
	n := NewMailNotifier(config.MailConfig{SMTPHost: "smtp.example.org", SMTPPort: 587, From: "papers@example.org"})
	m := n.Message(Assignment{
		ReviewID:      3,
		PaperID:       9,
		VersionNumber: 2,
		Title:         "<script>alert(1)</script>",
		ReviewerEmail: "r@example.org",
	})

	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "r@example.org" {
		t.Errorf("Unexpected recipient %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "paper 9, version 2") {
		t.Errorf("Unexpected subject %v", got)
	}

	var body strings.Builder
	if _, err := m.WriteTo(&body); err != nil {
		t.Fatalf("Failed to render message: %v", err)
	}
	if strings.Contains(body.String(), "<script>") {
		t.Error("Expected the title to be escaped")
	}
}

func TestMailNotifierRequiresAddress(t *testing.T) {
	n := NewMailNotifier(config.MailConfig{SMTPHost: "smtp.example.org", From: "papers@example.org"})
	if err := n.ReviewerAssigned(context.Background(), Assignment{ReviewID: 1}); err == nil {
		t.Error("Expected an error for a reviewer without an email")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.ReviewerAssigned(ctx, Assignment{ReviewID: 1, ReviewerEmail: "r@example.org"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMailNotifierTimeout(t *testing.T) {
	if got := NewMailNotifier(config.MailConfig{SMTPHost: "smtp.example.org"}).dialer.Timeout; got != DefaultMailTimeout {
		t.Errorf("Expected the default timeout, got %v", got)
	}

	// accepts connections but never sends the SMTP greeting
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	n := NewMailNotifier(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: addr.Port, From: "papers@example.org", Timeout: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = n.ReviewerAssigned(ctx, Assignment{ReviewID: 1, PaperID: 1, VersionNumber: 1, ReviewerEmail: "r@example.org"})
	if err == nil {
		t.Fatal("Expected a silent server to fail the send")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Expected the context deadline to bound the send, took %v", elapsed)
	}
}
