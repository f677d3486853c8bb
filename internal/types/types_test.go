package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestFlexList(t *testing.T) {
	tests := []struct {
		input string
		want  FlexList[string]
	}{
		{`"a"`, FlexList[string]{"a"}},
		{`["a","b"]`, FlexList[string]{"a", "b"}},
		{`[]`, FlexList[string]{}},
		{`null`, nil},
	}
	for _, tt := range tests {
		var body struct {
			Items FlexList[string] `json:"items"`
		}
		if err := json.Unmarshal([]byte(`{"items":`+tt.input+`}`), &body); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", tt.input, err)
		}
		if !reflect.DeepEqual(body.Items, tt.want) {
			t.Errorf("Input %s: expected %#v, got %#v", tt.input, tt.want, body.Items)
		}
	}

	var bad FlexList[int]
	if err := json.Unmarshal([]byte(`"x"`), &bad); err == nil {
		t.Error("Expected an error for a mistyped element")
	}
}

func TestStrings(t *testing.T) {
	got := Strings(FlexList[string]{" a ", "", "b", "  ", "a"})
	if !reflect.DeepEqual(got, []string{"a", "b", "a"}) {
		t.Errorf("Unexpected %v", got)
	}
	if got := Strings(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected an empty list, got %#v", got)
	}
}

func TestFlexID(t *testing.T) {
	for _, input := range []string{`42`, `"42"`, `" 42 "`} {
		var id FlexID
		if err := json.Unmarshal([]byte(input), &id); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", input, err)
		}
		if id.Uint64() != 42 {
			t.Errorf("Input %s: expected 42, got %d", input, id)
		}
	}

	for _, input := range []string{`"abc"`, `-1`, `true`, `"-5"`} {
		var id FlexID
		if err := json.Unmarshal([]byte(input), &id); err == nil {
			t.Errorf("Expected an error for %s", input)
		}
	}

	data, err := json.Marshal(FlexID(7))
	if err != nil || string(data) != "7" {
		t.Errorf("Expected 7, got %s, %v", data, err)
	}
}

func TestWorkflowErrorKinds(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		kind     Kind
	}{
		{Authorization("user %s lacks %s", "u1", "ADMIN"), ErrAuthorization, KindAuthorization},
		{NotFound("paper %d not found", 3), ErrNotFound, KindNotFound},
		{Validation("title is required"), ErrValidation, KindValidation},
		{InvalidState("review %d is completed", 1), ErrInvalidState, KindInvalidState},
		{Conflict(errors.New("duplicate key"), "version already exists"), ErrConflict, KindConflict},
	}
	sentinels := []error{ErrAuthorization, ErrNotFound, ErrValidation, ErrInvalidState, ErrConflict}

	for _, tt := range tests {
		wrapped := fmt.Errorf("command failed: %w", tt.err)
		if KindOf(wrapped) != tt.kind {
			t.Errorf("Expected kind %s, got %s", tt.kind, KindOf(wrapped))
		}
		for _, s := range sentinels {
			if got, want := errors.Is(wrapped, s), s == tt.sentinel; got != want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, s, got, want)
			}
		}
	}

	if KindOf(errors.New("plain")) != "" {
		t.Error("Expected no kind for a plain error")
	}
}

func TestConflictUnwrap(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	err := Conflict(cause, "lost the race")
	if !errors.Is(err, cause) {
		t.Error("Expected the cause to be reachable")
	}
	if err.Error() != "conflict: lost the race: UNIQUE constraint failed" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	a, b := NotFound("x"), NotFound("x")
	if errors.Is(a, b) {
		t.Error("Expected distinct errors with messages not to match")
	}
}

func TestCustomError(t *testing.T) {
	err := &CustomError{Code: 403, Message: "no session", Type: "session"}
	if err.Error() != "403: no session [type: session]" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
