package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

func parseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

// parseMutation decodes the data member of a mutation response
func parseMutation(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	var envelope struct {
		Ok   bool            `json:"ok"`
		Data json.RawMessage `json:"data"`
	}
	parseJSON(t, resp, &envelope)
	if !envelope.Ok {
		t.Fatalf("Expected a successful mutation, got %s", string(envelope.Data))
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("Failed to decode mutation data: %v. Data: %s", err, string(envelope.Data))
	}
}
