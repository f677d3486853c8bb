// response.go
//
// A versioned paper submission and peer-review workflow service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of paperdb.
// paperdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// paperdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with paperdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// AssertStatus verifies the HTTP status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// ParseJSON decodes the response body into the target
func ParseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	defer resp.Body.Close()

	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

// ParseMutation decodes the data member of a mutation response into the target
func ParseMutation(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	var envelope struct {
		Ok   bool            `json:"ok"`
		Data json.RawMessage `json:"data"`
	}
	ParseJSON(t, resp, &envelope)
	if !envelope.Ok {
		t.Fatalf("Expected a successful mutation, got %s", string(envelope.Data))
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("Failed to decode mutation data: %v. Data: %s", err, string(envelope.Data))
	}
}

// AssertErrorType verifies the status and error type of an error response
func AssertErrorType(t *testing.T, resp *http.Response, status int, errorType string) {
	t.Helper()
	AssertStatus(t, resp, status)
	var result struct {
		Ok   bool   `json:"ok"`
		Type string `json:"type"`
	}
	ParseJSON(t, resp, &result)
	if result.Ok || result.Type != errorType {
		t.Errorf("Expected a %s error, got ok=%v type=%s", errorType, result.Ok, result.Type)
	}
}
