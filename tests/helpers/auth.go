package helpers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"testing"

	authorizer "github.com/localnerve/authorizer-go"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 12 character password with a capital, a digit and a special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := []byte{upper[randInt(len(upper))], special[randInt(len(special))], numbers[randInt(len(numbers))]}
	for len(password) < 12 {
		password = append(password, all[randInt(len(all))])
	}
	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}
	return string(password)
}

// AcquireAccount signs up and logs in an Authorizer user and returns its id,
// which becomes the user's paperdb id
func AcquireAccount(t *testing.T, authzURL, clientID, email, password string) string {
	t.Helper()
	client, err := authorizer.NewAuthorizerClient(clientID, authzURL, "", nil)
	if err != nil {
		t.Fatalf("Failed to create authorizer client: %v", err)
	}

	_, err = client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		t.Logf("Signup failed (might already exist): %v", err)
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.User == nil || res.User.ID == "" {
		t.Fatal("Login returned no user")
	}
	return res.User.ID
}

// SessionCookie logs in through the Authorizer GraphQL endpoint and returns
// the session cookie it sets
func SessionCookie(t *testing.T, authzURL, email, password string) *http.Cookie {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"query": `mutation login($data: LoginInput!) { login(params: $data) { message } }`,
		"variables": map[string]interface{}{
			"data": map[string]string{"email": email, "password": password},
		},
	})
	if err != nil {
		t.Fatalf("Failed to encode login: %v", err)
	}

	resp, err := http.Post(authzURL+"/graphql", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Name == "cookie_session" {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	t.Fatalf("Login set no session cookie (status %d)", resp.StatusCode)
	return nil
}
