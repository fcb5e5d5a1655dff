package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultSigningKey = "dev-secret-key-change-in-production"

// TestContext holds per-scenario state against a running voterdata server.
type TestContext struct {
	baseURL    string
	signingKey []byte
	client     *http.Client

	token        string
	lastStatus   int
	lastBody     []byte
	lastResponse any
}

// NewTestContext reads E2E_BASE_URL and E2E_JWT_SIGNING_KEY.
func NewTestContext() *TestContext {
	key := os.Getenv("E2E_JWT_SIGNING_KEY")
	if key == "" {
		key = defaultSigningKey
	}
	return &TestContext{
		baseURL:    os.Getenv("E2E_BASE_URL"),
		signingKey: []byte(key),
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Reset clears state between scenarios.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
}

// AuthenticateAs mints a short-lived token the server will accept.
func (tc *TestContext) AuthenticateAs(subject, role string) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(10 * time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	tc.token = signed
	return nil
}

func (tc *TestContext) ClearToken() {
	tc.token = ""
}

func (tc *TestContext) GET(path string) error {
	return tc.Do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.Do(http.MethodPost, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.Do(http.MethodDelete, path, nil)
}

// Do sends a JSON request and records the response.
func (tc *TestContext) Do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResponse = nil
	if len(tc.lastBody) > 0 {
		_ = json.Unmarshal(tc.lastBody, &tc.lastResponse)
	}
	return nil
}

func (tc *TestContext) GetLastStatusCode() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField returns a top-level field of an object response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	obj, ok := tc.lastResponse.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q not found in response: %s", field, tc.lastBody)
	}
	return v, nil
}

// GetResponseArray returns the response when it is a JSON array.
func (tc *TestContext) GetResponseArray() ([]any, error) {
	arr, ok := tc.lastResponse.([]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON array: %s", tc.lastBody)
	}
	return arr, nil
}
