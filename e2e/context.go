package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries HTTP state across the steps of one scenario.
type TestContext struct {
	BaseURL  string
	Username string
	Password string

	client       *http.Client
	lastResponse *http.Response
	lastBody     []byte
	tokenID      string
}

// NewTestContext builds a context that never follows redirects so redirect
// targets can be asserted.
func NewTestContext(baseURL, username, password string) *TestContext {
	return &TestContext{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastResponse = nil
	tc.lastBody = nil
	tc.tokenID = ""
}

// POST sends a JSON body with operator credentials when withAuth is set.
func (tc *TestContext) POST(path string, body any, withAuth bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		req.SetBasicAuth(tc.Username, tc.Password)
	}
	return tc.do(req)
}

// GET issues a plain request.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	tc.lastResponse = resp
	tc.lastBody = body
	return nil
}

// GetLastResponseStatus returns the status of the last response.
func (tc *TestContext) GetLastResponseStatus() int {
	if tc.lastResponse == nil {
		return 0
	}
	return tc.lastResponse.StatusCode
}

// GetLastResponseBody returns the body of the last response.
func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetLastResponseHeader returns a header of the last response.
func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.lastResponse == nil {
		return ""
	}
	return tc.lastResponse.Header.Get(name)
}

// GetResponseField decodes the last body and returns a top-level field.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.lastBody, &data); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) GetTokenID() string {
	return tc.tokenID
}

func (tc *TestContext) SetTokenID(id string) {
	tc.tokenID = id
}
