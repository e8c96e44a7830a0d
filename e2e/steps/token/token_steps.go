package token

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, withAuth bool) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
	GetTokenID() string
	SetTokenID(id string)
}

// RegisterSteps registers token issuance and verification steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &tokenSteps{tc: tc}

	ctx.Step(`^an operator issues a token for "([^"]*)" "([^"]*)" "([^"]*)" valid for (-?\d+) seconds$`, steps.issueToken)
	ctx.Step(`^an unauthenticated client tries to issue a token$`, steps.issueWithoutAuth)
	ctx.Step(`^the issued token has a 16 digit identifier$`, steps.tokenHasIdentifier)
	ctx.Step(`^I verify the issued token$`, steps.verifyIssued)
	ctx.Step(`^I check the issued token$`, steps.checkIssued)
	ctx.Step(`^I wait (\d+) seconds$`, steps.wait)
	ctx.Step(`^the verification page should be rendered for the issued token$`, steps.renderedForIssued)
	ctx.Step(`^the full name should be masked as "([^"]*)"$`, steps.fullNameMasked)
	ctx.Step(`^the passport should read "([^"]*)"$`, steps.passportReads)
	ctx.Step(`^the redirect should not contain a single quote$`, steps.redirectHasNoQuote)
}

type tokenSteps struct {
	tc TestContext
}

func (s *tokenSteps) issueToken(ctx context.Context, last, first, second string, ttl int) error {
	body := map[string]any{
		"first_name":  first,
		"last_name":   last,
		"second_name": second,
		"b_day":       "2020-01-01",
		"series":      "12",
		"number":      "789",
		"expire":      ttl,
	}
	if err := s.tc.POST("/qr-gen", body, true); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("issue failed with %d: %s", status, s.tc.GetLastResponseBody())
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetTokenID(fmt.Sprint(id))
	return nil
}

func (s *tokenSteps) issueWithoutAuth(ctx context.Context) error {
	return s.tc.POST("/qr-gen", map[string]any{}, false)
}

func (s *tokenSteps) tokenHasIdentifier(ctx context.Context) error {
	id := s.tc.GetTokenID()
	if len(id) != 16 || strings.Trim(id, "0123456789") != "" {
		return fmt.Errorf("identifier %q is not 16 digits", id)
	}
	return nil
}

func (s *tokenSteps) verifyIssued(ctx context.Context) error {
	return s.tc.GET("/verify/" + s.tc.GetTokenID() + "?lang=ru&ck='e2e'")
}

func (s *tokenSteps) checkIssued(ctx context.Context) error {
	return s.tc.GET("/api/cert/check/" + s.tc.GetTokenID())
}

func (s *tokenSteps) wait(ctx context.Context, seconds int) error {
	select {
	case <-time.After(time.Duration(seconds) * time.Second):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *tokenSteps) renderedForIssued(ctx context.Context) error {
	render, err := s.tc.GetResponseField("render")
	if err != nil {
		return err
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	if render != "verification" || id != s.tc.GetTokenID() {
		return fmt.Errorf("unexpected render instruction: %s", s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *tokenSteps) fullNameMasked(ctx context.Context, want string) error {
	return s.attrShouldBe("fio", want)
}

func (s *tokenSteps) passportReads(ctx context.Context, want string) error {
	return s.attrShouldBe("passport", want)
}

func (s *tokenSteps) attrShouldBe(attrType, want string) error {
	var cert struct {
		Items []struct {
			Attrs []struct {
				Type  string `json:"type"`
				Value string `json:"value"`
			} `json:"attrs"`
		} `json:"items"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &cert); err != nil {
		return fmt.Errorf("decode certificate: %w", err)
	}
	if len(cert.Items) != 1 {
		return fmt.Errorf("expected one item, got %d", len(cert.Items))
	}
	for _, a := range cert.Items[0].Attrs {
		if a.Type == attrType {
			if a.Value != want {
				return fmt.Errorf("%s: expected %q, got %q", attrType, want, a.Value)
			}
			return nil
		}
	}
	return fmt.Errorf("attribute %q missing", attrType)
}

func (s *tokenSteps) redirectHasNoQuote(ctx context.Context) error {
	if location := s.tc.GetLastResponseHeader("Location"); strings.Contains(location, "'") {
		return fmt.Errorf("redirect keeps a quote: %s", location)
	}
	return nil
}
