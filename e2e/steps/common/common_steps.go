package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers request and assertion steps shared by features.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response should redirect to a URL starting with "([^"]*)"$`, steps.redirectStartsWith)
	ctx.Step(`^the response body should be an empty object$`, steps.bodyShouldBeEmptyObject)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.GetLastResponseStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) redirectStartsWith(ctx context.Context, prefix string) error {
	location := s.tc.GetLastResponseHeader("Location")
	if !strings.HasPrefix(location, prefix) {
		return fmt.Errorf("expected redirect to %q..., got %q", prefix, location)
	}
	return nil
}

func (s *commonSteps) bodyShouldBeEmptyObject(ctx context.Context) error {
	if body := strings.TrimSpace(string(s.tc.GetLastResponseBody())); body != "{}" {
		return fmt.Errorf("expected {}, got %s", body)
	}
	return nil
}
