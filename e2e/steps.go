package e2e

import (
	"github.com/cucumber/godog"

	"qrpass/e2e/steps/common"
	"qrpass/e2e/steps/token"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register token lifecycle steps
	token.RegisterSteps(ctx, tc)
}
