package e2e

import (
	"github.com/cucumber/godog"

	"voterdata/e2e/steps/common"
	"voterdata/e2e/steps/voter"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (authentication, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register voter lookup and lifecycle steps
	voter.RegisterSteps(ctx, tc)
}
