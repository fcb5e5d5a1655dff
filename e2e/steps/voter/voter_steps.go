package voter

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetResponseArray() ([]any, error)
}

// RegisterSteps registers voter lookup and lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &voterSteps{tc: tc}

	ctx.Step(`^I look up voter "([^"]*)"$`, steps.lookUp)
	ctx.Step(`^I search for voters "([^"]*)"$`, steps.search)
	ctx.Step(`^I disable voter "([^"]*)"$`, steps.disable)
	ctx.Step(`^I enable voter "([^"]*)"$`, steps.enable)

	ctx.Step(`^the voter should come from "([^"]*)"$`, steps.shouldComeFrom)
	ctx.Step(`^the search should return (\d+) records?$`, steps.searchShouldReturn)
	ctx.Step(`^the search results should be in order "([^"]*)"$`, steps.searchOrder)
}

type voterSteps struct {
	tc TestContext
}

func (s *voterSteps) lookUp(ctx context.Context, epic string) error {
	return s.tc.GET("/voter-data/details/" + epic)
}

func (s *voterSteps) search(ctx context.Context, epics string) error {
	return s.tc.POST("/voter-data/search", map[string]any{"epicNumbers": epics})
}

func (s *voterSteps) disable(ctx context.Context, epic string) error {
	return s.tc.POST("/voter-data/disable/"+epic, map[string]any{"epic_no": epic})
}

func (s *voterSteps) enable(ctx context.Context, epic string) error {
	return s.tc.POST("/voter-data/enable/"+epic, map[string]any{"epic_no": epic})
}

func (s *voterSteps) shouldComeFrom(ctx context.Context, source string) error {
	v, err := s.tc.GetResponseField("dataSource")
	if err != nil {
		return err
	}
	if v != source {
		return fmt.Errorf("expected dataSource %q, got %v", source, v)
	}
	return nil
}

func (s *voterSteps) searchShouldReturn(ctx context.Context, n int) error {
	records, err := s.tc.GetResponseArray()
	if err != nil {
		return err
	}
	if len(records) != n {
		return fmt.Errorf("expected %d records, got %d", n, len(records))
	}
	return nil
}

func (s *voterSteps) searchOrder(ctx context.Context, csv string) error {
	records, err := s.tc.GetResponseArray()
	if err != nil {
		return err
	}
	var got []string
	for _, r := range records {
		obj, ok := r.(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected record %v", r)
		}
		got = append(got, fmt.Sprint(obj["epic_no"]))
	}
	if want := fmt.Sprint(splitCSV(csv)); fmt.Sprint(got) != want {
		return fmt.Errorf("expected order %s, got %v", want, got)
	}
	return nil
}

func splitCSV(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
