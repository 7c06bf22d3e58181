package cucumber

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
)

func TestCucumberFeatures(t *testing.T) {
	featuresPath := filepath.Join("..", "..", "spec", "features")
	options := godog.Options{
		Format:    "progress",
		Paths:     []string{featuresPath},
		Output:    io.Discard,
		TestingT:  t,
		Randomize: 0,
	}

	suite := godog.TestSuite{
		Name: "examsolver-features",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			InitializeScenario(t, ctx)
		},
		Options: &options,
	}

	if suite.Run() != 0 {
		t.Fatalf("cucumber features failed")
	}
}
