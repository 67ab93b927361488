package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/config"
)

// ExampleConfig_Validate demonstrates configuration validation.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.NLP.FuzzyThreshold = 1.2

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
	}

	// Output:
	// nlp.fuzzy_threshold must be in (0, 1], got 1.2
}

// ExampleLoadFromPath demonstrates first use, which writes the defaults.
func ExampleLoadFromPath() {
	dir, err := os.MkdirTemp("", "jarvis-config")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg, err := config.LoadFromPath(filepath.Join(dir, "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(cfg.NLP.FuzzyThreshold, cfg.Batch.Concurrency)

	// Output:
	// 0.8 4
}
