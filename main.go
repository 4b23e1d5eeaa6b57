package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"docshift/internal/config"
	"docshift/internal/include"
	"docshift/internal/logging"

	"go.uber.org/zap"
)

// samplePresentation is what the demo writes before converting it.
const samplePresentation = `# My Presentation

## Introduction
Welcome to my talk

### Key Points
- Point 1
- Point 2

## Main Content
Here's the main content

### Details
Some detailed information

## Conclusion
Thank you for listening
`

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig("docshift.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// 2. Write sample & convert
	if err := runDemo(os.Stdout, cfg.Demo.SamplePath, logger); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

// runDemo writes the sample presentation to samplePath and prints it
// before and after conversion.
func runDemo(w io.Writer, samplePath string, logger *zap.Logger) error {
	if err := os.WriteFile(samplePath, []byte(samplePresentation), 0644); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	logger.Info("Wrote sample presentation", zap.String("path", samplePath))

	fmt.Fprintln(w, "Sample presentation content:")
	fmt.Fprint(w, samplePresentation+"\n")
	fmt.Fprint(w, "\n"+strings.Repeat("=", 60)+"\n\n")

	fmt.Fprintln(w, "Converted for article:")
	fmt.Fprintln(w, include.NewReader(logger, nil).IncludeAndConvert(context.Background(), samplePath))
	return nil
}
