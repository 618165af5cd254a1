// Command phish-detector classifies a single email read from a file or
// stdin and prints the report.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/di"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

func main() {
	container, err := di.BuildCLIContainer(di.ParseFlags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, emailFilter ports.EmailFilter, reviewer core.LLMReviewer) error {
	defer logger.Sync()
	if c, ok := reviewer.(io.Closer); ok {
		defer c.Close()
	}

	raw, err := readInput(flags.InputFile)
	if err != nil {
		return err
	}
	logger.Debug("Read email", zap.String("file", flags.InputFile), zap.Int("bytes", len(raw)))

	_, err = emailFilter.ProcessEmail(context.Background(), raw)
	return err
}

// readInput reads path, or stdin when path is empty
func readInput(path string) ([]byte, error) {
	if path == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
