package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

// Pipeline runs one image through classification and disposal
type Pipeline interface {
	Process(ctx context.Context, req *core.AnalysisRequest) (*core.Decision, error)
}

// Runner implements a command-line interface for waste classification
type Runner struct {
	pipeline Pipeline
	logger   *zap.Logger
	out      io.Writer
	verbose  bool
}

// NewRunner creates a new CLI runner writing its report to out
func NewRunner(pipeline Pipeline, logger *zap.Logger, out io.Writer, verbose bool) *Runner {
	return &Runner{
		pipeline: pipeline,
		logger:   logger,
		out:      out,
		verbose:  verbose,
	}
}

// ProcessFile reads an image from disk, runs the pipeline and prints the result
func (r *Runner) ProcessFile(ctx context.Context, path string) (*core.Decision, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return r.ProcessImage(ctx, filepath.Base(path), image)
}

// ProcessImage runs the pipeline for in-memory image bytes and prints the result
func (r *Runner) ProcessImage(ctx context.Context, name string, image []byte) (*core.Decision, error) {
	r.logger.Debug("Processing image", zap.String("file", name), zap.Int("bytes", len(image)))

	fmt.Fprintf(r.out, "\n=== Image Summary ===\n")
	fmt.Fprintf(r.out, "File: %s\n", name)
	fmt.Fprintf(r.out, "Size: %d bytes\n", len(image))
	if r.verbose {
		fmt.Fprintf(r.out, "Detected type: %s\n", http.DetectContentType(image))
	}

	fmt.Fprintf(r.out, "\n=== Analysis ===\n")
	fmt.Fprintf(r.out, "Classifying image...\n")
	start := time.Now()
	decision, err := r.pipeline.Process(ctx, &core.AnalysisRequest{Image: image})
	if err != nil {
		r.logger.Error("Failed to process image", zap.Error(err))
		fmt.Fprintf(r.out, "Error (%s): %v\n", core.Categorize(err), err)
		return nil, err
	}
	duration := time.Since(start)

	fmt.Fprintf(r.out, "\n=== Results ===\n")
	fmt.Fprintf(r.out, "Object: %s\n", decision.Object)
	fmt.Fprintf(r.out, "Confidence: %.4f\n", decision.Confidence)
	fmt.Fprintf(r.out, "Organic: %t\n", decision.CanDiscard)
	fmt.Fprintf(r.out, "Bin action: %s\n", decision.TrashAction)
	fmt.Fprintf(r.out, "Analysis id: %d\n", decision.AnalysisID)
	fmt.Fprintf(r.out, "Processing time: %v\n", duration)

	return decision, nil
}

// Start is a no-op for the CLI runner
func (r *Runner) Start() error {
	return nil
}

// Stop is a no-op for the CLI runner
func (r *Runner) Stop() error {
	return nil
}
