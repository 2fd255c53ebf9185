package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/clinicscribe-backend/internal/app"
	"github.com/yungbote/clinicscribe-backend/internal/services"
)

type processOptions struct {
	Realtime    bool
	OutDir      string
	Concurrency int
}

type fileResult struct {
	File   string                       `json:"file"`
	Result *services.ProcessAudioResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

func newProcessCmd() *cobra.Command {
	opts := processOptions{}
	cmd := &cobra.Command{
		Use:   "process <audio files...>",
		Short: "Transcribe recordings and extract SOAP notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := processFiles(cmd.Context(), a.Services.Consultation, args, opts)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), results, opts.OutDir)
		},
	}
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "run the transcript relabeling pass")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "write one JSON file per recording into this directory")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "recordings processed in parallel")
	return cmd
}

// processFiles runs every file through the pipeline. Per-file failures are
// reported in the result; only context cancellation aborts the batch.
func processFiles(ctx context.Context, svc services.ConsultationService, files []string, opts processOptions) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processFile(gctx, svc, file, opts.Realtime)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processFile(ctx context.Context, svc services.ConsultationService, file string, realtime bool) fileResult {
	audio, err := os.ReadFile(file)
	if err != nil {
		return fileResult{File: file, Error: err.Error()}
	}
	out, err := svc.ProcessAudio(ctx, services.ProcessAudioInput{
		Audio:    audio,
		MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(file))),
		Realtime: realtime,
	})
	if err != nil {
		return fileResult{File: file, Error: err.Error()}
	}
	return fileResult{File: file, Result: out}
}

func writeResults(stdout io.Writer, results []fileResult, outDir string) error {
	if outDir == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, r := range results {
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.File, err)
		}
		name := strings.TrimSuffix(filepath.Base(r.File), filepath.Ext(r.File)) + ".json"
		if err := os.WriteFile(filepath.Join(outDir, name), b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Fprintf(stdout, "%s -> %s\n", r.File, filepath.Join(outDir, name))
	}
	return nil
}
