package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"road-survey/internal/container"
	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
	"road-survey/internal/report"
	"road-survey/internal/survey"
)

var surveyFlags struct {
	name         string
	output       string
	confidence   float64
	format       string
	workers      int
	noThumbnails bool
	skipClean    bool
	notify       bool
}

var surveyCmd = &cobra.Command{
	Use:   "survey <folder>",
	Short: "Process a folder of road images and build damage reports",
	Long: `Walks the folder recursively, runs the damage detector on every supported image
(.jpg .jpeg .png .bmp .tif .tiff) and writes:

  <output>/damaged_images/     originals with damage
  <output>/detected_images/    annotated copies
  <output>/clean_images/       originals without damage (unless --skip-clean)
  <output>/thumbnails/         thumbnails of damaged images
  <output>/reports/<name>.json
  <output>/damage_report.html

Interrupting the run (Ctrl-C) stops issuing new images and prints partial totals.`,
	Args: cobra.ExactArgs(1),
	RunE: runSurvey,
}

func init() {
	f := surveyCmd.Flags()
	f.StringVarP(&surveyFlags.name, "name", "n", "", "Survey or flight name (default: folder name)")
	f.StringVarP(&surveyFlags.output, "output", "o", "", "Output folder (default: survey.outputDir from config)")
	f.Float64VarP(&surveyFlags.confidence, "confidence", "c", -1, "Confidence threshold 0..1 (default: from config)")
	f.StringVarP(&surveyFlags.format, "format", "f", "", "Report format: json|web|both (default: from config)")
	f.IntVarP(&surveyFlags.workers, "workers", "w", -1, "Parallel workers, 0 = number of CPUs (default: from config)")
	f.BoolVar(&surveyFlags.noThumbnails, "no-thumbnails", false, "Do not write thumbnails")
	f.BoolVar(&surveyFlags.skipClean, "skip-clean", false, "Count clean images without copying them")
	f.BoolVar(&surveyFlags.notify, "notify", false, "Send the summary to the configured Telegram chat")
}

func runSurvey(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if surveyFlags.workers >= 0 {
		cfg.Survey.Workers = surveyFlags.workers
	}

	job := entity.SurveyJob{
		ID:           uuid.NewString(),
		Name:         surveyFlags.name,
		InputDir:     args[0],
		OutputDir:    cfg.Survey.OutputDir,
		Confidence:   cfg.Survey.Confidence,
		Format:       cfg.OutputFormat(),
		Thumbnails:   cfg.Survey.Thumbnails && !surveyFlags.noThumbnails,
		IncludeClean: cfg.Survey.IncludeClean && !surveyFlags.skipClean,
		CreatedAt:    time.Now(),
	}
	if job.Name == "" {
		job.Name = folderName(args[0])
	}
	if surveyFlags.output != "" {
		job.OutputDir = surveyFlags.output
	}
	if surveyFlags.confidence >= 0 {
		job.Confidence = surveyFlags.confidence
	}
	if surveyFlags.format != "" {
		if job.Format, err = entity.ParseOutputFormat(surveyFlags.format); err != nil {
			return err
		}
	}

	enumerator, err := survey.NewEnumerator(job.InputDir)
	if err != nil {
		return err
	}
	candidates, err := enumerator.Collect()
	if err != nil {
		return err
	}

	ui := newUI()
	fmt.Printf("%s %s: %d images in %s\n", ui.info("[INFO]"), ui.title(job.Name), len(candidates), job.InputDir)

	bar := progressbar.NewOptions(len(candidates),
		progressbar.OptionSetDescription("Detecting damage"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
	)

	var notifier port.SurveyNotifier
	if surveyFlags.notify {
		notifier = newNotifier(cfg, logger)
	}

	c, err := container.FromConfig(cfg, logger, notifier, func(rec entity.ImageRecord, _ time.Duration) {
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, runErr := c.SurveyService.Run(ctx, job)
	_ = bar.Finish()

	if result == nil {
		return runErr
	}

	var paths report.Paths
	if run, err := c.SurveyService.Get(context.Background(), job.ID); err == nil {
		paths = report.Paths{JSON: run.JSONReport, HTML: run.HTMLReport}
	}
	ui.printSummary(os.Stdout, result, paths)

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("survey interrupted after %d of %d images", result.Total, len(candidates))
	}
	return runErr
}

func folderName(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "survey"
	}
	return survey.SanitizeName(info.Name(), "survey")
}
