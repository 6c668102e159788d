package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"clevr-scenegen/internal/config"
	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/handoff"
	applog "clevr-scenegen/internal/log"
	"clevr-scenegen/internal/metadata"
	"clevr-scenegen/internal/pipeline"
	"clevr-scenegen/internal/preview"
	"clevr-scenegen/internal/sink"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml, .toml)")
	envFile := flag.String("env", ".env", "Path to .env file")
	outputDir := flag.String("output", "", "Output directory (default: output)")
	handoffDir := flag.String("handoff", "", "Directory for img2render.txt and split.txt (default: image_generation)")
	splits := flag.String("splits", "", "Comma separated splits (default: trnsimple,tstsimple)")
	images := flag.Int("images", 0, "Images per split (default: 100)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	parallel := flag.Bool("parallel", false, "Draw each image from its own sub-stream across workers")
	withPreview := flag.Bool("preview", false, "Write top-down layout previews")
	bucket := flag.String("bucket", "", "Write to this S3 bucket instead of the output directory")
	logLevel := flag.String("log-level", "", "Log level (default: info)")

	flag.Parse()

	cfg, err := config.FromSources(*configFile, *envFile, config.Flags{
		OutputDir:  *outputDir,
		HandoffDir: *handoffDir,
		Splits:     *splits,
		Workers:    *workers,
		Parallel:   *parallel,
		Preview:    *withPreview,
		Images:     *images,
		Bucket:     *bucket,
		LogLevel:   *logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applog.NewLogger(applog.Options{Level: cfg.Log.Level, File: cfg.Log.File, NoColor: cfg.Log.NoColor})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := applog.WithRun(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("generation failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	datasets, err := cfg.Datasets()
	if err != nil {
		return err
	}
	out, err := sink.Open(cfg.SinkOptions(), cfg.OutputDir)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"splits":   cfg.Splits,
		"workers":  cfg.Workers,
		"parallel": cfg.Parallel,
		"output":   out.Location(""),
	}).Info("CLEVR scene configuration")

	start := time.Now()
	for _, ds := range datasets {
		if err := generateSplit(ctx, cfg, ds, out, log.WithField("split", ds.Split())); err != nil {
			return err
		}
	}

	// The renderer starts from the first image of the first split.
	h := handoff.Handoff{Image: 0, Split: datasets[0].Split()}
	if err := handoff.Write(cfg.HandoffDir, h); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"dir":     cfg.HandoffDir,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("done")
	return nil
}

func generateSplit(ctx context.Context, cfg config.Config, ds *dataset.Config, out sink.Sink, log *logrus.Entry) error {
	runner := pipeline.NewRunner(ds, nil, pipeline.Options{
		Parallel: cfg.Parallel,
		Workers:  cfg.Workers,
		Log:      log,
	})
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	configJSON, err := res.Config.Marshal()
	if err != nil {
		return err
	}
	scenesJSON, err := res.Scenes.Marshal()
	if err != nil {
		return err
	}
	for name, data := range map[string][]byte{
		metadata.ConfigFilename(ds.Split()): configJSON,
		metadata.ScenesFilename(ds.Split()): scenesJSON,
	} {
		if err := out.Put(ctx, name, data); err != nil {
			return err
		}
		log.WithField("path", out.Location(name)).Info("wrote document")
	}

	if !cfg.Preview.Enabled {
		return nil
	}
	format, err := preview.ParseFormat(cfg.Preview.Format)
	if err != nil {
		return err
	}
	w := &preview.Writer{
		Renderer: preview.NewRenderer(ds, preview.Options{
			Size:        cfg.Preview.Size,
			Supersample: cfg.Preview.Supersample,
			Labels:      cfg.Preview.Labels,
			Format:      format,
		}),
		Sink:    out,
		Dir:     cfg.Preview.Dir,
		Workers: cfg.Workers,
		Log:     log,
	}
	entries, err := w.WriteAll(ctx, ds.Split(), res.Layouts)
	if err != nil {
		return err
	}
	log.WithField("previews", len(entries)).Info("wrote previews")
	return nil
}
