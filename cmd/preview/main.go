package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"

	"github.com/sirupsen/logrus"

	"clevr-scenegen/internal/config"
	"clevr-scenegen/internal/dataset"
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
	outputDir := flag.String("output", "", "Directory holding the config documents (default: output)")
	splits := flag.String("splits", "", "Comma separated splits (default: trnsimple,tstsimple)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	bucket := flag.String("bucket", "", "Read from and write to this S3 bucket")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	size := flag.Int("size", 0, "Preview size in pixels (default: 256)")
	verify := flag.Bool("verify", false, "Re-project stored layouts and compare with the scenes document")

	flag.Parse()

	cfg, err := config.FromSources(*configFile, *envFile, config.Flags{
		OutputDir: *outputDir,
		Splits:    *splits,
		Workers:   *workers,
		Bucket:    *bucket,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Preview.Format = *format
	}
	if *size > 0 {
		cfg.Preview.Size = *size
	}

	logger, err := applog.NewLogger(applog.Options{Level: cfg.Log.Level, File: cfg.Log.File, NoColor: cfg.Log.NoColor})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := applog.WithRun(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sink.Open(cfg.SinkOptions(), cfg.OutputDir)
	if err != nil {
		log.WithError(err).Fatal("open output")
	}
	f, err := preview.ParseFormat(cfg.Preview.Format)
	if err != nil {
		log.WithError(err).Fatal("preview format")
	}

	failed := false
	for _, split := range cfg.Splits {
		splitLog := log.WithField("split", split)
		if err := previewSplit(ctx, cfg, store, f, split, *verify, splitLog); err != nil {
			splitLog.WithError(err).Error("preview failed")
			failed = true
		}
	}
	if failed {
		stop()
		os.Exit(1)
	}
}

func previewSplit(ctx context.Context, cfg config.Config, store sink.Sink, f preview.Format, split string, verify bool, log *logrus.Entry) error {
	data, err := store.Get(ctx, metadata.ConfigFilename(split))
	if err != nil {
		return err
	}
	doc, err := metadata.UnmarshalConfig(data)
	if err != nil {
		return err
	}
	ds, err := doc.Config()
	if err != nil {
		return err
	}
	layouts, err := doc.Layouts()
	if err != nil {
		return err
	}

	if verify {
		if err := verifyScenes(ctx, store, ds.Split(), pipeline.NewRunner(ds, nil, pipeline.Options{Log: log}), layouts); err != nil {
			return err
		}
		log.Info("scenes document matches stored layouts")
	}

	w := &preview.Writer{
		Renderer: preview.NewRenderer(ds, preview.Options{
			Size:        cfg.Preview.Size,
			Supersample: cfg.Preview.Supersample,
			Labels:      cfg.Preview.Labels,
			Format:      f,
		}),
		Sink:    store,
		Dir:     cfg.Preview.Dir,
		Workers: cfg.Workers,
		Log:     log,
	}
	entries, err := w.WriteAll(ctx, split, layouts)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"previews": len(entries),
		"dir":      store.Location(cfg.Preview.Dir),
	}).Info("wrote previews")
	return nil
}

func verifyScenes(ctx context.Context, store sink.Sink, split string, runner *pipeline.Runner, layouts []dataset.SceneLayout) error {
	data, err := store.Get(ctx, metadata.ScenesFilename(split))
	if err != nil {
		return err
	}
	stored, err := metadata.UnmarshalScenes(data)
	if err != nil {
		return err
	}
	out, err := runner.Replay(ctx, layouts)
	if err != nil {
		return err
	}

	// Compare through the encoded form so float formatting matches.
	encoded, err := out.Scenes.Marshal()
	if err != nil {
		return err
	}
	fresh, err := metadata.UnmarshalScenes(encoded)
	if err != nil {
		return err
	}
	if len(fresh.Scenes) != len(stored.Scenes) {
		return fmt.Errorf("scenes document has %d scenes, layouts give %d", len(stored.Scenes), len(fresh.Scenes))
	}
	for i := range fresh.Scenes {
		if !reflect.DeepEqual(fresh.Scenes[i], stored.Scenes[i]) {
			return fmt.Errorf("scene %d differs from its re-projection", i)
		}
	}
	return nil
}
