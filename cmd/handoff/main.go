package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"clevr-scenegen/internal/config"
	"clevr-scenegen/internal/handoff"
	applog "clevr-scenegen/internal/log"
	"clevr-scenegen/internal/metadata"
	"clevr-scenegen/internal/sink"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml, .toml)")
	envFile := flag.String("env", ".env", "Path to .env file")
	outputDir := flag.String("output", "", "Directory holding the config documents (default: output)")
	handoffDir := flag.String("handoff", "", "Directory for img2render.txt and split.txt (default: image_generation)")
	bucket := flag.String("bucket", "", "Read documents from this S3 bucket")
	write := flag.Bool("write", false, "Write the handoff given by -split and -image instead of reading it")
	next := flag.Bool("next", false, "Advance the handoff to the next image before printing")
	split := flag.String("split", "", "Split to hand off (with -write)")
	image := flag.Int("image", 0, "Image to hand off (with -write)")

	flag.Parse()

	cfg, err := config.FromSources(*configFile, *envFile, config.Flags{
		OutputDir:  *outputDir,
		HandoffDir: *handoffDir,
		Bucket:     *bucket,
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
	log := logger.WithField("handoff_dir", cfg.HandoffDir)

	if *write {
		h := handoff.Handoff{Image: *image, Split: *split}
		if err := handoff.Write(cfg.HandoffDir, h); err != nil {
			log.WithError(err).Fatal("write handoff")
		}
		log.WithFields(logrus.Fields{"split": h.Split, "image": h.Image}).Info("handoff written")
		return
	}

	src, err := sink.Open(cfg.SinkOptions(), cfg.OutputDir)
	if err != nil {
		log.WithError(err).Fatal("open output")
	}
	job, err := renderJob(context.Background(), cfg, src, *next)
	if err != nil {
		log.WithError(err).Fatal("resolve render job")
	}
	data, err := job.Marshal()
	if err != nil {
		log.WithError(err).Fatal("encode render job")
	}
	fmt.Println(string(data))
}

// renderJob reads the handoff, optionally advances it, and resolves the
// image it names against the split's config document.
func renderJob(ctx context.Context, cfg config.Config, src sink.Sink, advance bool) (*metadata.RenderJob, error) {
	h, err := handoff.Read(cfg.HandoffDir)
	if err != nil {
		return nil, err
	}

	data, err := src.Get(ctx, metadata.ConfigFilename(h.Split))
	if err != nil {
		return nil, err
	}
	doc, err := metadata.UnmarshalConfig(data)
	if err != nil {
		return nil, err
	}

	if advance {
		h.Image++
		if h.Image >= doc.NImages {
			return nil, fmt.Errorf("split %s has no image after %d", h.Split, h.Image-1)
		}
		if err := handoff.Write(cfg.HandoffDir, h); err != nil {
			return nil, err
		}
	}
	return doc.RenderJob(h.Image, cfg.OutputDir)
}
