package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	imageredactor "github.com/menta2k/image-redactor"
	"github.com/menta2k/image-redactor/internal/config"
	"github.com/menta2k/image-redactor/internal/utils"
	"github.com/menta2k/image-redactor/pkg/client"
	"github.com/menta2k/image-redactor/pkg/compute"
	"github.com/menta2k/image-redactor/pkg/detection"
	"github.com/menta2k/image-redactor/pkg/effects"
	"github.com/menta2k/image-redactor/pkg/llamacpp"
	"github.com/menta2k/image-redactor/pkg/ollama"
	"github.com/menta2k/image-redactor/pkg/processing"
	"github.com/menta2k/image-redactor/pkg/studio"
	"github.com/menta2k/image-redactor/pkg/targets"
)

const defaultOllamaURL = "http://localhost:11435/api/chat"

func main() {
	var in, outDir, configPath string
	var backend, url, model, apiKey string
	var threshold float64
	var detectionsPath string
	var effectType, shape, solidColor string
	var intensity, size int
	var mode, groups string
	var regions regionList
	var full bool
	var ext string
	var quality int
	var lossless bool
	var debug, verbose bool

	flag.StringVar(&in, "in", "", "input image path, URL or directory (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "", "output directory (default from config: ./output)")
	flag.StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+" if present)")

	flag.StringVar(&backend, "backend", config.BackendCompute, "detection backend: compute|ollama|llamacpp|none")
	flag.StringVar(&url, "url", "", "backend URL (defaults: compute="+compute.DefaultURL+", ollama="+defaultOllamaURL+", llamacpp="+llamacpp.DefaultURL+")")
	flag.StringVar(&model, "model", ollama.DefaultModel, "vision model name (ollama and llamacpp)")
	flag.StringVar(&apiKey, "key", "", "compute server key sent as "+compute.KeyHeader)
	flag.Float64Var(&threshold, "threshold", detection.DefaultThreshold, "minimum detection confidence (0..1)")
	flag.StringVar(&detectionsPath, "detections", "", "use a saved detection result (JSON) instead of calling the backend")

	flag.StringVar(&effectType, "effect", string(effects.TypeBlur), "effect: blur|pixelation|solid")
	flag.StringVar(&shape, "shape", string(effects.ShapeContour), "shape: rectangle|contour")
	flag.IntVar(&intensity, "intensity", 5, "blur intensity (1-10)")
	flag.IntVar(&size, "size", 3, "pixelation block size (1-10)")
	flag.StringVar(&solidColor, "color", "#000000", "solid fill color")

	flag.StringVar(&mode, "mode", string(targets.ModeAll), "AI target mode: all|selective")
	flag.StringVar(&groups, "groups", "", "comma separated body part groups to enable (e.g. face,feet)")
	flag.Var(&regions, "region", "custom region x,y,w,h in image pixels (repeatable)")
	flag.BoolVar(&full, "full", false, "redact the whole image")

	flag.StringVar(&ext, "ext", "png", "output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 95, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")
	flag.BoolVar(&debug, "debug", false, "write a debug overlay with target outlines")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL|dir [-backend compute|ollama|none] [-url server_url] [-out outdir] [-effect blur|pixelation|solid] [-region x,y,w,h] [-ext png|jpg|webp]", filepath.Base(os.Args[0]))
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(level)

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line override the config file
	var parseErr error
	flag.Visit(func(f *flag.Flag) {
		if parseErr != nil {
			return
		}
		switch f.Name {
		case "out":
			cfg.Output.OutputDir = outDir
		case "backend":
			cfg.Detection.Backend = backend
		case "url":
			cfg.Detection.URL = url
		case "model":
			cfg.Detection.Model = model
		case "key":
			cfg.Detection.APIKey = apiKey
		case "threshold":
			cfg.Detection.Threshold = threshold
		case "effect":
			cfg.Effect.Type, parseErr = effects.ParseType(effectType)
		case "shape":
			cfg.Effect.Shape, parseErr = effects.ParseShape(shape)
		case "intensity":
			cfg.Effect.Intensity = intensity
		case "size":
			cfg.Effect.Size = size
		case "color":
			cfg.Effect.SolidColor = solidColor
		case "mode":
			cfg.Targets.BlurMode, parseErr = targets.ParseBlurMode(mode)
		case "groups":
			cfg.Targets.EnabledGroups = splitList(groups)
		case "ext":
			cfg.Output.Format = ext
		case "quality":
			cfg.Output.Quality = quality
		case "lossless":
			cfg.Output.Lossless = lossless
		}
	})
	if parseErr != nil {
		log.Fatal(parseErr)
	}
	if cfg.Detection.URL == compute.DefaultURL {
		switch cfg.Detection.Backend {
		case config.BackendOllama:
			cfg.Detection.URL = defaultOllamaURL
		case config.BackendLlamaCpp:
			cfg.Detection.URL = llamacpp.DefaultURL
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.Output.Format, _ = processing.NormalizeFormat(cfg.Output.Format)

	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		log.Fatal(err)
	}

	var backendClient client.DetectionClient
	switch {
	case detectionsPath != "" || cfg.Detection.Backend == config.BackendNone:
	case cfg.Detection.Backend == config.BackendCompute:
		c, err := compute.NewClient(cfg.Detection.URL, cfg.Detection.APIKey)
		if err != nil {
			log.Fatalf("Failed to create compute client: %v", err)
		}
		backendClient = c
	case cfg.Detection.Backend == config.BackendOllama:
		c, err := ollama.NewClient(cfg.Detection.URL, cfg.Detection.Model)
		if err != nil {
			log.Fatalf("Failed to create Ollama client: %v", err)
		}
		backendClient = c
	case cfg.Detection.Backend == config.BackendLlamaCpp:
		c, err := llamacpp.NewClient(cfg.Detection.URL, cfg.Detection.Model)
		if err != nil {
			log.Fatalf("Failed to create llama.cpp client: %v", err)
		}
		backendClient = c
	}

	sessionConfig := studio.Config{
		Effect:      cfg.Effect,
		Groups:      cfg.Groups(),
		Mode:        cfg.Targets.BlurMode,
		AIDetection: backendClient != nil || detectionsPath != "",
		Quality:     cfg.Output.Quality,
		Lossless:    cfg.Output.Lossless,
	}
	detectionConfig := detection.Config{
		Threshold:   cfg.Detection.Threshold,
		SendFormat:  cfg.Detection.SendFormat,
		SendSize:    cfg.Detection.SendSize,
		SendQuality: cfg.Detection.SendQuality,
	}
	redactor := imageredactor.NewWithDetector(backendClient, detectionConfig, sessionConfig)
	redactor.SetLogger(logger)

	ctx := context.Background()
	if hc, ok := backendClient.(client.HealthChecker); ok {
		if err := hc.Health(ctx); err != nil {
			logger.Warn("detection backend not ready", "backend", cfg.Detection.Backend, "url", cfg.Detection.URL, "error", err)
		}
	}

	files, batch, err := inputs(in)
	if err != nil {
		log.Fatal(err)
	}

	r := &runner{
		redactor:   redactor,
		logger:     logger,
		output:     cfg.Output,
		threshold:  cfg.Detection.Threshold,
		detections: detectionsPath,
		detect:     backendClient != nil,
		regions:    regions,
		full:       full,
		debug:      debug,
	}
	failed, err := r.runAll(ctx, files, batch)
	if err != nil {
		log.Fatal(err)
	}
	if failed > 0 {
		log.Fatalf("%d of %d images failed", failed, len(files))
	}
}

// loadConfig reads path, or the default config path when it exists
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
		if !utils.FileExists(path) {
			return config.Default(), nil
		}
	}
	return config.LoadFromFile(path)
}
