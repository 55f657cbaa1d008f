// Package main provides the gradclip CLI: a small training loop that runs
// the precision plugin's backward pass, gradient clipping and optimizer step.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/born-ml/precision/internal/config"
	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/metrics"
)

const version = "v0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gradclip:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "gradclip %s\n", version)
		return nil
	case "train":
		return trainCmd(args[1:], out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "gradclip - gradient clipping demo for the precision plugin")
	fmt.Fprintf(out, "Version: %s\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  train      Fit a linear model with backward + clip + step")
	fmt.Fprintln(out, "  version    Show version")
}

func trainCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "Path to YAML config (defaults when empty)")
	steps := fs.Int("steps", 100, "Number of optimization steps")
	lr := fs.Float64("lr", 0.05, "Learning rate")
	clip := fs.Float64("clip", 0, "Override gradient_clip_val (0 keeps the config value)")
	metricsAddr := fs.String("metrics", "", "Address to serve Prometheus metrics (disabled when empty)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *clip > 0 {
		cfg.GradientClipVal = clip
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logger.Log

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.Info("metrics serving", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error("metrics server stopped", err)
			}
		}()
	}

	result, err := train(cfg, trainOptions{Steps: *steps, LR: *lr}, log, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "steps=%d final_loss=%.6f weights=%v bias=%.4f\n",
		result.Steps, result.FinalLoss, result.Weights, result.Bias)
	return nil
}
