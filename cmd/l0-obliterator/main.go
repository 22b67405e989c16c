package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"l0-obliterator/internal/algorithms"
	"l0-obliterator/internal/algorithms/l0"
	"l0-obliterator/internal/logger"
	"l0-obliterator/internal/pipeline"
)

const (
	appName    = "l0-obliterator"
	appVersion = "1.0.0"
)

func main() {
	input := flag.String("input", "", "input image path (png, jpeg, tiff, bmp)")
	output := flag.String("output", "", "output image path, format chosen from extension")
	lambda := flag.Float64("lambda", l0.DefaultLambda, "smoothing weight, range [0.001, 0.1]; smaller retains more detail")
	kappa := flag.Float64("kappa", l0.DefaultKappa, "penalty growth rate, range (1, 2]; smaller means more iterations")
	betaMax := flag.Float64("beta-max", l0.DefaultBetaMax, "penalty cap controlling iteration count")
	sequential := flag.Bool("sequential", false, "disable per-channel parallel solves")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -input <image> -output <image> [flags]\n", appName)
		flag.PrintDefaults()
		os.Exit(2)
	}

	configureRuntime()

	appLogger := logger.NewConsoleLogger(logger.LevelFromEnv())
	appLogger.Info("main", "starting", map[string]interface{}{
		"version":    appVersion,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appLogger, *input, *output, *lambda, *kappa, *betaMax, !*sequential); err != nil {
		appLogger.Error("main", err, map[string]interface{}{
			"input":  *input,
			"output": *output,
		})
		os.Exit(1)
	}
}

func run(ctx context.Context, appLogger logger.Logger, input, output string, lambda, kappa, betaMax float64, parallel bool) error {
	manager := algorithms.NewManager()
	name := manager.GetCurrentAlgorithm()

	params := manager.GetParameters(name)
	params["lambda"] = lambda
	params["kappa"] = kappa
	params["beta_max"] = betaMax
	params["parallel_processing"] = parallel

	algorithm, err := manager.GetAlgorithm(name)
	if err != nil {
		return err
	}
	if smoother, ok := algorithm.(*l0.Processor); ok {
		smoother.SetProgressCallback(func(iteration, total int) {
			appLogger.Debug("Smoother", "iteration completed", map[string]interface{}{
				"iteration": iteration,
				"total":     total,
			})
		})
	}

	appLogger.Info("main", "smoothing", map[string]interface{}{
		"algorithm":  name,
		"lambda":     lambda,
		"kappa":      kappa,
		"beta_max":   betaMax,
		"iterations": l0.IterationCount(lambda, kappa, betaMax),
		"parallel":   parallel,
	})

	processor := pipeline.NewProcessor(appLogger, manager)
	metrics, err := processor.Run(ctx, input, output, name, params)
	if err != nil {
		return err
	}

	appLogger.Info("main", "completed", map[string]interface{}{
		"gradient_density_before": metrics.InputGradientDensity,
		"gradient_density_after":  metrics.OutputGradientDensity,
		"psnr_db":                 metrics.PSNR,
		"edge_preservation":       metrics.EdgePreservation,
		"output":                  output,
	})
	return nil
}

// configureRuntime tunes the Go runtime for large transient allocations of
// the per-iteration frequency solves.
func configureRuntime() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	debug.SetGCPercent(200)
}
