package cmd

import (
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thesyncim/metronome/pkg/metronome"
	"github.com/thesyncim/metronome/pkg/metronome/output"
	"github.com/thesyncim/metronome/pkg/metronome/trial"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [suite ...]",
		Short: "Run benchmark suites and report their results.",
		Long: `Run executes the named benchmark suites, or all built-in suites when none
are named. Results always go to the console; --report additionally writes a
document with every trial and per-benchmark statistics, and --uploadUrl sends
the trials to a results collector.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmarks(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.Int("trials", 1, "independent trials per benchmark")
	flags.Int("warmups", 10, "warm-up cycles per trial, discarded")
	flags.Int("measurements", 100, "recorded cycles per trial")
	flags.Int("parallelism", 1, "benchmarks run concurrently")
	flags.Int64("interval", 5000, "target nanoseconds per timed batch")
	flags.Bool("gcBeforeEach", true, "force a GC before each recorded cycle")
	flags.String("report", "", "write a report document to this file")
	flags.String("format", "yaml", "report format, yaml or json")
	flags.String("uploadUrl", "", "upload trials to this results collector")
	flags.String("apiKey", "", "API key for the collector, a UUID")
	for _, name := range []string{
		"trials", "warmups", "measurements", "parallelism", "interval",
		"gcBeforeEach", "report", "format", "uploadUrl", "apiKey",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	return cmd
}

func runBenchmarks(cmd *cobra.Command, suiteNames []string) error {
	suites, err := buildSuites(suiteNames)
	if err != nil {
		return err
	}

	cfg := trial.Config{
		Trials:                viper.GetInt("trials"),
		WarmupIterations:      viper.GetInt("warmups"),
		MeasurementIterations: viper.GetInt("measurements"),
		Parallelism:           viper.GetInt("parallelism"),
		Options: map[string]string{
			metronome.OptionTimingInterval: strconv.FormatInt(viper.GetInt64("interval"), 10),
			metronome.OptionGCBeforeEach:   strconv.FormatBool(viper.GetBool("gcBeforeEach")),
		},
	}
	runner, err := trial.NewRunner(cfg)
	if err != nil {
		return err
	}

	// Fail on a bad report format or collector config before any benchmark runs.
	formatter, err := formatterFor(viper.GetString("format"))
	if err != nil {
		return err
	}
	processors := []output.Processor{output.NewConsole(cmd.OutOrStdout())}
	if collectorURL := viper.GetString("uploadUrl"); collectorURL != "" {
		uploader, err := output.NewUploader(output.UploaderConfig{
			URL:    collectorURL,
			APIKey: viper.GetString("apiKey"),
		})
		if err != nil {
			return err
		}
		processors = append(processors, uploader)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"suites": len(suites),
		"trials": cfg.Trials,
		"run":    runner.RunID(),
	}).Info("starting benchmark run")

	results, err := runner.Run(ctx, suites...)
	if err != nil {
		// Processors have seen no trials; closing just releases them.
		for _, p := range processors {
			_ = p.Close()
		}
		return err
	}

	// The report file exists only for runs that produced results.
	if path := viper.GetString("report"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "creating report file %s", path)
		}
		defer f.Close()
		processors = append(processors, output.NewReport(f, formatter))
	}

	return output.Process(results, processors...)
}

func formatterFor(format string) (output.Formatter, error) {
	switch strings.ToLower(format) {
	case "yaml":
		return output.YAMLFormatter, nil
	case "json":
		return output.JSONFormatter, nil
	default:
		return nil, errors.Errorf("unknown report format %q, expected yaml or json", format)
	}
}
