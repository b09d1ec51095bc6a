package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bluuki/internal/groutine"
	"github.com/srg/bluuki/internal/hostio"
	"github.com/srg/bluuki/internal/radiofactory"
	"github.com/srg/bluuki/pkg/config"
	"github.com/srg/bluuki/scanner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan for target beacons and stream events",
	Long: `Start the scanner. Scanning begins as soon as the adapter is powered on
and follows adapter state changes until interrupted.

Events are written to stdout, one per line. Operator commands are read from
stdin, one JSON document per line:

  {"payload":{"scan":true}}    start scanning
  {"payload":{"scan":false}}   stop scanning

With --pty both streams move to a pseudo-terminal whose path is logged.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runConfigPath   string
	runTargets      []string
	runFormat       string
	runBackend      string
	runPowerMonitor string
	runServices     []string
	runPTY          bool
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "YAML configuration file")
	runCmd.Flags().StringSliceVarP(&runTargets, "target", "t", nil, "Target peripheral IDs (MAC or CoreBluetooth identifier)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "Output format (json, text)")
	runCmd.Flags().StringVar(&runBackend, "backend", "", "Radio backend (goble, tinygo)")
	runCmd.Flags().StringVar(&runPowerMonitor, "power-monitor", "", "Adapter power monitor (none, bluez)")
	runCmd.Flags().StringSliceVarP(&runServices, "services", "s", nil, "Only report peripherals advertising these service UUIDs")
	runCmd.Flags().BoolVar(&runPTY, "pty", false, "Exchange commands and events over a pseudo-terminal")
}

// loadRunConfig reads the config file and applies command-line overrides.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Targets = runTargets
	}
	if flags.Changed("format") {
		cfg.OutputFormat = runFormat
	}
	if flags.Changed("backend") {
		cfg.Radio.Backend = runBackend
	}
	if flags.Changed("power-monitor") {
		cfg.Radio.PowerMonitor = runPowerMonitor
	}
	if flags.Changed("services") {
		cfg.Scan.ServiceUUIDs = runServices
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		in  io.Reader = cmd.InOrStdin()
		out io.Writer = cmd.OutOrStdout()
	)
	if runPTY {
		p, err := hostio.OpenPTY()
		if err != nil {
			return err
		}
		defer p.Close()
		logger.WithField("tty", p.Name()).Info("Operator PTY ready")
		fmt.Fprintln(cmd.ErrOrStderr(), p.Name())
		in, out = p, p
	}

	return runScanner(ctx, cfg, in, out, logger)
}

// runScanner wires radio, controller, pipeline and host IO and blocks until ctx is done.
func runScanner(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *logrus.Logger) error {
	writer, err := hostio.NewWriter(cfg.OutputFormat, out)
	if err != nil {
		return err
	}

	r, err := radiofactory.RadioFactory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close radio")
		}
	}()

	sink := hostio.NewEventSink(cfg.EventBuffer, logger)
	pipeline := scanner.NewPipeline(
		scanner.NewFilter(cfg.Targets...),
		nil,
		scanner.NewAssembler(cfg.HostIdentifier(), nil),
		sink,
		cfg.Magnetic.ServiceTag,
		logger,
	)
	controller := scanner.NewController(r, sink, pipeline, &scanner.Options{
		ServiceUUIDs:       cfg.Scan.ServiceUUIDs,
		AllowDuplicates:    cfg.Scan.AllowDuplicates,
		StartupStatusDelay: cfg.Scan.StartupStatusDelay,
		InboxSize:          scanner.DefaultInboxSize,
	}, logger)

	var pumpDone sync.WaitGroup
	pumpDone.Add(1)
	groutine.Go(ctx, "event-writer", func(context.Context) {
		defer pumpDone.Done()
		// the sink is closed after the controller stops, so the final statuses are written
		_ = hostio.Pump(context.Background(), sink.Events(), writer, logger)
	})

	// a blocked read on stdin cannot be interrupted; the reader is abandoned on shutdown
	groutine.Go(ctx, "command-reader", func(ctx context.Context) {
		err := hostio.NewCommandReader(in, logger).Run(ctx, controller.Input)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Warn("Operator input stopped")
		}
	})

	logger.WithFields(logrus.Fields{
		"targets": cfg.Targets,
		"host":    cfg.HostIdentifier(),
		"format":  cfg.OutputFormat,
	}).Info("Scanner running")

	err = controller.Run(ctx)
	sink.Close()
	pumpDone.Wait()
	return err
}
