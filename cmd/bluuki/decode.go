package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/srg/bluuki/internal/beacon"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/hostio"
	"github.com/srg/bluuki/pkg/config"
	"github.com/srg/bluuki/scanner"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <manufacturer-data-hex>",
	Short: "Decode a captured advertisement payload",
	Long: `Run a manufacturer-data payload through the measurement pipeline and print
the event the scanner would emit. No radio is used.

Example:
  bluuki decode 4c000215e2c56db5dffb48d2b060d0f5a71096e000010002c5 --rssi -70`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

var (
	decodeRSSI     int
	decodeMagnetic string
	decodeName     string
	decodeFormat   string
)

func init() {
	decodeCmd.Flags().IntVar(&decodeRSSI, "rssi", -70, "Received signal strength in dBm")
	decodeCmd.Flags().StringVar(&decodeMagnetic, "magnetic", "", "Magnetic service data as hex (implies the b000 service)")
	decodeCmd.Flags().StringVar(&decodeName, "name", "", "Local name to report")
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", config.FormatJSON, "Output format (json, text)")
}

func parseHexArg(name, s string) ([]byte, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "0x"), " ", "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return data, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	manufData, err := parseHexArg("manufacturer data", args[0])
	if err != nil {
		return err
	}

	p := device.Peripheral{
		ID:               scanner.DefaultTarget,
		UUID:             scanner.DefaultTarget,
		LocalName:        decodeName,
		RSSI:             decodeRSSI,
		ManufacturerData: manufData,
		TxPowerLevel:     device.TxPowerUnknown,
	}
	if decodeMagnetic != "" {
		magnetic, err := parseHexArg("magnetic data", decodeMagnetic)
		if err != nil {
			return err
		}
		p.Services = []string{beacon.MagneticServiceTag}
		p.ServiceData = []device.ServiceData{{UUID: beacon.MagneticServiceTag, Data: magnetic}}
	}

	cfg := config.DefaultConfig()
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}
	writer, err := hostio.NewWriter(decodeFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	sink := hostio.NewEventSink(1, logger)
	pipeline := scanner.NewPipeline(
		scanner.NewFilter(scanner.DefaultTarget),
		nil,
		scanner.NewAssembler(cfg.HostIdentifier(), nil),
		sink,
		beacon.MagneticServiceTag,
		logger,
	)

	m := pipeline.Handle(p)
	if m == nil {
		return fmt.Errorf("payload was not accepted by the pipeline")
	}
	return writer.Write(m)
}
