package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/app"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/cat62"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/logging"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/plots"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cat62",
		Short: "EUROCONTROL ASTERIX CAT62 encoder/decoder",
		Long: `EUROCONTROL ASTERIX Category 62 (system track data) encoder/decoder.

Converts JSON plot documents into binary CAT62 datablocks and back, either
as a one-shot file conversion or as an HTTP service.

Example usage:
  cat62 encode plots.json -o tracks.bin
  cat62 decode tracks.bin --reference-date 2026-02-21
  cat62 serve --config /etc/cat62/config.yaml`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newEncodeCmd(), newDecodeCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var (
		configPath  string
		listenAddr  string
		logLevel    string
		archivePath string
		natsURL     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the CAT62 HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := app.DefaultConfig()
			if configPath != "" {
				loaded, err := app.LoadConfig(configPath)
				if err != nil {
					return err
				}
				config = loaded
			}

			// Flags override the config file.
			if cmd.Flags().Changed("listen") {
				config.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("log-level") {
				config.LogLevel = logLevel
			}
			if cmd.Flags().Changed("archive") {
				config.ArchivePath = archivePath
			}
			if cmd.Flags().Changed("nats-url") {
				config.NATSURL = natsURL
			}

			return app.NewApplication(config).Start()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVarP(&listenAddr, "listen", "l", app.DefaultListenAddr, "HTTP listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", app.DefaultLogLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite operation archive path (empty disables archiving)")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL for the decoded-track feed (empty disables)")

	return cmd
}

func newEncodeCmd() *cobra.Command {
	var (
		output   string
		sac, sic uint8
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "encode <plots.json>",
		Short: "Encode a JSON plot document into a CAT62 datablock file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(logLevel, logging.FileOptions{})

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			encoder := plots.NewEncoder(cat62.NewCodec(logger), logger, sac, sic)
			block, err := encoder.EncodeJSON(raw)
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, block, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			logger.WithField("bytes", len(block)).Infof("Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cat62_output.bin", "Output datablock file")
	cmd.Flags().Uint8Var(&sac, "sac", plots.DefaultSAC, "System Area Code for I062/010")
	cmd.Flags().Uint8Var(&sic, "sic", plots.DefaultSIC, "System Identification Code for I062/010")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")

	return cmd
}

func newDecodeCmd() *cobra.Command {
	var (
		referenceDate string
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:   "decode <datablock.bin>",
		Short: "Decode a CAT62 datablock file to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(logLevel, logging.FileOptions{})

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			decoder := plots.NewDecoder(cat62.NewCodec(logger), logger)
			resp, err := decoder.DecodeDatablock(raw, referenceDate)
			if err != nil {
				return err
			}

			out := json.NewEncoder(os.Stdout)
			out.SetIndent("", "  ")
			return out.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&referenceDate, "reference-date", "", "Date (YYYY-MM-DD) for ISO timestamps, defaults to today UTC")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowVersion()
		},
	}
}
