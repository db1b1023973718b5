// Command lightningbeamd runs the realtime audio engine against a live
// device, or renders a preset's signal graph against a silent block for a
// quick smoke test, matching the cobra/viper CLI shape used elsewhere in
// this ecosystem.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justyntemme/lightningbeam-daw/internal/config"
	"github.com/justyntemme/lightningbeam-daw/internal/device"
	"github.com/justyntemme/lightningbeam-daw/internal/engine"
	"github.com/justyntemme/lightningbeam-daw/internal/logging"
	"github.com/justyntemme/lightningbeam-daw/internal/metrics"
	"github.com/justyntemme/lightningbeam-daw/pkg/command"
)

var configPath string

func main() {
	root := rootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lightningbeamd",
		Short: "lightningbeam-daw realtime audio engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	if err := viper.BindPFlag("config", root.PersistentFlags().Lookup("config")); err != nil {
		fmt.Fprintf(os.Stderr, "error binding flags: %v\n", err)
	}

	root.AddCommand(runCommand())
	root.AddCommand(renderPresetCommand())
	root.AddCommand(versionCommand())
	return root
}

func runCommand() *cobra.Command {
	var deviceName string
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine against a live audio device",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			e := engine.New(cfg.SampleRate, cfg.BlockSize, cfg.Channels, cfg.CommandQueue, 32)
			ctrl := engine.NewController(e, log)

			dev, err := device.Open(device.Config{
				SampleRate: cfg.SampleRate,
				Channels:   cfg.Channels,
				DeviceName: deviceName,
			}, e.Process)
			if err != nil {
				return fmt.Errorf("run: open device: %w", err)
			}
			ctrl.AttachDevice(dev)
			defer dev.Close()

			if err := dev.Start(); err != nil {
				return fmt.Errorf("run: start device: %w", err)
			}
			log.Info("engine running", "sample_rate", cfg.SampleRate, "block_size", cfg.BlockSize)

			collector := metrics.NewCollector(prometheus.DefaultRegisterer)
			metricsServer := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server stopped", "error", err)
				}
			}()
			defer metricsServer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					log.Info("shutting down")
					return nil
				case <-ticker.C:
					ctrl.DrainEvents(nil)
					collector.Poll(ctrl)
					stats := ctrl.BufferPoolStats()
					collector.PollBufferPool(stats.Allocations, stats.PeakUsage)
				}
			}
		},
	}
	cmd.Flags().StringVar(&deviceName, "device", "", "playback device name (default device if empty)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve Prometheus metrics on")
	return cmd
}

func renderPresetCommand() *cobra.Command {
	var presetPath string
	var seconds float64
	cmd := &cobra.Command{
		Use:   "render-preset",
		Short: "Load a preset onto a track and render a few seconds of silence through it, as a smoke test",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			e := engine.New(cfg.SampleRate, cfg.BlockSize, cfg.Channels, cfg.CommandQueue, 32)
			ctrl := engine.NewController(e, log)

			trackID := ctrl.CreateTrack(command.TrackMIDI, "preview")
			if err := ctrl.LoadPreset(trackID, presetPath); err != nil {
				return err
			}
			ctrl.Play()

			blocks := int(seconds * float64(cfg.SampleRate) / float64(cfg.BlockSize))
			silence := make([]float32, cfg.BlockSize*cfg.Channels)
			out := make([]float32, cfg.BlockSize*cfg.Channels)
			for i := 0; i < blocks; i++ {
				e.Process(silence, out)
			}
			log.Info("rendered", "blocks", blocks, "seconds", seconds)
			return nil
		},
	}
	cmd.Flags().StringVar(&presetPath, "preset", "", "path to a preset JSON file")
	cmd.Flags().Float64Var(&seconds, "seconds", 2.0, "seconds of audio to render")
	_ = cmd.MarkFlagRequired("preset")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("lightningbeamd (dev)")
		},
	}
}
