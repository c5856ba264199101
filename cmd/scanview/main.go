// Command scanview streams 360° range scans from an RPLIDAR A1 over a
// serial link and serves live 2D/3D views of them over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/scanview/internal/config"
	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/rplidar"
	"github.com/banshee-data/scanview/internal/scan"
	"github.com/banshee-data/scanview/internal/viz"
)

var (
	configPath  = flag.String("config", "", "Path to JSON config file (flags override file values)")
	serialPort  = flag.String("port", "", "Serial device path (e.g. /dev/ttyUSB0)")
	baudRate    = flag.Int("baud", 0, "Serial baud rate")
	listenAddr  = flag.String("listen", "", "HTTP listen address")
	resolution  = flag.Float64("resolution", 0, "Angular bin width in degrees (0.1-10)")
	maxDistance = flag.Float64("max-distance", 0, "Maximum display distance in mm")
	minQuality  = flag.Int("min-quality", -1, "Minimum sample quality (0-63)")
	mirror      = flag.Bool("mirror", false, "Mirror the scan horizontally (swap 90°/270°)")
	refreshHz   = flag.Float64("refresh", 0, "Target renderer refresh rate in Hz")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("scanview: %v", err)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scanCfg := cfg.ScanConfig()
	if err := scanCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev := rplidar.New(cfg.GetSerialPort(), rplidar.WithBaudRate(cfg.GetBaudRate()))
	monitoring.Logf("connecting to %s at %d baud", cfg.GetSerialPort(), cfg.GetBaudRate())
	if err := dev.Connect(); err != nil {
		return err
	}
	defer dev.Close()

	identity := viz.DeviceIdentity{Model: "unknown", Firmware: "unknown"}
	if info, err := dev.Info(); err != nil {
		monitoring.Logf("device info unavailable: %v", err)
	} else {
		monitoring.Logf("device: model=%d firmware=%s hardware=%d serial=%s",
			info.Model, info.Firmware, info.Hardware, info.SerialNumber)
		identity = viz.DeviceIdentity{
			Model:        fmt.Sprintf("%d", info.Model),
			Firmware:     info.Firmware,
			Hardware:     fmt.Sprintf("%d", info.Hardware),
			SerialNumber: info.SerialNumber,
		}
	}
	if health, err := dev.Health(); err != nil {
		monitoring.Logf("device health unavailable: %v", err)
	} else {
		monitoring.Logf("device health: %s", health)
		if health.Status == rplidar.HealthError {
			return fmt.Errorf("sensor reports protection stop (error code %d), reset required", health.ErrorCode)
		}
	}

	pipeline, err := scan.NewPipeline(scanCfg, dev, nil)
	if err != nil {
		return err
	}

	hub := viz.NewHub()
	pipeline.Attach(hub)

	server, err := viz.NewServer(viz.ServerConfig{
		Addr:    cfg.GetListenAddr(),
		ScanCfg: scanCfg,
		Frames:  pipeline,
		Hub:     hub,
		Device:  identity,
	})
	if err != nil {
		return err
	}

	if err := dev.StartScan(); err != nil {
		return fmt.Errorf("start scan: %w", err)
	}
	defer func() {
		if err := dev.StopScan(); err != nil {
			monitoring.Logf("stop scan: %v", err)
		}
	}()

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.Start(ctx) }()

	err = pipeline.Run(ctx)
	stop()
	if serr := <-serverDone; serr != nil {
		monitoring.Logf("web server: %v", serr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	monitoring.Logf("shutdown complete")
	return nil
}

// loadConfig merges the optional config file with any explicitly set
// flags; flags win.
func loadConfig() (*config.ViewerConfig, error) {
	cfg := &config.ViewerConfig{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.SerialPort = serialPort
		case "baud":
			cfg.BaudRate = baudRate
		case "listen":
			cfg.ListenAddr = listenAddr
		case "resolution":
			cfg.AngleResolutionDeg = resolution
		case "max-distance":
			cfg.MaxDistanceMM = maxDistance
		case "min-quality":
			cfg.MinQuality = minQuality
		case "mirror":
			cfg.MirrorHorizontally = mirror
		case "refresh":
			cfg.TargetRefreshHz = refreshHz
		}
	})
	return cfg, cfg.Validate()
}
