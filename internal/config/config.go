// Package config loads viewer configuration from JSON. Fields are
// pointer-typed so a partial file only overrides what it names; getters
// supply defaults for the rest.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/scanview/internal/scan"
)

// ViewerConfig is the on-disk configuration for the scanview process.
type ViewerConfig struct {
	SerialPort *string `json:"serial_port,omitempty"`
	BaudRate   *int    `json:"baud_rate,omitempty"`
	ListenAddr *string `json:"listen_addr,omitempty"`

	AngleResolutionDeg *float64 `json:"angle_resolution_deg,omitempty"`
	MaxDistanceMM      *float64 `json:"max_distance_mm,omitempty"`
	MinQuality         *int     `json:"min_quality,omitempty"`
	MirrorHorizontally *bool    `json:"mirror_horizontally,omitempty"`
	TargetRefreshHz    *float64 `json:"target_refresh_hz,omitempty"`
	StaleMultiplier    *float64 `json:"stale_multiplier,omitempty"`
}

// Load reads and validates a JSON config file.
func Load(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &ViewerConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate delegates range checks to the pipeline configuration the file
// resolves to, plus the transport fields only this package knows about.
func (c *ViewerConfig) Validate() error {
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud rate %d must be positive", *c.BaudRate)
	}
	if c.SerialPort != nil && *c.SerialPort == "" {
		return fmt.Errorf("serial port must not be empty")
	}
	return c.ScanConfig().Validate()
}

// GetSerialPort returns the configured device path.
func (c *ViewerConfig) GetSerialPort() string {
	if c.SerialPort != nil {
		return *c.SerialPort
	}
	return "/dev/ttyUSB0"
}

// GetBaudRate returns the configured UART rate.
func (c *ViewerConfig) GetBaudRate() int {
	if c.BaudRate != nil {
		return *c.BaudRate
	}
	return 115200
}

// GetListenAddr returns the HTTP listen address.
func (c *ViewerConfig) GetListenAddr() string {
	if c.ListenAddr != nil {
		return *c.ListenAddr
	}
	return ":8080"
}

// ScanConfig resolves the file into a pipeline configuration, filling
// defaults for anything unset.
func (c *ViewerConfig) ScanConfig() scan.Config {
	cfg := scan.DefaultConfig()
	if c.AngleResolutionDeg != nil {
		cfg.AngleResolutionDeg = *c.AngleResolutionDeg
	}
	if c.MaxDistanceMM != nil {
		cfg.MaxDistanceMM = *c.MaxDistanceMM
	}
	if c.MinQuality != nil {
		cfg.MinQuality = *c.MinQuality
	}
	if c.MirrorHorizontally != nil {
		cfg.MirrorHorizontally = *c.MirrorHorizontally
	}
	if c.TargetRefreshHz != nil {
		cfg.TargetRefreshHz = *c.TargetRefreshHz
	}
	if c.StaleMultiplier != nil {
		cfg.StaleMultiplier = *c.StaleMultiplier
	}
	return cfg
}
