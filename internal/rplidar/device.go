// Package rplidar drives an RPLIDAR A1 rotating rangefinder over a serial
// link: identity and health queries, scan start/stop, and a blocking pull
// of decoded polar samples for the scan pipeline.
package rplidar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/scan"
)

const (
	// DefaultBaudRate is the A1's fixed UART rate.
	DefaultBaudRate = 115200

	defaultReadTimeout = time.Second

	stopSettle  = 100 * time.Millisecond
	resetSettle = 2 * time.Second
)

// Device is an RPLIDAR A1 attached to a serial port. Not safe for
// concurrent use; command methods and Next must come from one goroutine.
type Device struct {
	path        string
	baud        int
	opener      Opener
	readTimeout time.Duration

	port     Porter
	scanning bool

	// Sliding decode window for scan packets. On a failed validity check
	// the window shifts one byte so the stream can resynchronise.
	window [measurementLen]byte
	have   int
}

// Option customises a Device.
type Option func(*Device)

// WithOpener substitutes the serial port opener, e.g. with a mock.
func WithOpener(o Opener) Option {
	return func(d *Device) { d.opener = o }
}

// WithBaudRate overrides the default baud rate.
func WithBaudRate(baud int) Option {
	return func(d *Device) { d.baud = baud }
}

// WithReadTimeout overrides the default 1s port read timeout. The timeout
// bounds how long Next can block, which is what keeps cancellation and
// the stale-frame timer responsive.
func WithReadTimeout(t time.Duration) Option {
	return func(d *Device) { d.readTimeout = t }
}

// New creates an unconnected device for the given serial path.
func New(path string, opts ...Option) *Device {
	d := &Device{
		path:        path,
		baud:        DefaultBaudRate,
		opener:      OpenSerial,
		readTimeout: defaultReadTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Connect opens the serial port.
func (d *Device) Connect() error {
	port, err := d.opener(d.path, d.baud)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.path, err)
	}
	if err := port.SetReadTimeout(d.readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", d.path, err)
	}
	d.port = port
	return nil
}

// Close stops an in-flight scan and closes the port.
func (d *Device) Close() error {
	if d.port == nil {
		return nil
	}
	if d.scanning {
		if err := d.StopScan(); err != nil {
			monitoring.Logf("rplidar: stop scan on close: %v", err)
		}
	}
	err := d.port.Close()
	d.port = nil
	return err
}

func (d *Device) sendCommand(cmd byte) error {
	if d.port == nil {
		return scan.ErrDisconnected
	}
	if _, err := d.port.Write([]byte{syncByte, cmd}); err != nil {
		return fmt.Errorf("write command %#02x: %w", cmd, scan.ErrDisconnected)
	}
	return nil
}

// readFull fills buf, mapping a zero-byte timeout read onto ErrTimeout
// and transport failure onto ErrDisconnected.
func (d *Device) readFull(buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := d.port.Read(buf[total:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				return scan.ErrDisconnected
			}
			return fmt.Errorf("read %s: %v: %w", d.path, err, scan.ErrDisconnected)
		}
		if n == 0 {
			return scan.ErrTimeout
		}
		total += n
	}
	return nil
}

func (d *Device) readDescriptor() error {
	var buf [descriptorLen]byte
	if err := d.readFull(buf[:]); err != nil {
		return err
	}
	return parseDescriptor(buf[:])
}

// Info queries device identity. Must not be called while scanning.
func (d *Device) Info() (DeviceInfo, error) {
	if err := d.sendCommand(cmdGetInfo); err != nil {
		return DeviceInfo{}, err
	}
	if err := d.readDescriptor(); err != nil {
		return DeviceInfo{}, fmt.Errorf("info descriptor: %w", err)
	}
	var buf [infoLen]byte
	if err := d.readFull(buf[:]); err != nil {
		return DeviceInfo{}, fmt.Errorf("info payload: %w", err)
	}
	return parseInfo(buf[:])
}

// Health queries sensor health. Must not be called while scanning.
func (d *Device) Health() (DeviceHealth, error) {
	if err := d.sendCommand(cmdGetHealth); err != nil {
		return DeviceHealth{}, err
	}
	if err := d.readDescriptor(); err != nil {
		return DeviceHealth{}, fmt.Errorf("health descriptor: %w", err)
	}
	var buf [healthLen]byte
	if err := d.readFull(buf[:]); err != nil {
		return DeviceHealth{}, fmt.Errorf("health payload: %w", err)
	}
	return parseHealth(buf[:])
}

// StartScan puts the sensor into continuous measurement mode.
func (d *Device) StartScan() error {
	if err := d.sendCommand(cmdScan); err != nil {
		return err
	}
	if err := d.readDescriptor(); err != nil {
		return fmt.Errorf("scan descriptor: %w", err)
	}
	d.scanning = true
	d.have = 0
	return nil
}

// StopScan halts measurement mode and flushes buffered scan bytes.
func (d *Device) StopScan() error {
	if err := d.sendCommand(cmdStop); err != nil {
		return err
	}
	time.Sleep(stopSettle)
	d.scanning = false
	d.have = 0
	return d.port.ResetInputBuffer()
}

// Reset reboots the sensor core. The device takes about two seconds to
// come back.
func (d *Device) Reset() error {
	if err := d.sendCommand(cmdReset); err != nil {
		return err
	}
	time.Sleep(resetSettle)
	d.scanning = false
	d.have = 0
	return d.port.ResetInputBuffer()
}

// Next returns the next decoded sample, implementing scan.Source. Readings
// the sensor itself marks as no-echo (zero quality or zero distance) are
// skipped. A packet failing its validity checks shifts the decode window
// one byte and surfaces scan.ErrMalformedPacket; the caller skips it and
// the stream resynchronises over subsequent calls.
func (d *Device) Next(ctx context.Context) (scan.Sample, error) {
	if d.port == nil {
		return scan.Sample{}, scan.ErrDisconnected
	}
	for {
		if err := ctx.Err(); err != nil {
			return scan.Sample{}, err
		}
		for d.have < measurementLen {
			n, err := d.port.Read(d.window[d.have:])
			if err != nil {
				if errors.Is(err, io.EOF) {
					return scan.Sample{}, scan.ErrDisconnected
				}
				return scan.Sample{}, fmt.Errorf("read %s: %v: %w", d.path, err, scan.ErrDisconnected)
			}
			if n == 0 {
				if err := ctx.Err(); err != nil {
					return scan.Sample{}, err
				}
				return scan.Sample{}, scan.ErrTimeout
			}
			d.have += n
		}

		m, ok := parseMeasurement(d.window[:])
		if !ok {
			copy(d.window[:], d.window[1:])
			d.have = measurementLen - 1
			return scan.Sample{}, fmt.Errorf("lost sync on %s: %w", d.path, scan.ErrMalformedPacket)
		}
		d.have = 0

		if m.quality == 0 || m.distanceMM == 0 {
			continue
		}
		return scan.Sample{
			AngleDeg:   m.angleDeg,
			DistanceMM: m.distanceMM,
			Quality:    m.quality,
			NewScan:    m.newScan,
		}, nil
	}
}
