package rplidar

import (
	"time"

	"go.bug.st/serial"
)

// Porter is the slice of a serial port the driver needs. The abstraction
// lets tests feed scripted byte streams instead of real hardware.
type Porter interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
	ResetInputBuffer() error
}

// Opener opens the serial device at path. The default opener uses
// go.bug.st/serial with the sensor's fixed 8N1 framing.
type Opener func(path string, baud int) (Porter, error)

// OpenSerial is the production Opener.
func OpenSerial(path string, baud int) (Porter, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(path, mode)
}
