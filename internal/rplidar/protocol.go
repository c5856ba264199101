package rplidar

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// RPLIDAR A1 request/response protocol. Requests are two bytes
// {sync, command}; responses open with a seven byte descriptor whose
// first two bytes echo the sync pair. Scan mode then streams five byte
// measurement packets until stopped.
const (
	syncByte  = 0xA5
	syncByte2 = 0x5A

	cmdGetInfo   = 0x50
	cmdGetHealth = 0x52
	cmdStop      = 0x25
	cmdReset     = 0x40
	cmdScan      = 0x20

	descriptorLen  = 7
	infoLen        = 20
	healthLen      = 3
	measurementLen = 5
)

// Health status codes reported by GET_HEALTH.
const (
	HealthGood    = 0
	HealthWarning = 1
	HealthError   = 2
)

// DeviceInfo is the GET_INFO response.
type DeviceInfo struct {
	Model        byte
	Firmware     string // "major.minor"
	Hardware     byte
	SerialNumber string // 32 hex characters
}

// DeviceHealth is the GET_HEALTH response.
type DeviceHealth struct {
	Status    byte
	ErrorCode uint16
}

// OK reports whether the sensor considers itself healthy.
func (h DeviceHealth) OK() bool { return h.Status == HealthGood }

func (h DeviceHealth) String() string {
	switch h.Status {
	case HealthGood:
		return "good"
	case HealthWarning:
		return fmt.Sprintf("warning (error code %d)", h.ErrorCode)
	case HealthError:
		return fmt.Sprintf("error (error code %d)", h.ErrorCode)
	default:
		return fmt.Sprintf("unknown status %d", h.Status)
	}
}

// measurement is one decoded scan packet.
type measurement struct {
	angleDeg   float64
	distanceMM float64
	quality    int
	newScan    bool
}

func parseDescriptor(b []byte) error {
	if len(b) != descriptorLen {
		return fmt.Errorf("descriptor length %d, want %d", len(b), descriptorLen)
	}
	if b[0] != syncByte || b[1] != syncByte2 {
		return fmt.Errorf("descriptor sync %#02x %#02x, want %#02x %#02x", b[0], b[1], syncByte, syncByte2)
	}
	return nil
}

func parseInfo(b []byte) (DeviceInfo, error) {
	if len(b) != infoLen {
		return DeviceInfo{}, fmt.Errorf("info payload length %d, want %d", len(b), infoLen)
	}
	return DeviceInfo{
		Model:        b[0],
		Firmware:     fmt.Sprintf("%d.%d", b[2], b[1]),
		Hardware:     b[3],
		SerialNumber: hex.EncodeToString(b[4:20]),
	}, nil
}

func parseHealth(b []byte) (DeviceHealth, error) {
	if len(b) != healthLen {
		return DeviceHealth{}, fmt.Errorf("health payload length %d, want %d", len(b), healthLen)
	}
	return DeviceHealth{
		Status:    b[0],
		ErrorCode: binary.LittleEndian.Uint16(b[1:3]),
	}, nil
}

// parseMeasurement decodes one five byte scan packet. The first byte
// carries the new-scan flag in bit 0 and its inverse in bit 1; bit 0 of
// the second byte is a fixed check bit. A packet failing either check is
// a sync loss, not a reading.
func parseMeasurement(b []byte) (measurement, bool) {
	if len(b) != measurementLen {
		return measurement{}, false
	}
	start := b[0]&0x01 != 0
	inverted := b[0]&0x02 != 0
	if start == inverted || b[1]&0x01 == 0 {
		return measurement{}, false
	}
	angleQ6 := (uint16(b[2])<<8 | uint16(b[1])) >> 1
	distQ2 := uint16(b[4])<<8 | uint16(b[3])
	return measurement{
		angleDeg:   float64(angleQ6) / 64.0,
		distanceMM: float64(distQ2) / 4.0,
		quality:    int(b[0] >> 2),
		newScan:    start,
	}, true
}
