package scan

import "errors"

// Error taxonomy for the acquisition pipeline. The driver maps transport
// conditions onto these sentinels so the pipeline can decide without
// knowing the transport: invalid and malformed inputs are skipped,
// timeouts only trigger the stale-frame check, and a disconnect discards
// the in-flight accumulator and stops the run.
var (
	// ErrInvalidSample marks a sample whose angle, distance or quality is
	// outside the valid domain. The offending sample is discarded and the
	// accumulator is unaffected.
	ErrInvalidSample = errors.New("scan: invalid sample")

	// ErrMalformedPacket marks an undecodable measurement on the wire.
	ErrMalformedPacket = errors.New("scan: malformed packet")

	// ErrTimeout marks a source read that produced no data in time.
	ErrTimeout = errors.New("scan: source read timeout")

	// ErrDisconnected marks a lost sample source. No reconnection is
	// attempted inside the pipeline; retry policy belongs to the caller.
	ErrDisconnected = errors.New("scan: source disconnected")
)
