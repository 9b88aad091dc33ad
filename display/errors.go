package display

import "github.com/pkg/errors"

// Error kinds from spec.md §7. The first four are surfaced to the driver;
// ProtocolViolation aborts playback; CacheConsistency is fatal.
var (
	// ErrInvalidArgument marks malformed dimensions or sign-mode values.
	ErrInvalidArgument = errors.New("display: invalid argument")
	// ErrOutOfRange marks a slice operation beyond a memory's size.
	ErrOutOfRange = errors.New("display: out of range")
	// ErrNotInitialised marks an operation attempted before Initialize.
	ErrNotInitialised = errors.New("display: not initialised")
	// ErrTransportFailed marks a failed request/response round trip.
	ErrTransportFailed = errors.New("display: transport failed")
	// ErrProtocolViolation marks an unknown tag encountered during log replay.
	ErrProtocolViolation = errors.New("display: protocol violation")
	// ErrCacheConsistency marks a broken tiler invariant; always fatal.
	ErrCacheConsistency = errors.New("display: cache consistency violation")
)
