package mpatch

import "errors"

// Error categories surfaced by the engine. Callers match them with errors.Is;
// the wrapped message carries the specifics.
var (
	// ErrInput marks text buffers the engine cannot work on, such as
	// invalid UTF-8.
	ErrInput = errors.New("malformed input text")

	// ErrFormat marks corrupt or truncated serialized patches.
	ErrFormat = errors.New("invalid patch format")

	// ErrResourceLimit marks inputs that exceed a configured bound, such as
	// a target file with more lines than ApplyOptions.MaxTargetLines allows.
	ErrResourceLimit = errors.New("resource limit exceeded")
)
