package event

import "errors"

// Structural errors reject an event outright. Policy gaps (missing
// GPS, out of geofence) never reject; they become normalization flags.
var (
	ErrUnknownEmployee   = errors.New("event references unknown employee")
	ErrUnknownDevice     = errors.New("event references unknown device")
	ErrInvalidKind       = errors.New("invalid attendance event type")
	ErrInvalidSource     = errors.New("invalid attendance event source")
	ErrMalformedLocation = errors.New("malformed event coordinates")
	ErrEventNotFound     = errors.New("attendance event not found")
)
