package rule

import "errors"

var (
	ErrRuleNotFound     = errors.New("attendance rule not found")
	ErrGeofenceNotFound = errors.New("geofence not found")
)
