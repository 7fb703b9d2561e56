package summary

import "errors"

var (
	ErrSummaryNotFound = errors.New("daily summary not found")
)
