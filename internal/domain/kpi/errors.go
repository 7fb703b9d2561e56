package kpi

import "errors"

var (
	ErrDefinitionNotFound = errors.New("kpi definition not found")
	ErrResultNotFound     = errors.New("kpi result not found")
)
