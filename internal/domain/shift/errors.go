package shift

import "errors"

var (
	ErrShiftNotFound = errors.New("shift definition not found")

	// ErrUnassigned means no active assignment covers the date. Not a
	// fault: reconciliation proceeds without shift-derived figures.
	ErrUnassigned = errors.New("no active shift assignment for date")

	// ErrOverlappingAssignment is an integrity fault: more than one
	// active assignment covers the same date. The resolver reports it
	// instead of picking one.
	ErrOverlappingAssignment = errors.New("overlapping active shift assignments")
)
