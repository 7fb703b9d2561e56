package kpi

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Expr is a tagged expression tree: an operator node, a literal, or a
// named source reference. Formulas are data interpreted by Eval; no
// dynamic code execution is involved.
//
// JSON shapes:
//
//	{"op":"/","left":{"ref":"attendance.worked_minutes"},"right":{"lit":480}}
//	{"lit":100}
//	{"ref":"evaluation.score"}
type Expr struct {
	Op    string   `json:"op,omitempty"` // "+", "-", "*", "/"
	Left  *Expr    `json:"left,omitempty"`
	Right *Expr    `json:"right,omitempty"`
	Lit   *float64 `json:"lit,omitempty"`
	Ref   string   `json:"ref,omitempty"`
}

var (
	// ErrMissingInput marks a formula input absent from the resolved
	// set. Callers record the result as insufficient-data.
	ErrMissingInput = errors.New("kpi formula input missing")

	ErrDivideByZero   = errors.New("kpi formula divides by zero")
	ErrInvalidFormula = errors.New("invalid kpi formula")
)

// Eval interprets the tree against resolved named inputs.
func (e *Expr) Eval(inputs map[string]float64) (float64, error) {
	if e == nil {
		return 0, ErrInvalidFormula
	}
	switch {
	case e.Lit != nil:
		return *e.Lit, nil
	case e.Ref != "":
		v, ok := inputs[e.Ref]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingInput, e.Ref)
		}
		return v, nil
	case e.Op != "":
		left, err := e.Left.Eval(inputs)
		if err != nil {
			return 0, err
		}
		right, err := e.Right.Eval(inputs)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, ErrDivideByZero
			}
			return left / right, nil
		default:
			return 0, fmt.Errorf("%w: unknown operator %q", ErrInvalidFormula, e.Op)
		}
	default:
		return 0, ErrInvalidFormula
	}
}

// Refs returns every named source reference in the tree.
func (e *Expr) Refs() []string {
	if e == nil {
		return nil
	}
	var refs []string
	if e.Ref != "" {
		refs = append(refs, e.Ref)
	}
	refs = append(refs, e.Left.Refs()...)
	refs = append(refs, e.Right.Refs()...)
	return refs
}

// Value implements driver.Valuer for database storage
func (e Expr) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for database retrieval
func (e *Expr) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Expr: invalid type")
	}
	return json.Unmarshal(bytes, e)
}
