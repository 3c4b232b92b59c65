package hdr

import (
	"errors"
	"fmt"
	"strings"
)

// ToneMapOperator selects the curve used to compress HDR radiance for display.
type ToneMapOperator int

const (
	OperatorNone ToneMapOperator = iota
	OperatorReinhard
	OperatorExponential
	OperatorDrago
)

var ErrUnknownOperator = errors.New("hdr: unknown tone-map operator")

var operatorNames = [...]string{
	OperatorNone:        "NONE",
	OperatorReinhard:    "REINHARD",
	OperatorExponential: "EXPONENTIAL",
	OperatorDrago:       "DRAGO",
}

func (op ToneMapOperator) String() string {
	if op.Valid() {
		return operatorNames[op]
	}
	return fmt.Sprintf("ToneMapOperator(%d)", int(op))
}

// Valid reports whether op is one of the four known operators.
func (op ToneMapOperator) Valid() bool {
	return op >= OperatorNone && op <= OperatorDrago
}

// OperatorFromIndex maps the integer used in configuration files (0-3).
func OperatorFromIndex(i int) (ToneMapOperator, error) {
	op := ToneMapOperator(i)
	if !op.Valid() {
		return OperatorNone, fmt.Errorf("%w: index %d", ErrUnknownOperator, i)
	}
	return op, nil
}

// ParseOperator accepts an operator name in any case ("reinhard", "DRAGO", ...).
func ParseOperator(s string) (ToneMapOperator, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range operatorNames {
		if n == name {
			return ToneMapOperator(i), nil
		}
	}
	return OperatorNone, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}
