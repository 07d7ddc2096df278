package extensibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/tickfsm/internal/primitives"
)

// ParseExpression compiles a simple guard expression evaluated against the
// machine context and state view. Supported forms:
//
//	key op value      op is one of == != > < >= <=
//	active state      true when state is current in any region
//	!active state
//
// Numbers compare numerically whatever their Go type, "true"/"false" compare
// booleans and anything else compares as a string. A missing key is false.
func ParseExpression(expr string) (primitives.Guard, error) {
	parts := strings.Fields(expr)
	switch {
	case len(parts) == 2 && parts[0] == "active":
		state := primitives.StateID(parts[1])
		return func(ec *primitives.EventContext) bool { return ec.States.IsActive(state) }, nil
	case len(parts) == 2 && parts[0] == "!active":
		state := primitives.StateID(parts[1])
		return func(ec *primitives.EventContext) bool { return !ec.States.IsActive(state) }, nil
	case len(parts) != 3:
		return nil, fmt.Errorf("guard expression %q: want \"key op value\"", expr)
	}

	key, op, literal := parts[0], parts[1], parts[2]
	switch op {
	case "==", "!=", ">", "<", ">=", "<=":
	default:
		return nil, fmt.Errorf("guard expression %q: unknown operator %q", expr, op)
	}

	num, numErr := strconv.ParseFloat(literal, 64)
	isNum := numErr == nil
	if !isNum && op != "==" && op != "!=" {
		return nil, fmt.Errorf("guard expression %q: %s needs a number", expr, op)
	}

	return func(ec *primitives.EventContext) bool {
		v, ok := ec.Context.Get(key)
		if !ok {
			return false
		}
		if isNum {
			f, ok := toFloat(v)
			if !ok {
				return false
			}
			return compare(f, op, num)
		}
		equal := literalEqual(v, literal)
		if op == "!=" {
			return !equal
		}
		return equal
	}, nil
}

func compare(a float64, op string, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	default:
		return a <= b
	}
}

func literalEqual(v any, literal string) bool {
	switch literal {
	case "true":
		return v == true
	case "false":
		return v == false
	case "nil":
		return v == nil
	}
	s, ok := v.(string)
	return ok && s == literal
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
