package segments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// hardMaxDepth bounds decoding recursion regardless of configured limits.
const hardMaxDepth = 64

var filterValidate = validator.New()

// ValidationError reports a malformed filter tree or pagination request.
// Path locates the offending node, e.g. "conditions[1].from.iteration".
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return e.Path + ": " + e.Msg
}

func newValidationError(path, msg string) *ValidationError {
	return &ValidationError{Path: path, Msg: msg}
}

// IsValidationError reports whether err (or anything it wraps) is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type Limits struct {
	MaxDepth int `yaml:"max_depth"`
	MaxNodes int `yaml:"max_nodes"`
}

// Validate checks a decoded tree: groups have at least one child, iteration
// references are one of the three kinds, qualifiers match their role, and the
// tree stays within limits.
func Validate(root Node, limits Limits) error {
	if root == nil {
		return newValidationError("", "filter is required")
	}
	w := &treeWalker{limits: limits}
	return w.walk(root, "", 1)
}

type treeWalker struct {
	limits Limits
	nodes  int
}

func (w *treeWalker) walk(n Node, path string, depth int) error {
	w.nodes++
	if w.limits.MaxNodes > 0 && w.nodes > w.limits.MaxNodes {
		return newValidationError(path, fmt.Sprintf("filter has more than %d nodes", w.limits.MaxNodes))
	}
	if w.limits.MaxDepth > 0 && depth > w.limits.MaxDepth {
		return newValidationError(path, fmt.Sprintf("filter is nested deeper than %d levels", w.limits.MaxDepth))
	}
	switch n := n.(type) {
	case Involvement:
		return validateInvolvement(n, path)
	case Transition:
		if !n.From.Exists || !n.To.Exists {
			return newValidationError(path, "transition legs always require exists=true")
		}
		if err := validateInvolvement(n.From, joinPath(path, "from")); err != nil {
			return err
		}
		return validateInvolvement(n.To, joinPath(path, "to"))
	case Group:
		if err := structError(filterValidate.Struct(n), path); err != nil {
			return err
		}
		for i, child := range n.Conditions {
			if child == nil {
				return newValidationError(fmt.Sprintf("%s[%d]", joinPath(path, "conditions"), i), "condition is null")
			}
			if err := w.walk(child, fmt.Sprintf("%s[%d]", joinPath(path, "conditions"), i), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return newValidationError(path, fmt.Sprintf("unsupported node %T", n))
	}
}

func validateInvolvement(n Involvement, path string) error {
	if err := structError(filterValidate.Struct(n), path); err != nil {
		return err
	}
	switch n.Role {
	case RoleVolunteer:
		if n.TierID != nil || n.TierName != nil || n.PeriodID != nil {
			return newValidationError(path, "tier and period qualifiers only apply to participants")
		}
	case RoleParticipant:
		if n.MinShifts != nil {
			return newValidationError(joinPath(path, "minShifts"), "minShifts only applies to volunteers")
		}
	}
	if n.Iteration.Kind != IterationSpecific && n.Iteration.OccurrenceID != nil {
		return newValidationError(joinPath(path, "iteration.occurrenceId"), "occurrenceId is only allowed for specific iterations")
	}
	return nil
}

// structError turns the first validator failure into a ValidationError.
func structError(err error, path string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return newValidationError(path, err.Error())
	}
	fe := fieldErrs[0]
	return newValidationError(joinPath(path, jsonFieldPath(fe.Namespace())), describeTag(fe))
}

var jsonFieldNames = map[string]string{
	"Role":         "role",
	"Iteration":    "iteration",
	"Kind":         "type",
	"OccurrenceID": "occurrenceId",
	"TierName":     "tierName",
	"MinShifts":    "minShifts",
	"Operator":     "operator",
	"Conditions":   "conditions",
	"Page":         "page",
	"PageSize":     "pageSize",
}

// jsonFieldPath maps "Involvement.Iteration.Kind" to "iteration.type".
func jsonFieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := jsonFieldNames[p]; ok {
			parts[i] = name
		}
	}
	return strings.Join(parts, ".")
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for specific iterations"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ParseFilter decodes and validates a JSON filter tree in one step.
func ParseFilter(data []byte, limits Limits) (Node, error) {
	root, err := DecodeNode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(root, limits); err != nil {
		return nil, err
	}
	return root, nil
}
