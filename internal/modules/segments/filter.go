package segments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type NodeType string

const (
	NodeInvolvement NodeType = "involvement"
	NodeTransition  NodeType = "transition"
	NodeGroup       NodeType = "group"
)

type Role string

const (
	RoleParticipant Role = "participant"
	RoleVolunteer   Role = "volunteer"
)

type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

type IterationKind string

const (
	IterationCurrent  IterationKind = "current"
	IterationPrevious IterationKind = "previous"
	IterationSpecific IterationKind = "specific"
)

// Node is a filter tree node. The set of implementations is closed: every
// node must accept a visitor, so adding a kind means adding a visitor method
// that the evaluator has to implement.
type Node interface {
	Type() NodeType
	accept(v visitor) (IDSet, error)
}

type visitor interface {
	visitInvolvement(n Involvement) (IDSet, error)
	visitTransition(n Transition) (IDSet, error)
	visitGroup(n Group) (IDSet, error)
}

// IterationRef points at an occurrence indirectly. OccurrenceID is only
// meaningful for IterationSpecific.
type IterationRef struct {
	Kind         IterationKind `json:"type" validate:"required,oneof=current previous specific"`
	OccurrenceID *uuid.UUID    `json:"occurrenceId,omitempty" validate:"required_if=Kind specific"`
}

func Current() IterationRef  { return IterationRef{Kind: IterationCurrent} }
func Previous() IterationRef { return IterationRef{Kind: IterationPrevious} }
func Specific(id uuid.UUID) IterationRef {
	return IterationRef{Kind: IterationSpecific, OccurrenceID: &id}
}

// UnmarshalJSON accepts "previous" as well as {"type":"previous"}.
func (r *IterationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var kind string
		if err := json.Unmarshal(data, &kind); err != nil {
			return err
		}
		*r = IterationRef{Kind: IterationKind(strings.ToLower(strings.TrimSpace(kind)))}
		return nil
	}
	var raw struct {
		Type         string     `json:"type"`
		Kind         string     `json:"kind"`
		OccurrenceID *uuid.UUID `json:"occurrenceId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind := raw.Type
	if kind == "" {
		kind = raw.Kind
	}
	*r = IterationRef{
		Kind:         IterationKind(strings.ToLower(strings.TrimSpace(kind))),
		OccurrenceID: raw.OccurrenceID,
	}
	return nil
}

func (r IterationRef) String() string {
	if r.Kind == IterationSpecific && r.OccurrenceID != nil {
		return "specific:" + r.OccurrenceID.String()
	}
	return string(r.Kind)
}

// Involvement matches contacts with (or, when Exists is false, without) a
// role in the referenced occurrence. TierID, TierName and PeriodID only apply
// to participants; MinShifts only to volunteers.
//
// When TierID and TierName are both set a registration must match both.
// TODO: confirm with product whether callers mean "id, else name".
type Involvement struct {
	Role      Role         `json:"role" validate:"required,oneof=participant volunteer"`
	Iteration IterationRef `json:"iteration"`
	Exists    bool         `json:"exists"`

	TierID    *uuid.UUID `json:"tierId,omitempty"`
	TierName  *string    `json:"tierName,omitempty" validate:"omitempty,min=1,max=200"`
	PeriodID  *uuid.UUID `json:"periodId,omitempty"`
	MinShifts *int       `json:"minShifts,omitempty" validate:"omitempty,gte=0,lte=10000"`
}

func (Involvement) Type() NodeType                    { return NodeInvolvement }
func (n Involvement) accept(v visitor) (IDSet, error) { return v.visitInvolvement(n) }

func (n Involvement) MarshalJSON() ([]byte, error) {
	type plain Involvement
	return json.Marshal(struct {
		Type NodeType `json:"type"`
		plain
	}{Type: NodeInvolvement, plain: plain(n)})
}

// Transition matches contacts involved in both legs. Both legs always require
// the involvement to exist.
type Transition struct {
	From Involvement `json:"from"`
	To   Involvement `json:"to"`
}

func (Transition) Type() NodeType                    { return NodeTransition }
func (n Transition) accept(v visitor) (IDSet, error) { return v.visitTransition(n) }

func (n Transition) MarshalJSON() ([]byte, error) {
	type plain Transition
	return json.Marshal(struct {
		Type NodeType `json:"type"`
		plain
	}{Type: NodeTransition, plain: plain(n)})
}

type Group struct {
	Operator   Operator `json:"operator" validate:"required,oneof=AND OR"`
	Not        bool     `json:"not"`
	Conditions []Node   `json:"conditions" validate:"min=1"`
}

func (Group) Type() NodeType                    { return NodeGroup }
func (n Group) accept(v visitor) (IDSet, error) { return v.visitGroup(n) }

func (n Group) MarshalJSON() ([]byte, error) {
	conditions := n.Conditions
	if conditions == nil {
		conditions = []Node{}
	}
	return json.Marshal(struct {
		Type       NodeType `json:"type"`
		Operator   Operator `json:"operator"`
		Not        bool     `json:"not"`
		Conditions []Node   `json:"conditions"`
	}{Type: NodeGroup, Operator: n.Operator, Not: n.Not, Conditions: conditions})
}

// Filter wraps a root node so request and storage structs can carry a tree
// through encoding/json.
type Filter struct {
	Root Node
}

func (f Filter) MarshalJSON() ([]byte, error) {
	if f.Root == nil {
		return []byte("null"), nil
	}
	return json.Marshal(f.Root)
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Root = nil
		return nil
	}
	root, err := DecodeNode(data)
	if err != nil {
		return err
	}
	f.Root = root
	return nil
}

type rawNode struct {
	Type string `json:"type"`

	Role      string          `json:"role"`
	Iteration *IterationRef   `json:"iteration"`
	Exists    *bool           `json:"exists"`
	TierID    *uuid.UUID      `json:"tierId"`
	TierName  *string         `json:"tierName"`
	PeriodID  *uuid.UUID      `json:"periodId"`
	MinShifts *int            `json:"minShifts"`
	From      json.RawMessage `json:"from"`
	To        json.RawMessage `json:"to"`

	Operator   string            `json:"operator"`
	Not        bool              `json:"not"`
	Conditions []json.RawMessage `json:"conditions"`
}

// DecodeNode decodes one JSON filter node. Structural problems (unknown type,
// missing transition legs, explicit exists=false on a transition leg) are
// reported as *ValidationError; field values are checked by Validate.
func DecodeNode(data []byte) (Node, error) {
	return decodeNode(data, "", 1)
}

func decodeNode(data []byte, path string, depth int) (Node, error) {
	if depth > hardMaxDepth {
		return nil, newValidationError(path, "filter is nested too deeply")
	}
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newValidationError(path, "malformed node: "+err.Error())
	}
	switch NodeType(strings.ToLower(strings.TrimSpace(raw.Type))) {
	case NodeInvolvement:
		return raw.involvement(path)
	case NodeTransition:
		if len(raw.From) == 0 || len(raw.To) == 0 {
			return nil, newValidationError(path, "transition requires both from and to")
		}
		from, err := decodeLeg(raw.From, joinPath(path, "from"))
		if err != nil {
			return nil, err
		}
		to, err := decodeLeg(raw.To, joinPath(path, "to"))
		if err != nil {
			return nil, err
		}
		return Transition{From: from, To: to}, nil
	case NodeGroup:
		g := Group{
			Operator:   Operator(strings.ToUpper(strings.TrimSpace(raw.Operator))),
			Not:        raw.Not,
			Conditions: make([]Node, 0, len(raw.Conditions)),
		}
		for i, child := range raw.Conditions {
			n, err := decodeNode(child, fmt.Sprintf("%s[%d]", joinPath(path, "conditions"), i), depth+1)
			if err != nil {
				return nil, err
			}
			g.Conditions = append(g.Conditions, n)
		}
		return g, nil
	case "":
		return nil, newValidationError(joinPath(path, "type"), "node type is required")
	default:
		return nil, newValidationError(joinPath(path, "type"), fmt.Sprintf("unknown node type %q", raw.Type))
	}
}

func decodeLeg(data []byte, path string) (Involvement, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return Involvement{}, newValidationError(path, "malformed node: "+err.Error())
	}
	if raw.Type != "" && NodeType(strings.ToLower(raw.Type)) != NodeInvolvement {
		return Involvement{}, newValidationError(joinPath(path, "type"), "transition legs must be involvement conditions")
	}
	if raw.Exists != nil && !*raw.Exists {
		return Involvement{}, newValidationError(joinPath(path, "exists"), "transition legs always require exists=true")
	}
	return raw.involvement(path)
}

func (raw rawNode) involvement(path string) (Involvement, error) {
	if raw.Iteration == nil {
		return Involvement{}, newValidationError(joinPath(path, "iteration"), "iteration is required")
	}
	exists := true
	if raw.Exists != nil {
		exists = *raw.Exists
	}
	return Involvement{
		Role:      Role(strings.ToLower(strings.TrimSpace(raw.Role))),
		Iteration: *raw.Iteration,
		Exists:    exists,
		TierID:    raw.TierID,
		TierName:  raw.TierName,
		PeriodID:  raw.PeriodID,
		MinShifts: raw.MinShifts,
	}, nil
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
