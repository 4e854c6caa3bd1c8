package segments

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecodeNode_Shapes(t *testing.T) {
	occ := uuid.New()
	root, err := ParseFilter([]byte(`{
		"type": "group",
		"operator": "or",
		"not": true,
		"conditions": [
			{"type": "involvement", "role": "volunteer", "iteration": {"type": "specific", "occurrenceId": "`+occ.String()+`"}, "minShifts": 2},
			{"type": "involvement", "role": "participant", "iteration": "previous", "exists": false, "tierName": "VIP"}
		]
	}`), DefaultConfig().Limits)
	require.NoError(t, err)

	g, ok := root.(Group)
	require.True(t, ok)
	require.Equal(t, OperatorOr, g.Operator)
	require.True(t, g.Not)
	require.Len(t, g.Conditions, 2)

	first := g.Conditions[0].(Involvement)
	require.Equal(t, RoleVolunteer, first.Role)
	require.Equal(t, IterationSpecific, first.Iteration.Kind)
	require.Equal(t, occ, *first.Iteration.OccurrenceID)
	require.True(t, first.Exists)
	require.Equal(t, 2, *first.MinShifts)

	second := g.Conditions[1].(Involvement)
	require.Equal(t, IterationPrevious, second.Iteration.Kind)
	require.False(t, second.Exists)
	require.Equal(t, "VIP", *second.TierName)
}

func TestFilter_RoundTrip(t *testing.T) {
	tier := uuid.New()
	in := Filter{Root: Group{Operator: OperatorAnd, Conditions: []Node{
		Transition{From: participant(Previous()), To: participant(Current())},
		Involvement{Role: RoleParticipant, Iteration: Current(), Exists: false, TierID: &tier},
	}}}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Filter
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, in, out)
}

func TestParseFilter_Rejects(t *testing.T) {
	occ := uuid.New().String()
	cases := map[string]struct {
		json string
		path string
	}{
		"unknown type":        {json: `{"type":"cohort"}`, path: "type"},
		"missing type":        {json: `{"role":"participant","iteration":"current"}`, path: "type"},
		"empty group":         {json: `{"type":"group","operator":"AND","conditions":[]}`, path: "conditions"},
		"bad operator":        {json: `{"type":"group","operator":"XOR","conditions":[{"type":"involvement","role":"participant","iteration":"current"}]}`, path: "operator"},
		"bad role":            {json: `{"type":"involvement","role":"sponsor","iteration":"current"}`, path: "role"},
		"missing iteration":   {json: `{"type":"involvement","role":"participant"}`, path: "iteration"},
		"bad iteration":       {json: `{"type":"involvement","role":"participant","iteration":"next"}`, path: "iteration.type"},
		"specific without id": {json: `{"type":"involvement","role":"participant","iteration":{"type":"specific"}}`, path: "iteration.occurrenceId"},
		"id on current":       {json: `{"type":"involvement","role":"participant","iteration":{"type":"current","occurrenceId":"` + occ + `"}}`, path: "iteration.occurrenceId"},
		"transition leg":      {json: `{"type":"transition","from":{"role":"participant","iteration":"previous"}}`, path: ""},
		"negated leg":         {json: `{"type":"transition","from":{"role":"participant","iteration":"previous","exists":false},"to":{"role":"participant","iteration":"current"}}`, path: "from.exists"},
		"group as leg":        {json: `{"type":"transition","from":{"type":"group"},"to":{"role":"participant","iteration":"current"}}`, path: "from.type"},
		"tier on volunteer":   {json: `{"type":"involvement","role":"volunteer","iteration":"current","tierName":"VIP"}`, path: ""},
		"shifts on attendee":  {json: `{"type":"involvement","role":"participant","iteration":"current","minShifts":1}`, path: "minShifts"},
		"negative shifts":     {json: `{"type":"involvement","role":"volunteer","iteration":"current","minShifts":-1}`, path: "minShifts"},
		"nested child path":   {json: `{"type":"group","operator":"AND","conditions":[{"type":"involvement","role":"participant","iteration":"current"},{"type":"nope"}]}`, path: "conditions[1].type"},
		"malformed json":      {json: `{"type":`, path: ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilter([]byte(tc.json), DefaultConfig().Limits)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.path, ve.Path)
		})
	}
}

func TestParseFilter_Limits(t *testing.T) {
	leaf := `{"type":"involvement","role":"participant","iteration":"current"}`

	deep := leaf
	for i := 0; i < 5; i++ {
		deep = `{"type":"group","operator":"AND","conditions":[` + deep + `]}`
	}
	_, err := ParseFilter([]byte(deep), Limits{MaxDepth: 5})
	require.True(t, IsValidationError(err))
	_, err = ParseFilter([]byte(deep), Limits{MaxDepth: 6})
	require.NoError(t, err)

	wide := `{"type":"group","operator":"OR","conditions":[` + strings.TrimSuffix(strings.Repeat(leaf+",", 10), ",") + `]}`
	_, err = ParseFilter([]byte(wide), Limits{MaxNodes: 10})
	require.True(t, IsValidationError(err))
	_, err = ParseFilter([]byte(wide), Limits{MaxNodes: 11})
	require.NoError(t, err)

	tooDeep := leaf
	for i := 0; i < hardMaxDepth+1; i++ {
		tooDeep = `{"type":"group","operator":"AND","conditions":[` + tooDeep + `]}`
	}
	_, err = ParseFilter([]byte(tooDeep), Limits{})
	require.True(t, IsValidationError(err))
}
