package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-advisor/core/types"
)

// TestValidateRequest verifies request constraints and field naming
func TestValidateRequest(t *testing.T) {
	v := New()

	valid := types.Request{
		CurrentPlan:       types.PlanCorporate,
		ManagementSubtype: types.SubtypeCompleto,
		DesktopSeats:      2,
		Selections:        map[string]int{"CRM": 3},
		POSCounts:         []int{1, 3},
	}
	assert.NoError(t, v.Validate(&valid))

	tests := []struct {
		name    string
		req     types.Request
		field   string
		message string
	}{
		{"missing plan", types.Request{}, "current_plan", "is required"},
		{"unknown plan", types.Request{CurrentPlan: "Premium"}, "current_plan", "must be one of: Corporate, Advanced, Enterprise"},
		{"unknown subtype", types.Request{CurrentPlan: types.PlanCorporate, ManagementSubtype: "Outro"}, "management_subtype",
			"must be one of: Gestão Clientes, Gestão Terceiros, Gestão Completo"},
		{"negative seats", types.Request{CurrentPlan: types.PlanCorporate, WebSeats: -1}, "web_seats", "must be at least 0"},
		{"negative quantity", types.Request{CurrentPlan: types.PlanCorporate, Selections: map[string]int{"CRM": -2}}, "selections[CRM]", "must be at least 0"},
		{"negative terminals", types.Request{CurrentPlan: types.PlanCorporate, POSCounts: []int{2, -1}}, "pos_counts[1]", "must be at least 0"},
		{"floor above top tier", types.Request{CurrentPlan: types.PlanCorporate, LegacyExtraFloors: map[string]types.TierID{"sms": 7}},
			"legacy_extra_floors[sms]", "must be at most 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1, verrs.Error())
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Equal(t, tt.message, verrs[0].Message)
		})
	}
}

func TestValidateDecimal(t *testing.T) {
	type proposal struct {
		Value decimal.Decimal `json:"value" validate:"gte=0"`
	}
	v := New()

	assert.NoError(t, v.Validate(&proposal{Value: decimal.NewFromInt(1200)}))

	err := v.Validate(&proposal{Value: decimal.NewFromInt(-1)})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "value", verrs[0].Field)
}

func TestSplitOneOf(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, splitOneOf("a 'b c' d"))
	assert.Equal(t, []string{"x"}, splitOneOf("x"))
}
