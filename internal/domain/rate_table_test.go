package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestRateTable_Validate(t *testing.T) {
	maxDays := 2

	tests := []struct {
		name    string
		table   RateTable
		wantErr bool
	}{
		{"Daily only", RateTable{DailyRate: nd("10")}, false},
		{"No rates", RateTable{Deposit: nd("50")}, true},
		{"Max below min", RateTable{DailyRate: nd("10"), MinDays: 3, MaxDays: &maxDays}, true},
		{"Negative rate", RateTable{DailyRate: nd("-1")}, true},
		{"Discount above one", RateTable{DailyRate: nd("10"), EarlyReturnDiscountRate: nd("1.5")}, true},
		{"Extension fee above ten", RateTable{DailyRate: nd("10"), ExtensionFeeRate: nd("11")}, true},
		{"Extension fee at ten", RateTable{DailyRate: nd("10"), ExtensionFeeRate: nd("10")}, false},
		{"Unknown method", RateTable{DailyRate: nd("10"), PricingMethod: "hourly"}, true},
		{"Unknown deposit mode", RateTable{DailyRate: nd("10"), DepositMode: "per_day"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRateTable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRateTable_CheckDuration(t *testing.T) {
	maxDays := 10
	rt := RateTable{DailyRate: nd("10"), MinDays: 3, MaxDays: &maxDays}

	assert.ErrorIs(t, rt.CheckDuration(2), ErrInvalidDuration)
	assert.NoError(t, rt.CheckDuration(3))
	assert.NoError(t, rt.CheckDuration(10))
	assert.ErrorIs(t, rt.CheckDuration(11), ErrInvalidDuration)

	open := RateTable{DailyRate: nd("10")}
	assert.ErrorIs(t, open.CheckDuration(0), ErrInvalidDuration)
	assert.NoError(t, open.CheckDuration(365))
	assert.Equal(t, PricingMethodAuto, open.Method())
}

func TestHoldStatus_CountsAgainstStock(t *testing.T) {
	for _, s := range CountingHoldStatuses {
		assert.True(t, s.CountsAgainstStock(), string(s))
	}
	for _, s := range []HoldStatus{HoldStatusCancelled, HoldStatusReturned, HoldStatusRejected, HoldStatusExpired} {
		assert.False(t, s.CountsAgainstStock(), string(s))
	}
}

func TestRateTable_Clone(t *testing.T) {
	maxDays := 10
	rt := RateTable{ProductID: 1, DailyRate: nd("5"), MaxDays: &maxDays}

	c := rt.Clone()
	assert.Equal(t, rt, *c)
	*c.MaxDays = 3
	assert.Equal(t, 10, *rt.MaxDays)

	assert.Nil(t, RateTable{}.Clone().MaxDays)
}
