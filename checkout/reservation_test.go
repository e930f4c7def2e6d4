package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() ReservationSeed {
	return ReservationSeed{
		ID:           41,
		CustomerName: "Asha",
		Items: []ReservedItem{
			{ProductID: 1, Name: "Kurta", SizeLabel: "M", Price: dec("500"), Quantity: 1},
		},
	}
}

func TestReservation_VerifyWithServerAdvance(t *testing.T) {
	r := NewReservationContext(seed())
	require.Equal(t, Unverified, r.State)
	assert.True(t, r.Discount().IsZero())

	require.NoError(t, r.Begin("4821"))
	assert.Equal(t, Verifying, r.State)

	require.NoError(t, r.Confirm(dec("200"), DefaultAdvancePerUnit, time.Now()))
	assert.True(t, r.Verified())
	assert.True(t, r.Discount().Equal(dec("200")))
	assert.NotNil(t, r.VerifiedAt)
}

func TestReservation_VerifyFallsBackToPerUnitAdvance(t *testing.T) {
	s := seed()
	s.Items[0].Quantity = 2
	r := NewReservationContext(s)

	require.NoError(t, r.Begin("4821"))
	require.NoError(t, r.Confirm(decimal.Zero, DefaultAdvancePerUnit, time.Now()))

	assert.True(t, r.Discount().Equal(dec("300")))
}

func TestReservation_FailureReturnsToUnverified(t *testing.T) {
	r := NewReservationContext(seed())

	require.NoError(t, r.Begin("0000"))
	require.NoError(t, r.Fail("Invalid reservation code."))

	assert.Equal(t, Unverified, r.State)
	assert.Equal(t, "Invalid reservation code.", r.LastError)
	assert.True(t, r.Discount().IsZero())

	// the operator may retry
	require.NoError(t, r.Begin("4821"))
	assert.Empty(t, r.LastError)
}

func TestReservation_BeginValidation(t *testing.T) {
	r := NewReservationContext(seed())

	assert.ErrorIs(t, r.Begin("   "), ErrEmptyCode)
	assert.Equal(t, Unverified, r.State)

	require.NoError(t, r.Begin("1"))
	assert.ErrorIs(t, r.Begin("1"), ErrVerificationInFlight)

	require.NoError(t, r.Confirm(decimal.Zero, DefaultAdvancePerUnit, time.Now()))
	assert.ErrorIs(t, r.Begin("1"), ErrAlreadyVerified)

	var missing *ReservationContext
	assert.ErrorIs(t, missing.Begin("1"), ErrNoReservation)
	assert.ErrorIs(t, (&ReservationContext{}).Begin("1"), ErrNoReservation)
}

func TestReservation_StaleResultsIgnored(t *testing.T) {
	r := NewReservationContext(seed())

	assert.ErrorIs(t, r.Confirm(dec("150"), DefaultAdvancePerUnit, time.Now()), ErrNotVerifying)
	assert.ErrorIs(t, r.Fail("late"), ErrNotVerifying)
	assert.False(t, r.Verified())
}

func TestLineFromReservation(t *testing.T) {
	l := LineFromReservation(ReservedItem{ProductID: 3, Name: "Saree", Price: dec("1200"), Quantity: 0})

	assert.Equal(t, DefaultSizeLabel, l.SizeLabel)
	assert.Equal(t, 1, l.Quantity)
	assert.Equal(t, 1, l.Available)
}
