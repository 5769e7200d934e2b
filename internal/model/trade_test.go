package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsForwardLegTransition(t *testing.T) {
	assert.True(t, IsForwardLegTransition(LegStateCreated, LegStateFunded))
	assert.True(t, IsForwardLegTransition(LegStateFunded, LegStateFiatPaid))
	assert.True(t, IsForwardLegTransition(LegStateFiatPaid, LegStateReleased))
	assert.True(t, IsForwardLegTransition(LegStateFunded, LegStateDisputed))
	assert.True(t, IsForwardLegTransition(LegStateDisputed, LegStateResolved))
	assert.True(t, IsForwardLegTransition(LegStateCreated, LegStateCancelled))

	// repeats and rewinds
	assert.False(t, IsForwardLegTransition(LegStateFunded, LegStateFunded))
	assert.False(t, IsForwardLegTransition(LegStateFiatPaid, LegStateFunded))
	assert.False(t, IsForwardLegTransition(LegStateReleased, LegStateCancelled))
	assert.False(t, IsForwardLegTransition(LegStateCancelled, LegStateFunded))
	assert.False(t, IsForwardLegTransition(LegStateResolved, LegStateReleased))
}

func TestIsForwardEscrowTransition(t *testing.T) {
	assert.True(t, IsForwardEscrowTransition(EscrowStateCreated, EscrowStateFunded))
	assert.True(t, IsForwardEscrowTransition(EscrowStateCreated, EscrowStateCancelled))
	assert.True(t, IsForwardEscrowTransition(EscrowStateFunded, EscrowStateReleased))
	assert.True(t, IsForwardEscrowTransition(EscrowStateFunded, EscrowStateDisputed))
	assert.True(t, IsForwardEscrowTransition(EscrowStateDisputed, EscrowStateResolved))

	assert.False(t, IsForwardEscrowTransition(EscrowStateFunded, EscrowStateFunded))
	assert.False(t, IsForwardEscrowTransition(EscrowStateReleased, EscrowStateFunded))
	assert.False(t, IsForwardEscrowTransition(EscrowStateCancelled, EscrowStateFunded))
	assert.False(t, IsForwardEscrowTransition(EscrowStateCreated, EscrowStateReleased))
}

func TestIsLegUncancelable(t *testing.T) {
	assert.True(t, IsLegUncancelable(LegStateFiatPaid))
	assert.True(t, IsLegUncancelable(LegStateReleased))
	assert.True(t, IsLegUncancelable(LegStateDisputed))
	assert.True(t, IsLegUncancelable(LegStateResolved))

	assert.False(t, IsLegUncancelable(LegStateCreated))
	assert.False(t, IsLegUncancelable(LegStateFunded))
	assert.False(t, IsLegUncancelable(LegStateCancelled))
}

func TestLegStateFor(t *testing.T) {
	leg2 := LegStateFunded
	trade := &Trade{Leg1State: LegStateCreated, Leg2State: &leg2}

	s, ok := trade.LegStateFor(1)
	assert.True(t, ok)
	assert.Equal(t, LegStateCreated, s)

	s, ok = trade.LegStateFor(2)
	assert.True(t, ok)
	assert.Equal(t, LegStateFunded, s)

	single := &Trade{Leg1State: LegStateCreated}
	_, ok = single.LegStateFor(2)
	assert.False(t, ok)

	_, ok = single.LegStateFor(3)
	assert.False(t, ok)
}
