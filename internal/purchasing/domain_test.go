package purchasing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestTransitions(t *testing.T) {
	cases := []struct {
		from, to RequestState
		ok       bool
	}{
		{RequestOpen, RequestBeingQuoted, true},
		{RequestOpen, RequestReceived, true},
		{RequestOpen, RequestClosed, false},
		{RequestBeingQuoted, RequestHasBudgets, true},
		{RequestBeingQuoted, RequestClosed, true},
		{RequestHasBudgets, RequestClosed, true},
		{RequestHasBudgets, RequestOpen, false},
		{RequestClosed, RequestReceived, true},
		{RequestClosed, RequestOpen, false},
		{RequestReceived, RequestClosed, false},
		{RequestOpen, RequestOpen, true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestQuotationTransitions(t *testing.T) {
	require.True(t, QuotationIssued.CanTransition(QuotationHasBudgets))
	require.True(t, QuotationIssued.CanTransition(QuotationFinalized))
	require.True(t, QuotationHasBudgets.CanTransition(QuotationFinalized))
	require.False(t, QuotationFinalized.CanTransition(QuotationHasBudgets))
	require.False(t, QuotationFinalized.CanTransition(QuotationIssued))
}

func TestBudgetTransitions(t *testing.T) {
	require.True(t, BudgetResponded.CanTransition(BudgetAccepted))
	require.True(t, BudgetResponded.CanTransition(BudgetRejected))
	require.False(t, BudgetAccepted.CanTransition(BudgetRejected))
	require.False(t, BudgetRejected.CanTransition(BudgetAccepted))
}

func TestNoteTransitions(t *testing.T) {
	require.True(t, NotePending.CanTransition(NoteReceived))
	require.True(t, NotePending.CanTransition(NoteDisputed))
	require.True(t, NoteDisputed.CanTransition(NoteRedelivered))
	require.False(t, NoteReceived.CanTransition(NoteDisputed))
	require.False(t, NoteRedelivered.CanTransition(NotePending))
	require.False(t, NoteDisputed.CanTransition(NoteReceived))
}

func TestRequestStateKnown(t *testing.T) {
	require.True(t, RequestOpen.Known())
	require.True(t, RequestReceived.Known())
	require.False(t, RequestState("BOGUS").Known())
	require.False(t, RequestState("").Known())
}
