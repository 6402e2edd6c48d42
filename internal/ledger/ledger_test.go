package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedger_RecordAndSummarize(t *testing.T) {
	l := openLedger(t)

	outcomes := []SessionOutcome{
		{SessionID: "a", CustomerLabel: "guest", Outcome: OutcomeConfirmed, OrderNumber: "1000001"},
		{SessionID: "b", CustomerLabel: "guest", Outcome: OutcomeConfirmed, OrderNumber: "1000002"},
		{SessionID: "c", CustomerLabel: "guest", Outcome: OutcomeAbandonedDeclined, Notifications: 3},
		{SessionID: "d", CustomerLabel: "digital", Outcome: OutcomeConfirmed, OrderNumber: "1000003"},
	}
	for _, o := range outcomes {
		require.NoError(t, l.Record(o))
	}

	n, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	confirmed, err := l.CountByOutcome(OutcomeConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), confirmed)

	summary, err := l.SummaryByLabel()
	require.NoError(t, err)
	assert.Equal(t, []LabelSummary{
		{CustomerLabel: "digital", Outcome: OutcomeConfirmed, Total: 1},
		{CustomerLabel: "guest", Outcome: OutcomeAbandonedDeclined, Total: 1},
		{CustomerLabel: "guest", Outcome: OutcomeConfirmed, Total: 2},
	}, summary)

}

func TestLedger_AbandonedByStage(t *testing.T) {
	l := openLedger(t)

	outcomes := []SessionOutcome{
		{SessionID: "a", CustomerLabel: "guest", Outcome: OutcomeConfirmed, FinalStage: "review"},
		{SessionID: "b", CustomerLabel: "guest", Outcome: OutcomeAbandonedDeclined, FinalStage: "payment"},
		{SessionID: "c", CustomerLabel: "mobile", Outcome: OutcomeAbandonedDeclined, FinalStage: "payment"},
		{SessionID: "d", CustomerLabel: "guest", Outcome: OutcomeAbandonedOutOfStock, FinalStage: "shipping_address"},
		{SessionID: "e", CustomerLabel: "anonymous", Outcome: OutcomeRejectedUnauthenticated},
	}
	for _, o := range outcomes {
		require.NoError(t, l.Record(o))
	}

	rows, err := l.AbandonedByStage()
	require.NoError(t, err)
	assert.Equal(t, []StageSummary{
		{FinalStage: "payment", Total: 2},
		{FinalStage: "shipping_address", Total: 1},
	}, rows)
}

func TestLedger_RejectsDuplicatesAndBlankSessions(t *testing.T) {
	l := openLedger(t)

	require.NoError(t, l.Record(SessionOutcome{SessionID: "a", CustomerLabel: "guest", Outcome: OutcomeConfirmed}))
	assert.Error(t, l.Record(SessionOutcome{SessionID: "a", CustomerLabel: "guest", Outcome: OutcomeConfirmed}))
	assert.Error(t, l.Record(SessionOutcome{CustomerLabel: "guest"}))
}
