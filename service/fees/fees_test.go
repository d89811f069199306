package fees

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeytimoshin/tx-fee-analyzer/service/solana"
)

func testRecord(sig string, ts time.Time, success bool, fee uint64) solana.TransactionRecord {
	return solana.TransactionRecord{
		Signature:   sig,
		Timestamp:   ts,
		Success:     success,
		FeeLamports: fee,
	}
}

func testWindow(to time.Time) TimeWindow {
	return TimeWindow{From: to.Add(-24 * time.Hour), To: to}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	records := []solana.TransactionRecord{
		testRecord("sig1", now.Add(-1*time.Hour), true, 5000),
		testRecord("sig2", now.Add(-2*time.Hour), false, 7500),
		testRecord("sig3", now.Add(-3*time.Hour), true, 5000),
	}

	analysis := Aggregate(records, testWindow(now))

	assert.Equal(t, 3, analysis.TotalTransactions)
	assert.Equal(t, 2, analysis.SuccessfulCount)
	assert.Equal(t, 1, analysis.FailedCount)
	assert.Equal(t, analysis.TotalTransactions, analysis.SuccessfulCount+analysis.FailedCount)
	assert.Equal(t, uint64(17_500), analysis.TotalFeeLamports)
	assert.InDelta(t, 17_500.0/3, analysis.AverageFeeLamports, 1e-9)
	assert.Equal(t, testWindow(now), analysis.Window)
}

func TestAggregate_Empty(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)

	analysis := Aggregate(nil, testWindow(now))

	assert.Zero(t, analysis.TotalTransactions)
	assert.Zero(t, analysis.SuccessfulCount)
	assert.Zero(t, analysis.FailedCount)
	assert.Zero(t, analysis.TotalFeeLamports)
	assert.Equal(t, 0.0, analysis.AverageFeeLamports)
	assert.Empty(t, analysis.Records)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	records := []solana.TransactionRecord{
		testRecord("sig1", now.Add(-1*time.Hour), true, 5000),
		testRecord("sig2", now.Add(-2*time.Hour), false, 7500),
		testRecord("sig3", now.Add(-3*time.Hour), true, 6200),
	}
	reversed := []solana.TransactionRecord{records[2], records[1], records[0]}

	forward := Aggregate(records, testWindow(now))
	backward := Aggregate(reversed, testWindow(now))

	assert.Equal(t, forward.TotalTransactions, backward.TotalTransactions)
	assert.Equal(t, forward.SuccessfulCount, backward.SuccessfulCount)
	assert.Equal(t, forward.TotalFeeLamports, backward.TotalFeeLamports)
	assert.Equal(t, forward.AverageFeeLamports, backward.AverageFeeLamports)
	assert.Equal(t, forward.Records, backward.Records)
}

func TestAggregate_SortsRecordsByTimestamp(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	records := []solana.TransactionRecord{
		testRecord("newest", now.Add(-1*time.Hour), true, 5000),
		testRecord("middle", now.Add(-2*time.Hour), true, 5000),
		testRecord("oldest", now.Add(-3*time.Hour), true, 5000),
	}

	analysis := Aggregate(records, testWindow(now))

	require.Len(t, analysis.Records, 3)
	assert.Equal(t, "oldest", analysis.Records[0].Signature)
	assert.Equal(t, "middle", analysis.Records[1].Signature)
	assert.Equal(t, "newest", analysis.Records[2].Signature)

	// The caller's slice keeps its original order.
	assert.Equal(t, "newest", records[0].Signature)
}

func TestAggregate_SortIsStable(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	shared := now.Add(-1 * time.Hour)

	records := make([]solana.TransactionRecord, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, testRecord(fmt.Sprintf("sig%d", i), shared, true, 5000))
	}

	analysis := Aggregate(records, testWindow(now))

	require.Len(t, analysis.Records, 10)
	for i, record := range analysis.Records {
		assert.Equal(t, fmt.Sprintf("sig%d", i), record.Signature)
	}
}

func TestAnalysis_SuccessRate(t *testing.T) {
	analysis := &Analysis{TotalTransactions: 3, SuccessfulCount: 2, FailedCount: 1}
	assert.InDelta(t, 66.6667, analysis.SuccessRate(), 0.001)

	empty := &Analysis{}
	assert.Equal(t, 0.0, empty.SuccessRate())

	all := &Analysis{TotalTransactions: 4, SuccessfulCount: 4}
	assert.Equal(t, 100.0, all.SuccessRate())
}

func TestAnalysis_TotalFeeSOL(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0.000000000"},
		{1, "0.000000001"},
		{5000, "0.000005000"},
		{17_500, "0.000017500"},
		{2_500_000_000, "2.500000000"},
	}

	for _, tt := range tests {
		analysis := &Analysis{TotalFeeLamports: tt.lamports}
		assert.Equal(t, tt.want, analysis.TotalFeeSOL(), "lamports=%d", tt.lamports)
	}
}
