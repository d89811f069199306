package fees

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sergeytimoshin/tx-fee-analyzer/service/solana"
)

// TimeWindow bounds one analysis run. To is the wall clock at run start,
// From is To minus the requested lookback.
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Analysis is the terminal aggregate for one run. Records holds every
// retained transaction sorted by timestamp ascending.
type Analysis struct {
	TotalTransactions  int                        `json:"total_transactions"`
	SuccessfulCount    int                        `json:"successful_transactions"`
	FailedCount        int                        `json:"failed_transactions"`
	TotalFeeLamports   uint64                     `json:"total_fee_lamports"`
	AverageFeeLamports float64                    `json:"average_fee_lamports"`
	Window             TimeWindow                 `json:"window"`
	Records            []solana.TransactionRecord `json:"records"`
}

// SuccessRate returns the share of successful transactions as a percentage,
// 0 when there are no transactions.
func (a *Analysis) SuccessRate() float64 {
	if a.TotalTransactions == 0 {
		return 0
	}
	return float64(a.SuccessfulCount) / float64(a.TotalTransactions) * 100
}

// TotalFeeSOL renders the fee sum in whole-token units at the chain's
// native nine decimal places.
func (a *Analysis) TotalFeeSOL() string {
	return decimal.New(int64(a.TotalFeeLamports), -9).StringFixed(9)
}

// Aggregate folds records into an Analysis for the given window. The input
// slice is left untouched; Records on the result is a stable-sorted copy,
// ties broken by original fetch order.
func Aggregate(records []solana.TransactionRecord, window TimeWindow) Analysis {
	analysis := Analysis{
		TotalTransactions: len(records),
		Window:            window,
		Records:           sortByTimestamp(records),
	}
	for _, record := range analysis.Records {
		if record.Success {
			analysis.SuccessfulCount++
		} else {
			analysis.FailedCount++
		}
		analysis.TotalFeeLamports += record.FeeLamports
	}
	if analysis.TotalTransactions > 0 {
		analysis.AverageFeeLamports = float64(analysis.TotalFeeLamports) / float64(analysis.TotalTransactions)
	}
	return analysis
}

func sortByTimestamp(records []solana.TransactionRecord) []solana.TransactionRecord {
	sorted := make([]solana.TransactionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
