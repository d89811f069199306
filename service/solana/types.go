package solana

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// SignatureRef is one entry from the signature listing for an address.
// This is our domain model, independent of the RPC response format.
type SignatureRef struct {
	Signature solana.Signature
	Slot      uint64
	BlockTime *time.Time // nil for entries the node has not assigned a block time
	Err       *string    // nil if the ledger recorded the transaction as successful
}

// TransactionRecord is the enriched result of fetching one signature's
// full detail. Immutable once created.
type TransactionRecord struct {
	Signature    string    `json:"signature"`
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	FeeLamports  uint64    `json:"fee_lamports"`
	ComputeUnits *uint64   `json:"compute_units,omitempty"` // unavailable for some transaction versions
}

// FetchFailure records a signature whose detail fetch failed. Failures
// are surfaced as a side list and never abort a run.
type FetchFailure struct {
	Signature string `json:"signature"`
	Err       string `json:"error"`
}
