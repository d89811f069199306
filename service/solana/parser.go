package solana

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// signatureRefFromRPC converts an RPC TransactionSignature to our domain SignatureRef.
// Note: This only carries metadata from the signature list. Fee and compute
// cost require fetching the full transaction via GetTransaction.
func signatureRefFromRPC(sig *rpc.TransactionSignature) SignatureRef {
	ref := SignatureRef{
		Signature: sig.Signature,
		Slot:      sig.Slot,
	}

	// Convert block time (Unix timestamp); unconfirmed entries have none
	if sig.BlockTime != nil {
		t := sig.BlockTime.Time().UTC()
		ref.BlockTime = &t
	}

	// Check if the ledger recorded the transaction as failed
	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		ref.Err = &errMsg
	}

	return ref
}

// recordFromResult extracts fee, outcome and timing fields from a full
// GetTransactionResult. A nil result or a result without meta means the
// node could not serve the transaction detail; the caller treats that as
// a skipped signature.
//
// Success is derived solely from the execution status. Compute units may
// be absent depending on transaction version; their absence never affects
// the success classification.
func recordFromResult(ref SignatureRef, result *rpc.GetTransactionResult) (*TransactionRecord, error) {
	if result == nil {
		return nil, fmt.Errorf("empty transaction result")
	}
	if result.Meta == nil {
		return nil, fmt.Errorf("transaction result has no meta")
	}

	record := &TransactionRecord{
		Signature:   ref.Signature.String(),
		Success:     result.Meta.Err == nil,
		FeeLamports: result.Meta.Fee,
	}

	// Timestamp falls back to the epoch when the node returns no block time
	if result.BlockTime != nil {
		record.Timestamp = result.BlockTime.Time().UTC()
	} else {
		record.Timestamp = time.Unix(0, 0).UTC()
	}

	if result.Meta.ComputeUnitsConsumed != nil {
		cu := *result.Meta.ComputeUnitsConsumed
		record.ComputeUnits = &cu
	}

	return record, nil
}
