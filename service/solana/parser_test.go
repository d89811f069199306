package solana

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureRefFromRPC(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)

	ref := signatureRefFromRPC(&rpc.TransactionSignature{
		Signature: testSignature(1),
		Slot:      301_445_200,
		BlockTime: unixPtr(now),
	})

	assert.Equal(t, testSignature(1), ref.Signature)
	assert.Equal(t, uint64(301_445_200), ref.Slot)
	require.NotNil(t, ref.BlockTime)
	assert.Equal(t, now, *ref.BlockTime)
	assert.Equal(t, time.UTC, ref.BlockTime.Location())
	assert.Nil(t, ref.Err)
}

func TestSignatureRefFromRPC_NoBlockTime(t *testing.T) {
	ref := signatureRefFromRPC(&rpc.TransactionSignature{
		Signature: testSignature(2),
		Slot:      301_445_201,
	})

	assert.Nil(t, ref.BlockTime)
}

func TestSignatureRefFromRPC_FailedTransaction(t *testing.T) {
	ref := signatureRefFromRPC(&rpc.TransactionSignature{
		Signature: testSignature(3),
		Err:       map[string]interface{}{"InstructionError": []interface{}{2, "Custom"}},
	})

	require.NotNil(t, ref.Err)
	assert.Contains(t, *ref.Err, "transaction failed")
}

func TestRecordFromResult(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	cu := uint64(42_000)
	ref := SignatureRef{Signature: testSignature(1)}

	record, err := recordFromResult(ref, detailResult(now, 5000, true, &cu))

	require.NoError(t, err)
	assert.Equal(t, testSignature(1).String(), record.Signature)
	assert.Equal(t, now, record.Timestamp)
	assert.Equal(t, time.UTC, record.Timestamp.Location())
	assert.True(t, record.Success)
	assert.Equal(t, uint64(5000), record.FeeLamports)
	require.NotNil(t, record.ComputeUnits)
	assert.Equal(t, cu, *record.ComputeUnits)
}

func TestRecordFromResult_Failed(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	ref := SignatureRef{Signature: testSignature(2)}

	record, err := recordFromResult(ref, detailResult(now, 6200, false, nil))

	require.NoError(t, err)
	assert.False(t, record.Success)
	assert.Equal(t, uint64(6200), record.FeeLamports)
	assert.Nil(t, record.ComputeUnits)
}

func TestRecordFromResult_NilResult(t *testing.T) {
	ref := SignatureRef{Signature: testSignature(3)}

	record, err := recordFromResult(ref, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty transaction result")
	assert.Nil(t, record)
}

func TestRecordFromResult_NilMeta(t *testing.T) {
	now := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	ref := SignatureRef{Signature: testSignature(4)}

	record, err := recordFromResult(ref, &rpc.GetTransactionResult{BlockTime: unixPtr(now)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no meta")
	assert.Nil(t, record)
}

func TestRecordFromResult_MissingBlockTime(t *testing.T) {
	ref := SignatureRef{Signature: testSignature(5)}

	record, err := recordFromResult(ref, &rpc.GetTransactionResult{
		Meta: &rpc.TransactionMeta{Fee: 5000},
	})

	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), record.Timestamp)
}
