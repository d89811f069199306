package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// realRPCClient backs the RPCClient interface with the solana-go client.
// Keeping the interface on the consumer side lets tests swap in a
// map-backed fake without touching the transport.
type realRPCClient struct {
	client *rpc.Client
}

// NewRPCClient dials the given JSON-RPC endpoint. Endpoints that require
// an API key take it in the URL itself, e.g.
// https://mainnet.helius-rpc.com/?api-key=YOUR-KEY.
func NewRPCClient(rpcURL string) RPCClient {
	return &realRPCClient{client: rpc.New(rpcURL)}
}

func (c *realRPCClient) GetSignaturesForAddress(
	ctx context.Context,
	address solana.PublicKey,
	opts *rpc.GetSignaturesForAddressOpts,
) ([]*rpc.TransactionSignature, error) {
	return c.client.GetSignaturesForAddressWithOpts(ctx, address, opts)
}

func (c *realRPCClient) GetTransaction(
	ctx context.Context,
	signature solana.Signature,
	opts *rpc.GetTransactionOpts,
) (*rpc.GetTransactionResult, error) {
	return c.client.GetTransaction(ctx, signature, opts)
}
