package solana

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/metrics"
)

// Pacing defaults. Tuned for the public mainnet endpoint; premium
// endpoints tolerate much shorter delays.
const (
	defaultPageLimit  = 100
	defaultBatchSize  = 5
	defaultPageDelay  = 100 * time.Millisecond
	defaultFetchDelay = 100 * time.Millisecond
	defaultBatchDelay = 500 * time.Millisecond
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetSignaturesForAddress(
		ctx context.Context,
		address solana.PublicKey,
		opts *rpc.GetSignaturesForAddressOpts,
	) ([]*rpc.TransactionSignature, error)

	GetTransaction(
		ctx context.Context,
		signature solana.Signature,
		opts *rpc.GetTransactionOpts,
	) (*rpc.GetTransactionResult, error)
}

// Client provides signature collection and transaction detail fetching
// for a wallet. It wraps the RPC client with domain-specific operations.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)

	pageLimit  int
	batchSize  int
	pageDelay  time.Duration
	fetchDelay time.Duration
	batchDelay time.Duration
	sleep      func(time.Duration)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetrics attaches a metrics recorder. If nil, no metrics are recorded.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithPageLimit sets the signature page size for pagination.
func WithPageLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

// WithBatchSize sets how many detail fetches run between batch delays.
func WithBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithPageDelay sets the pacing delay between signature pages.
func WithPageDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.pageDelay = d }
}

// WithFetchDelay sets the pacing delay between detail fetches.
func WithFetchDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.fetchDelay = d }
}

// WithBatchDelay sets the longer pacing delay after each fetch batch.
func WithBatchDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.batchDelay = d }
}

// WithSleep replaces the blocking sleep used for pacing. Tests inject a
// recording no-op here so pacing is asserted without real delays.
func WithSleep(fn func(time.Duration)) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling (e.g., "mainnet" or RPC hostname).
func NewClient(rpcClient RPCClient, endpoint string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		rpc:        rpcClient,
		logger:     logger,
		endpoint:   endpoint,
		pageLimit:  defaultPageLimit,
		batchSize:  defaultBatchSize,
		pageDelay:  defaultPageDelay,
		fetchDelay: defaultFetchDelay,
		batchDelay: defaultBatchDelay,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectSignaturesParams bounds a signature collection run.
type CollectSignaturesParams struct {
	Wallet solana.PublicKey
	From   time.Time
	To     time.Time
}

// CollectSignatures walks the wallet's signature history newest-first and
// returns every entry whose block time falls within [From, To].
//
// Pages are requested with an exclusive "before" cursor until either the
// history is exhausted or the oldest entry of a page predates From. The
// boundary page is scanned in full because same-slot transactions are not
// ordered by timestamp within a page. A final filter pass re-checks both
// bounds and drops entries with no block time.
//
// Any pagination failure aborts the whole collection.
func (c *Client) CollectSignatures(ctx context.Context, params CollectSignaturesParams) ([]SignatureRef, error) {
	var collected []SignatureRef
	var before solana.Signature // zero means start from the newest signature

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		limit := c.pageLimit
		opts := &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		}
		if !before.IsZero() {
			opts.Before = before
		}

		start := time.Now()
		page, err := c.rpc.GetSignaturesForAddress(ctx, params.Wallet, opts)
		duration := time.Since(start).Seconds()

		status := "success"
		if err != nil {
			status = "error"
		}
		if c.metrics != nil {
			c.metrics.RecordRPCCall("GetSignaturesForAddress", status, c.endpoint, duration)
			if err == nil {
				c.metrics.RecordSignaturesPerPage(c.endpoint, float64(len(page)))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get signatures for address: %w", err)
		}

		if len(page) == 0 {
			break
		}

		refs := make([]SignatureRef, 0, len(page))
		for _, sig := range page {
			refs = append(refs, signatureRefFromRPC(sig))
		}

		c.logger.DebugContext(ctx, "fetched signature page",
			"wallet", params.Wallet.String(),
			"count", len(refs),
			"oldest_slot", refs[len(refs)-1].Slot,
		)

		if pageCrossesWindowStart(refs, params.From) {
			collected = append(collected, retainWithinWindow(refs, params.From)...)
			break
		}

		collected = append(collected, refs...)
		before = refs[len(refs)-1].Signature
		c.sleep(c.pageDelay)
	}

	c.logger.InfoContext(ctx, "retrieved signatures",
		"wallet", params.Wallet.String(),
		"count", len(collected),
	)

	filtered := filterWindow(collected, params.From, params.To)

	c.logger.InfoContext(ctx, "signatures in time window",
		"wallet", params.Wallet.String(),
		"count", len(filtered),
		"from", params.From,
		"to", params.To,
	)

	return filtered, nil
}

// pageCrossesWindowStart reports whether the oldest entry of a page
// predates the window start. Pages are ordered newest to oldest, so the
// oldest entry is the last one. An entry with no block time never
// terminates pagination.
func pageCrossesWindowStart(refs []SignatureRef, from time.Time) bool {
	if len(refs) == 0 {
		return false
	}
	oldest := refs[len(refs)-1]
	return oldest.BlockTime != nil && oldest.BlockTime.Before(from)
}

// retainWithinWindow keeps the entries of a boundary page whose block
// time is at or after the window start. In-window entries may sit at any
// position, not just a prefix, so the whole page is scanned.
func retainWithinWindow(refs []SignatureRef, from time.Time) []SignatureRef {
	kept := make([]SignatureRef, 0, len(refs))
	for _, ref := range refs {
		if ref.BlockTime != nil && !ref.BlockTime.Before(from) {
			kept = append(kept, ref)
		}
	}
	return kept
}

// filterWindow enforces from <= t <= to over the accumulated entries.
// Entries with no block time are dropped.
func filterWindow(refs []SignatureRef, from, to time.Time) []SignatureRef {
	kept := make([]SignatureRef, 0, len(refs))
	for _, ref := range refs {
		if ref.BlockTime == nil {
			continue
		}
		if ref.BlockTime.Before(from) || ref.BlockTime.After(to) {
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

// FetchResult carries the records for successfully fetched signatures
// and the side list of per-signature failures.
type FetchResult struct {
	Records []TransactionRecord
	Skipped []FetchFailure
}

// ProgressFunc is called after each fetch batch completes.
type ProgressFunc func(batch, batches, processed, total int)

// FetchTransactionsParams bounds a detail fetch run.
type FetchTransactionsParams struct {
	Wallet     solana.PublicKey
	Signatures []SignatureRef
	OnBatch    ProgressFunc // may be nil
}

// FetchTransactions retrieves full details for the given signatures in
// fixed-size batches with two-tier pacing: a short delay after every
// detail call and a longer delay after every batch. A failed detail
// fetch is logged and recorded as skipped; it never aborts the run.
func (c *Client) FetchTransactions(ctx context.Context, params FetchTransactionsParams) (*FetchResult, error) {
	result := &FetchResult{}
	total := len(params.Signatures)
	if total == 0 {
		return result, nil
	}

	batches := (total + c.batchSize - 1) / c.batchSize
	processed := 0

	for bi := 0; bi < batches; bi++ {
		lo := bi * c.batchSize
		hi := min(lo+c.batchSize, total)

		for _, ref := range params.Signatures[lo:hi] {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			record, err := c.fetchOne(ctx, ref)
			processed++
			if err != nil {
				c.logger.WarnContext(ctx, "failed to fetch transaction, skipping",
					"signature", ref.Signature.String(),
					"error", err,
				)
				if c.metrics != nil {
					c.metrics.RecordTransactionsSkipped(params.Wallet.String(), "fetch_error", 1)
				}
				result.Skipped = append(result.Skipped, FetchFailure{
					Signature: ref.Signature.String(),
					Err:       err.Error(),
				})
			} else {
				if c.metrics != nil {
					c.metrics.RecordTransactionsFetched(params.Wallet.String(), 1)
				}
				c.logger.DebugContext(ctx, "fetched transaction",
					"signature", record.Signature,
					"fee_lamports", record.FeeLamports,
					"success", record.Success,
					"timestamp", record.Timestamp,
				)
				result.Records = append(result.Records, *record)
			}

			c.sleep(c.fetchDelay)
		}

		pct := float64(processed) / float64(total) * 100
		c.logger.InfoContext(ctx, "batch complete",
			"batch", bi+1,
			"batches", batches,
			"processed", processed,
			"total", total,
			"pct", math.Round(pct),
		)
		if params.OnBatch != nil {
			params.OnBatch(bi+1, batches, processed, total)
		}

		c.sleep(c.batchDelay)
	}

	c.logger.InfoContext(ctx, "fetched transaction details",
		"wallet", params.Wallet.String(),
		"fetched", len(result.Records),
		"skipped", len(result.Skipped),
	)

	return result, nil
}

// fetchOne retrieves and converts a single transaction detail.
func (c *Client) fetchOne(ctx context.Context, ref SignatureRef) (*TransactionRecord, error) {
	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &[]uint64{0}[0],
	}

	start := time.Now()
	result, err := c.rpc.GetTransaction(ctx, ref.Signature, opts)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetTransaction", status, c.endpoint, duration)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return recordFromResult(ref, result)
}
