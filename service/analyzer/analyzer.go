package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/sergeytimoshin/tx-fee-analyzer/service/fees"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/solana"
)

// GatewayClient is the contract the analyzer needs from the Solana client.
// Defined on the consumer side so tests can swap in a mock.
type GatewayClient interface {
	CollectSignatures(ctx context.Context, params solana.CollectSignaturesParams) ([]solana.SignatureRef, error)
	FetchTransactions(ctx context.Context, params solana.FetchTransactionsParams) (*solana.FetchResult, error)
}

// Analyzer drives one full run: collect signatures, fetch details,
// aggregate into summary and hourly series.
type Analyzer struct {
	client GatewayClient
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an Analyzer using the given gateway client.
func NewAnalyzer(client GatewayClient, logger *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		client: client,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunParams identifies the account and lookback for one analysis run.
type RunParams struct {
	WalletAddress string
	LookbackHours int
	OnBatch       solana.ProgressFunc
}

// Result is the complete output of one run.
type Result struct {
	Wallet   string                `json:"wallet"`
	Analysis fees.Analysis         `json:"analysis"`
	Buckets  []fees.HourlyBucket   `json:"buckets"`
	Skipped  []solana.FetchFailure `json:"skipped,omitempty"`
	Elapsed  time.Duration         `json:"elapsed"`
}

// Run executes one analysis pass. The time window is anchored at the wall
// clock when Run is called. A bad wallet address fails before any network
// call; a non-positive lookback yields an empty result rather than an error.
func (a *Analyzer) Run(ctx context.Context, params RunParams) (*Result, error) {
	wallet, err := solanago.PublicKeyFromBase58(params.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}

	start := a.now()
	to := start.UTC()
	from := to.Add(-time.Duration(params.LookbackHours) * time.Hour)
	window := fees.TimeWindow{From: from, To: to}

	a.logger.InfoContext(ctx, "starting analysis",
		"wallet", params.WalletAddress,
		"lookback_hours", params.LookbackHours,
		"from", from,
		"to", to,
	)

	refs, err := a.client.CollectSignatures(ctx, solana.CollectSignaturesParams{
		Wallet: wallet,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect signatures: %w", err)
	}

	fetched, err := a.client.FetchTransactions(ctx, solana.FetchTransactionsParams{
		Wallet:     wallet,
		Signatures: refs,
		OnBatch:    params.OnBatch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	analysis := fees.Aggregate(fetched.Records, window)
	buckets := fees.HourlySeries(analysis.Records, window)
	elapsed := a.now().Sub(start)

	a.logger.InfoContext(ctx, "analysis complete",
		"wallet", params.WalletAddress,
		"transactions", analysis.TotalTransactions,
		"skipped", len(fetched.Skipped),
		"total_fee_lamports", analysis.TotalFeeLamports,
		"elapsed", elapsed,
	)

	return &Result{
		Wallet:   params.WalletAddress,
		Analysis: analysis,
		Buckets:  buckets,
		Skipped:  fetched.Skipped,
		Elapsed:  elapsed,
	}, nil
}
