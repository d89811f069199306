package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/itchyny/gojq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/sergeytimoshin/tx-fee-analyzer/service/analyzer"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/config"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/metrics"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/report"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/solana"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"run"},
		Usage:     "Analyze transaction fees for a wallet over a trailing time window",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "hours",
				Aliases: []string{"n"},
				Value:   24,
				Usage:   "How many hours to look back from now",
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Aliases: []string{"u"},
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for generated report files",
				EnvVars: []string{"OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address for the duration of the run (e.g. :9090)",
				EnvVars: []string{"METRICS_ADDR"},
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Print the analysis as JSON instead of writing report files",
			},
			&cli.StringSliceFlag{
				Name:  "jq",
				Usage: "jq expression applied to the JSON output (can be specified multiple times; implies --json)",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("wallet address is required")
	}
	address := c.Args().Get(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	hours := c.Int("hours")
	jqFilters := c.StringSlice("jq")
	jsonOutput := c.Bool("json") || len(jqFilters) > 0

	logger := setupLogger(cfg.LogLevel)

	var m *metrics.Metrics
	if addr := c.String("metrics-addr"); addr != "" {
		registry := prometheus.NewRegistry()
		m = metrics.NewMetrics(registry)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", addr)
	}

	rpcClient := solana.NewRPCClient(cfg.RPCURL)
	clientOpts := []solana.ClientOption{
		solana.WithPageLimit(cfg.PageLimit),
		solana.WithBatchSize(cfg.BatchSize),
		solana.WithPageDelay(cfg.PageDelay),
		solana.WithFetchDelay(cfg.FetchDelay),
		solana.WithBatchDelay(cfg.BatchDelay),
	}
	if m != nil {
		clientOpts = append(clientOpts, solana.WithMetrics(m))
	}
	client := solana.NewClient(rpcClient, cfg.RPCURL, logger, clientOpts...)
	a := analyzer.NewAnalyzer(client, logger)

	if !jsonOutput {
		fmt.Printf("Starting analysis for wallet: %s\n", address)
	}

	// Progress goes to stderr so JSON output stays machine-parsable.
	onBatch := func(batch, batches, processed, total int) {
		pct := 0.0
		if total > 0 {
			pct = float64(processed) / float64(total) * 100
		}
		fmt.Fprintf(os.Stderr, "Batch %d/%d complete. Total progress: %d/%d transactions (%.0f%%)\n",
			batch, batches, processed, total, pct)
	}

	start := time.Now()
	result, err := a.Run(context.Background(), analyzer.RunParams{
		WalletAddress: address,
		LookbackHours: hours,
		OnBatch:       onBatch,
	})
	if err != nil {
		if m != nil {
			m.RecordAnalysisDuration(address, "error", time.Since(start).Seconds())
		}
		return fmt.Errorf("error during analysis: %w", err)
	}
	if m != nil {
		m.RecordAnalysisDuration(address, "success", time.Since(start).Seconds())
	}

	if jsonOutput {
		return printJSON(result, jqFilters)
	}

	reporter := newReporter(cfg.OutputDir, logger, m)
	reporter.WriteConsoleSummary(result)

	// A failed file write is reported but never discards the computed
	// analysis or the sibling file.
	if path, err := reporter.WriteTransactionsCSV(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving transaction data: %v\n", err)
	} else {
		fmt.Printf("Transaction data saved to %s\n", path)
	}

	if path, err := reporter.WriteTimeSeries(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating time series analysis: %v\n", err)
	} else {
		fmt.Printf("Time series analysis saved to %s\n", path)
	}

	return nil
}

func newReporter(outputDir string, logger *slog.Logger, m *metrics.Metrics) *report.Reporter {
	opts := []report.Option{}
	if m != nil {
		opts = append(opts, report.WithMetrics(m))
	}
	return report.NewReporter(outputDir, logger, opts...)
}

// printJSON marshals the result, optionally piping it through jq filters.
// Each jq result value is printed on its own line.
func printJSON(result *analyzer.Result, jqFilters []string) error {
	if len(jqFilters) == 0 {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	// gojq operates on the generic JSON form, so round-trip the result
	// through encoding/json first.
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	for _, filter := range jqFilters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		code, err := gojq.Compile(query)
		if err != nil {
			return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}

		iter := code.Run(doc)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				return fmt.Errorf("jq filter %q failed: %w", filter, err)
			}
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal jq result: %w", err)
			}
			fmt.Println(string(data))
		}
	}

	return nil
}
