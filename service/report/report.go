package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sergeytimoshin/tx-fee-analyzer/service/analyzer"
	"github.com/sergeytimoshin/tx-fee-analyzer/service/metrics"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	hourLayout      = "2006-01-02 15:00"
	fileStampLayout = "20060102_150405"
)

// Reporter renders analysis results to the console and to timestamped
// files under the output directory. A failed file write never invalidates
// the in-memory result or a sibling file.
type Reporter struct {
	outputDir string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	out       io.Writer
	now       func() time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput redirects console output, for tests.
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reporter) {
		r.metrics = m
	}
}

// WithClock overrides the wall clock used for file naming, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// NewReporter creates a Reporter writing files under outputDir.
func NewReporter(outputDir string, logger *slog.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		outputDir: outputDir,
		logger:    logger,
		out:       os.Stdout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WriteConsoleSummary prints the run summary.
func (r *Reporter) WriteConsoleSummary(result *analyzer.Result) {
	analysis := &result.Analysis
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "--- SUMMARY ---")
	fmt.Fprintf(r.out, "Total transactions analyzed: %d\n", analysis.TotalTransactions)
	fmt.Fprintf(r.out, "Successful transactions: %d\n", analysis.SuccessfulCount)
	fmt.Fprintf(r.out, "Failed transactions: %d\n", analysis.FailedCount)
	fmt.Fprintf(r.out, "Success rate: %.2f%%\n", analysis.SuccessRate())
	fmt.Fprintf(r.out, "Total fees spent: %d lamports (%s SOL)\n", analysis.TotalFeeLamports, analysis.TotalFeeSOL())
	fmt.Fprintf(r.out, "Average fee per transaction: %.2f lamports\n", analysis.AverageFeeLamports)
	fmt.Fprintf(r.out, "Time period: %s to %s\n",
		analysis.Window.From.Format(timestampLayout),
		analysis.Window.To.Format(timestampLayout),
	)
	fmt.Fprintf(r.out, "Analysis completed in %.2fs\n", result.Elapsed.Seconds())
}

// WriteTransactionsCSV writes the per-transaction rows followed by a
// summary statistics footer, and returns the path of the written file.
func (r *Reporter) WriteTransactionsCSV(result *analyzer.Result) (string, error) {
	analysis := &result.Analysis

	var b strings.Builder
	b.WriteString("timestamp,signature,success,fee_lamports,compute_units\n")
	for _, record := range analysis.Records {
		computeUnits := "N/A"
		if record.ComputeUnits != nil {
			computeUnits = strconv.FormatUint(*record.ComputeUnits, 10)
		}
		fmt.Fprintf(&b, "%s,%s,%t,%d,%s\n",
			record.Timestamp.Format(timestampLayout),
			record.Signature,
			record.Success,
			record.FeeLamports,
			computeUnits,
		)
	}

	b.WriteString("\nSUMMARY STATISTICS\n")
	fmt.Fprintf(&b, "Time period,%s to %s\n",
		analysis.Window.From.Format(timestampLayout),
		analysis.Window.To.Format(timestampLayout),
	)
	fmt.Fprintf(&b, "Total transactions,%d\n", analysis.TotalTransactions)
	fmt.Fprintf(&b, "Successful transactions,%d\n", analysis.SuccessfulCount)
	fmt.Fprintf(&b, "Failed transactions,%d\n", analysis.FailedCount)
	fmt.Fprintf(&b, "Success rate,%%%.2f\n", analysis.SuccessRate())
	fmt.Fprintf(&b, "Total fees (SOL),%s\n", analysis.TotalFeeSOL())
	fmt.Fprintf(&b, "Total fees (lamports),%d\n", analysis.TotalFeeLamports)
	fmt.Fprintf(&b, "Average fee per transaction (lamports),%.2f\n", analysis.AverageFeeLamports)

	filename := fmt.Sprintf("tx_data_%s_%s.csv", result.Wallet, r.now().UTC().Format(fileStampLayout))
	path, err := r.writeFile(filename, b.String())
	if err != nil {
		r.recordReport("transactions_csv", "error")
		return "", fmt.Errorf("failed to save transaction data: %w", err)
	}
	r.recordReport("transactions_csv", "success")
	r.logger.Info("wrote transaction data", "path", path, "records", len(analysis.Records))
	return path, nil
}

// WriteTimeSeries writes the hourly success-rate series plus plotting
// guidance, and returns the path of the written file.
func (r *Reporter) WriteTimeSeries(result *analyzer.Result) (string, error) {
	var b strings.Builder
	b.WriteString("TIME SERIES ANALYSIS BY HOUR\n")
	b.WriteString("hour,successful,total,success_rate\n")
	for _, bucket := range result.Buckets {
		fmt.Fprintf(&b, "%s,%d,%d,%.2f%%\n",
			bucket.Hour.Format(hourLayout),
			bucket.Successful,
			bucket.Total,
			bucket.SuccessRate(),
		)
	}

	b.WriteString("\nTo visualize this data with any plotting tool:\n")
	b.WriteString("1. The CSV data above can be imported into Excel, Google Sheets, or any data analysis tool\n")
	b.WriteString("2. Create a line chart with:\n")
	b.WriteString("   - X-axis: hour\n")
	b.WriteString("   - Y-axis: success_rate\n")
	b.WriteString("3. This will show how the transaction success rate changes over time\n")
	b.WriteString("\nAlternatively, use a tool like Python with matplotlib or R for more advanced analysis.\n")

	filename := fmt.Sprintf("time_series_analysis_%s.txt", r.now().UTC().Format(fileStampLayout))
	path, err := r.writeFile(filename, b.String())
	if err != nil {
		r.recordReport("time_series", "error")
		return "", fmt.Errorf("failed to save time series analysis: %w", err)
	}
	r.recordReport("time_series", "success")
	r.logger.Info("wrote time series analysis", "path", path, "buckets", len(result.Buckets))
	return path, nil
}

func (r *Reporter) writeFile(filename, content string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(r.outputDir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func (r *Reporter) recordReport(kind, status string) {
	if r.metrics != nil {
		r.metrics.RecordReportWritten(kind, status)
	}
}
