package fees

import (
	"time"

	"github.com/sergeytimoshin/tx-fee-analyzer/service/solana"
)

// HourlyBucket counts the transactions whose timestamps fall within the
// hour starting at Hour.
type HourlyBucket struct {
	Hour       time.Time `json:"hour"`
	Successful int       `json:"successful"`
	Total      int       `json:"total"`
}

// SuccessRate returns the bucket's success percentage, 0 for an empty hour.
func (b HourlyBucket) SuccessRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Successful) / float64(b.Total) * 100
}

// HourlySeries buckets records by hour, walking contiguous hour boundaries
// from the earliest record's truncated hour through the hour after the
// window end. Hours with no activity appear as zero buckets so the series
// has no gaps. Zero records produce no series.
func HourlySeries(records []solana.TransactionRecord, window TimeWindow) []HourlyBucket {
	if len(records) == 0 {
		return nil
	}

	type hourCounts struct {
		successful int
		total      int
	}
	byHour := make(map[time.Time]hourCounts)
	first := records[0].Timestamp
	for _, record := range records {
		if record.Timestamp.Before(first) {
			first = record.Timestamp
		}
		hour := record.Timestamp.Truncate(time.Hour)
		counts := byHour[hour]
		counts.total++
		if record.Success {
			counts.successful++
		}
		byHour[hour] = counts
	}

	// The extra hour past the window end covers the partial final hour.
	end := window.To.Truncate(time.Hour).Add(time.Hour)
	var buckets []HourlyBucket
	for hour := first.Truncate(time.Hour); !hour.After(end); hour = hour.Add(time.Hour) {
		counts := byHour[hour]
		buckets = append(buckets, HourlyBucket{
			Hour:       hour,
			Successful: counts.successful,
			Total:      counts.total,
		})
	}
	return buckets
}
