package ui

import (
	"fmt"
	"time"

	"github.com/bamsammich/shacopy/internal/stats"
)

// CopySummary builds the final line of a copy run.
// Format: done ✓  files 48,917  size 2.1 GiB  avg 641 MB/s  time 3m 17s  skipped 0  errors 0
func CopySummary(s stats.Statistics, elapsed time.Duration) string {
	return fmt.Sprintf("done %s  files %s  size %s  avg %s  time %s  skipped %s  errors %d",
		icon(s),
		FormatCount(s.FilesRead),
		FormatBytes(s.BytesRead),
		FormatRate(averageRate(s.BytesRead, elapsed)),
		FormatDuration(elapsed),
		FormatCount(s.FilesSkipped),
		s.Errors,
	)
}

// VerifySummary builds the final line of a verification run.
// Format: done ✗  files 1,204  size 88.0 MiB  avg 410 MB/s  time 2s  ok 1,203  mismatches 1  errors 0
func VerifySummary(s stats.Statistics, elapsed time.Duration) string {
	return fmt.Sprintf("done %s  files %s  size %s  avg %s  time %s  ok %s  mismatches %d  errors %d",
		icon(s),
		FormatCount(s.FilesRead),
		FormatBytes(s.BytesRead),
		FormatRate(averageRate(s.BytesRead, elapsed)),
		FormatDuration(elapsed),
		FormatCount(s.Matches),
		s.Mismatches,
		s.Errors,
	)
}

// CopyReport states the elapsed time and the average bandwidth in
// decimal megabytes, for comparison with disk and network ratings.
func CopyReport(bytes int64, elapsed time.Duration) string {
	return fmt.Sprintf("execution time: %.3fs, average bandwidth: %.3f MB/s",
		elapsed.Seconds(), averageRate(bytes, elapsed)/1e6)
}

func icon(s stats.Statistics) string {
	if s.Failed() {
		return "✗"
	}
	return "✓"
}

func averageRate(bytes int64, elapsed time.Duration) float64 {
	if elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(bytes) / elapsed.Seconds()
}
