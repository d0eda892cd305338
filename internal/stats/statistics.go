package stats

import "fmt"

// Statistics tallies the outcome of one copy or verification scope.
//
// A Statistics value has a single owner: the goroutine walking a tree or
// verifying a root. Scopes are combined with Add after their owner has
// finished, so no counter is ever shared between goroutines.
type Statistics struct {
	BytesRead    int64
	FilesRead    int64
	Matches      int64
	Mismatches   int64
	Errors       int64
	FilesSkipped int64
	DirsCreated  int64
}

// Add folds other into s. Addition is commutative and associative, so the
// order in which scopes finish does not matter.
func (s *Statistics) Add(other Statistics) {
	s.BytesRead += other.BytesRead
	s.FilesRead += other.FilesRead
	s.Matches += other.Matches
	s.Mismatches += other.Mismatches
	s.Errors += other.Errors
	s.FilesSkipped += other.FilesSkipped
	s.DirsCreated += other.DirsCreated
}

// Merge sums any number of scopes.
func Merge(scopes ...Statistics) Statistics {
	var total Statistics
	for _, s := range scopes {
		total.Add(s)
	}
	return total
}

// Failed reports whether any error or mismatch was recorded.
func (s Statistics) Failed() bool {
	return s.Errors > 0 || s.Mismatches > 0
}

func (s Statistics) String() string {
	return fmt.Sprintf(
		"bytes=%d files=%d matches=%d mismatches=%d errors=%d skipped=%d dirs=%d",
		s.BytesRead, s.FilesRead, s.Matches, s.Mismatches, s.Errors,
		s.FilesSkipped, s.DirsCreated,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
