package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/shacopy/internal/stats"
)

// DefaultMeterInterval is how often the meter redraws.
const DefaultMeterInterval = 3 * time.Second

const ansiClearLine = "\033[K"

// Meter redraws a single progress line in place, at most once per
// interval. It is not safe for concurrent use; the engine calls Update
// from the goroutine that owns the statistics.
type Meter struct {
	w        io.Writer
	now      func() time.Time
	start    time.Time
	last     time.Time
	interval time.Duration
	width    int
	drawn    bool
}

// NewMeter returns a meter writing to w. A width of zero disables
// truncation.
func NewMeter(w io.Writer, width int) *Meter {
	m := &Meter{w: w, now: time.Now, interval: DefaultMeterInterval, width: width}
	m.start = m.now()
	m.last = m.start
	return m
}

// Update redraws the line if the interval has passed since the last draw.
func (m *Meter) Update(s stats.Statistics) {
	now := m.now()
	if now.Sub(m.last) < m.interval {
		return
	}
	m.last = now
	m.draw(s, now)
}

// Finish ends the progress line so later output starts on a fresh one.
func (m *Meter) Finish() {
	if m.drawn {
		fmt.Fprint(m.w, "\n")
		m.drawn = false
	}
}

func (m *Meter) draw(s stats.Statistics, now time.Time) {
	line := fmt.Sprintf("%s  %s  %s files",
		FormatBytes(s.BytesRead),
		FormatRate(averageRate(s.BytesRead, now.Sub(m.start))),
		FormatCount(s.FilesRead),
	)
	if m.width > 1 && len(line) >= m.width {
		line = line[:m.width-1]
	}
	fmt.Fprintf(m.w, "\r%s%s", ansiClearLine, line)
	m.drawn = true
}
