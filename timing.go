package httprs

import (
	"fmt"
	"io"
	"time"
)

// timer measures one request round trip. The first-byte mark is set when the
// response headers arrive; everything after that counts as download time.
type timer struct {
	start     time.Time
	firstByte time.Time
}

func newTimer() *timer {
	return &timer{start: time.Now()}
}

func (t *timer) markFirstByte() {
	if t.firstByte.IsZero() {
		t.firstByte = time.Now()
	}
}

func (t *timer) summary(now time.Time) (ttfb, download, total time.Duration) {
	total = now.Sub(t.start)
	ttfb = total
	if !t.firstByte.IsZero() {
		ttfb = t.firstByte.Sub(t.start)
	}
	download = total - ttfb
	return ttfb, download, total
}

func (t *timer) printSummary(w io.Writer) {
	ttfb, download, total := t.summary(time.Now())
	fmt.Fprintf(w, "\nElapsed time:\n")
	fmt.Fprintf(w, "  time to first byte: %v\n", ttfb.Round(time.Millisecond))
	fmt.Fprintf(w, "  download: %v\n", download.Round(time.Millisecond))
	fmt.Fprintf(w, "  total: %v\n", total.Round(time.Millisecond))
}
