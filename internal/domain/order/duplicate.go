package order

import (
	"bytes"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// DuplicateDetector flags submissions whose content was probably already
// placed recently. It only observes: identical payloads still produce
// distinct orders.
//
// Two bloom filter generations are kept. The current one is rotated into the
// previous slot every window, so a fingerprint is remembered for at least one
// and at most two windows.
type DuplicateDetector struct {
	capacity uint
	fpr      float64
	window   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	current  *bloom.BloomFilter
	previous *bloom.BloomFilter
	rotated  time.Time
}

// NewDuplicateDetector sizes each generation for capacity fingerprints at
// false positive rate fpr.
func NewDuplicateDetector(capacity uint, fpr float64, window time.Duration) *DuplicateDetector {
	d := &DuplicateDetector{
		capacity: capacity,
		fpr:      fpr,
		window:   window,
		now:      time.Now,
	}
	d.current = bloom.NewWithEstimates(capacity, fpr)
	d.rotated = d.now()
	return d
}

// Observe records the fingerprint of draft and reports whether it was
// probably seen before.
func (d *DuplicateDetector) Observe(draft Draft) bool {
	fp := fingerprint(draft)

	d.mu.Lock()
	defer d.mu.Unlock()

	if now := d.now(); d.window > 0 && now.Sub(d.rotated) >= d.window {
		d.previous = d.current
		d.current = bloom.NewWithEstimates(d.capacity, d.fpr)
		d.rotated = now
	}

	seen := d.previous != nil && d.previous.Test(fp)
	if d.current.TestAndAdd(fp) {
		seen = true
	}
	return seen
}

func fingerprint(d Draft) []byte {
	var b bytes.Buffer
	b.WriteString(d.Address)
	b.WriteByte(0)
	b.WriteString(d.Phone)
	b.WriteByte(0)
	if d.Note != nil {
		b.WriteString(*d.Note)
	}
	b.WriteByte(0)
	b.Write(MarshalItems(d.Items))
	b.WriteByte(0)
	b.WriteString(d.Total.String())
	return b.Bytes()
}
