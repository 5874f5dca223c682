package order

import (
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateDetector_Observe(t *testing.T) {
	d := NewDuplicateDetector(1000, 0.0001, time.Hour)
	draft, err := NewValidator(DefaultRules()).Validate(validSubmission())
	if err != nil {
		t.Fatal(err)
	}

	assert.False(t, d.Observe(draft), "first sighting")
	assert.True(t, d.Observe(draft), "second sighting")

	other := draft
	other.Note = pointer.To("leave at the door")
	assert.False(t, d.Observe(other), "different note")
}

func TestDuplicateDetector_ForgetsAfterTwoWindows(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	d := NewDuplicateDetector(1000, 0.0001, time.Minute)
	d.now = func() time.Time { return now }
	d.rotated = now

	draft, err := NewValidator(DefaultRules()).Validate(validSubmission())
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, d.Observe(draft))

	// One rotation later the fingerprint lives in the previous generation.
	now = now.Add(time.Minute)
	assert.True(t, d.Observe(draft))

	// Observing again re-adds it to the current generation, so skip two
	// windows to drop it entirely.
	now = now.Add(2 * time.Minute)
	d.Observe(Draft{Address: "unrelated"})
	now = now.Add(time.Minute)
	assert.False(t, d.Observe(draft))
}
