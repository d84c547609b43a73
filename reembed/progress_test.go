package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports at intervals", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()

		tracker.Update(5)
		assert.Empty(t, buf.String(), "below the report interval")

		tracker.Update(15)
		assert.Contains(t, buf.String(), "15/100")
	})

	t.Run("finish reports full progress", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 50, 100)
		tracker.Start()
		tracker.Update(20)
		tracker.Finish()

		output := buf.String()
		assert.Contains(t, output, "50/50")
		assert.Contains(t, output, "100.0%")
		assert.True(t, strings.HasSuffix(output, "\n"))
	})

	t.Run("increment accumulates", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 30, 10)
		tracker.Start()

		tracker.Increment(6)
		tracker.Increment(6)
		assert.Contains(t, buf.String(), "12/30")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 10, 1)
		tracker.Start()

		tracker.Update(25)
		assert.Contains(t, buf.String(), "10/10")
	})

	t.Run("ignores updates before start", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 10, 1)

		tracker.Update(5)
		tracker.Finish()
		assert.Empty(t, buf.String())
	})

	t.Run("elapsed is zero before start", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 10, 1)
		require.Zero(t, tracker.Elapsed())
	})
}
