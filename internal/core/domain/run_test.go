package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun_Duration(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	running := Run{StartedAt: start}
	assert.Zero(t, running.Duration())

	done := Run{StartedAt: start, FinishedAt: start.Add(42 * time.Second)}
	assert.Equal(t, 42*time.Second, done.Duration())
}
