package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterDurationStaysWithinClamp(t *testing.T) {
	base := 200 * time.Millisecond
	for i := 0; i < 1000; i++ {
		d := JitterDuration(base)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 500*time.Millisecond)
	}
}
