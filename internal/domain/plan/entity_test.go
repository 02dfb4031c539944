package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanExpiryFrom(t *testing.T) {
	activation := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("monthly plan expires after 30 days", func(t *testing.T) {
		p := Plan{Duration: DurationMonth}
		expiry := p.ExpiryFrom(activation)
		assert.True(t, expiry.Valid)
		assert.Equal(t, activation.AddDate(0, 0, 30), expiry.Time)
	})

	t.Run("yearly plan expires after 365 days", func(t *testing.T) {
		p := Plan{Duration: DurationYear}
		expiry := p.ExpiryFrom(activation)
		assert.True(t, expiry.Valid)
		assert.Equal(t, activation.AddDate(0, 0, 365), expiry.Time)
	})

	t.Run("lifetime plan never expires", func(t *testing.T) {
		p := Plan{Duration: DurationLifetime}
		expiry := p.ExpiryFrom(activation)
		assert.False(t, expiry.Valid)
	})
}
