//go:build unit

package rental_test

import (
	"testing"
	"time"

	"atelier-backend/internal/domain/rental"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceCalculator(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	calc := rental.NewPriceCalculator(paris)

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, paris)
	}

	t.Run("open rental is unpriced", func(t *testing.T) {
		assert.Equal(t, int64(0), calc.PriceCents(date(2026, 1, 1), nil, 1000, true, 500))
	})

	t.Run("both endpoint days are charged", func(t *testing.T) {
		end := date(2026, 1, 3)
		assert.Equal(t, int64(3000), calc.PriceCents(date(2026, 1, 1), &end, 1000, false, 0))
	})

	t.Run("same day rental is one day", func(t *testing.T) {
		end := date(2026, 1, 1)
		assert.Equal(t, int64(1000), calc.PriceCents(date(2026, 1, 1), &end, 1000, false, 0))
	})

	t.Run("shipping adds the flat fee once", func(t *testing.T) {
		end := date(2026, 1, 3)
		assert.Equal(t, int64(3500), calc.PriceCents(date(2026, 1, 1), &end, 1000, true, 500))
		assert.Equal(t, int64(3000), calc.PriceCents(date(2026, 1, 1), &end, 1000, false, 500))
	})

	t.Run("time of day does not change the count", func(t *testing.T) {
		start := time.Date(2026, 1, 1, 23, 30, 0, 0, paris)
		end := time.Date(2026, 1, 2, 0, 15, 0, 0, paris)
		assert.Equal(t, int64(2000), calc.PriceCents(start, &end, 1000, false, 0))
	})

	t.Run("spring DST transition does not lose a day", func(t *testing.T) {
		// Paris switches to summer time on 2026-03-29; that day has 23 hours.
		end := date(2026, 3, 31)
		assert.Equal(t, int64(4000), calc.PriceCents(date(2026, 3, 28), &end, 1000, false, 0))
	})

	t.Run("zero rate rentals cost only shipping", func(t *testing.T) {
		end := date(2026, 1, 5)
		assert.Equal(t, int64(500), calc.PriceCents(date(2026, 1, 1), &end, 0, true, 500))
	})
}
