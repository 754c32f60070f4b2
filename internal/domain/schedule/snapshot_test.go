//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"atelier-backend/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGuests(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "drops blanks and trims",
			in:   []string{" a@b.fr ", "", "  ", "c@d.fr"},
			want: []string{"a@b.fr", "c@d.fr"},
		},
		{
			name: "deduplicates keeping first occurrence order",
			in:   []string{"a@b.fr", "c@d.fr", "a@b.fr"},
			want: []string{"a@b.fr", "c@d.fr"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.NormalizeGuests(tt.in))
		})
	}
}

func TestAddedGuests(t *testing.T) {
	t.Run("reports additions only", func(t *testing.T) {
		added := schedule.AddedGuests(
			[]string{"a@b.fr", "c@d.fr"},
			[]string{"c@d.fr", "e@f.fr"},
		)
		assert.Equal(t, []string{"e@f.fr"}, added)
	})

	t.Run("removals yield nothing", func(t *testing.T) {
		assert.Empty(t, schedule.AddedGuests([]string{"a@b.fr"}, nil))
	})
}

func TestSnapshotEffectiveEnd(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 4)

	assert.Equal(t, day2, schedule.Snapshot{DueAt: &day1, EndAt: &day2}.EffectiveEnd())
	assert.Equal(t, day1, schedule.Snapshot{DueAt: &day1}.EffectiveEnd())
	assert.True(t, schedule.Snapshot{}.EffectiveEnd().IsZero())
}
