package repository

import (
	"testing"
	"time"

	"katalyst-be/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStatusEffects(t *testing.T) {
	first := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	t.Run("first started transition stamps startedAt", func(t *testing.T) {
		app := applyStatusEffects(domain.Application{}, domain.StatusStarted, first)

		assert.True(t, app.HasStarted)
		require.NotNil(t, app.StartedAt)
		assert.Equal(t, first, *app.StartedAt)
		assert.False(t, app.HasCompleted)
		assert.Nil(t, app.CompletedAt)
	})

	t.Run("repeated started keeps the original startedAt", func(t *testing.T) {
		app := applyStatusEffects(domain.Application{}, domain.StatusStarted, first)
		app = applyStatusEffects(app, domain.StatusStarted, second)

		require.NotNil(t, app.StartedAt)
		assert.Equal(t, first, *app.StartedAt)
	})

	t.Run("completed stamps completedAt once", func(t *testing.T) {
		app := applyStatusEffects(domain.Application{}, domain.StatusStarted, first)
		app = applyStatusEffects(app, domain.StatusCompleted, second)
		app = applyStatusEffects(app, domain.StatusCompleted, second.Add(time.Hour))

		assert.True(t, app.HasCompleted)
		require.NotNil(t, app.CompletedAt)
		assert.Equal(t, second, *app.CompletedAt)
		assert.Equal(t, first, *app.StartedAt)
	})

	t.Run("revisiting started after completion changes nothing", func(t *testing.T) {
		app := applyStatusEffects(domain.Application{}, domain.StatusStarted, first)
		app = applyStatusEffects(app, domain.StatusCompleted, second)
		app = applyStatusEffects(app, domain.StatusStarted, second.Add(time.Hour))

		assert.Equal(t, first, *app.StartedAt)
		assert.Equal(t, second, *app.CompletedAt)
	})

	t.Run("dropped leaves the application untouched", func(t *testing.T) {
		app := applyStatusEffects(domain.Application{}, domain.StatusDropped, first)

		assert.False(t, app.HasStarted)
		assert.Nil(t, app.StartedAt)
		assert.False(t, app.HasCompleted)
		assert.Nil(t, app.CompletedAt)
	})
}

func TestBuildLeadFilter(t *testing.T) {
	t.Run("empty filter has no clause", func(t *testing.T) {
		where, args := buildLeadFilter(domain.LeadFilter{})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("conditions accumulate in order", func(t *testing.T) {
		start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		where, args := buildLeadFilter(domain.LeadFilter{
			EventID:   "KAT-20260830-001",
			Status:    domain.StatusStarted,
			College:   "IIT",
			StartDate: &start,
		})

		assert.Contains(t, where, "l.event_id = $1")
		assert.Contains(t, where, "l.status = $2")
		assert.Contains(t, where, "l.student_college ILIKE")
		assert.Contains(t, where, "l.created_at >= $4")
		assert.Equal(t, []interface{}{"KAT-20260830-001", "started", "IIT", start}, args)
	})
}
