package emailqueue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/emailqueue/pkg/emailqueue"
)

func TestStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range []emailqueue.Status{
		emailqueue.StatusQueued,
		emailqueue.StatusInProgress,
		emailqueue.StatusSent,
		emailqueue.StatusFailed,
	} {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, emailqueue.Status("pending").Valid())
	assert.False(t, emailqueue.Status("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, emailqueue.StatusQueued.Terminal())
	assert.False(t, emailqueue.StatusInProgress.Terminal())
	assert.True(t, emailqueue.StatusSent.Terminal())
	assert.True(t, emailqueue.StatusFailed.Terminal())
}

func TestMessageDue(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name     string
		status   emailqueue.Status
		schedule time.Time
		want     bool
	}{
		{"queued and past schedule", emailqueue.StatusQueued, now.Add(-time.Minute), true},
		{"queued exactly at schedule", emailqueue.StatusQueued, now, true},
		{"queued but scheduled later", emailqueue.StatusQueued, now.Add(time.Hour), false},
		{"in progress", emailqueue.StatusInProgress, now.Add(-time.Minute), false},
		{"sent", emailqueue.StatusSent, now.Add(-time.Minute), false},
		{"failed", emailqueue.StatusFailed, now.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := emailqueue.Message{Status: tt.status, SendingSchedule: tt.schedule}
			assert.Equal(t, tt.want, msg.Due(now))
		})
	}
}
