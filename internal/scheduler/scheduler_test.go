package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nba_stats/ingestion/internal/ingest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu     sync.Mutex
	scopes []ingest.Scope
	err    error
}

func (r *fakeRunner) Run(ctx context.Context, scope ingest.Scope) (*ingest.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scopes = append(r.scopes, scope)
	if r.err != nil {
		return nil, r.err
	}
	return &ingest.Summary{RunID: uuid.New(), Scope: scope}, nil
}

func (r *fakeRunner) runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes)
}

func yesterday(now time.Time) ingest.Scope {
	return ingest.DateScope(now.AddDate(0, 0, -1), "")
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a cron spec", &fakeRunner{}, yesterday)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule daily load")
}

func TestScheduler_RunNow(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler("0 6 * * *", runner, yesterday)

	require.NoError(t, s.RunNow(context.Background()))

	require.Len(t, runner.scopes, 1)
	assert.Equal(t, ingest.ScopeDate, runner.scopes[0].Kind)
	assert.False(t, s.LastRun().IsZero())
}

func TestScheduler_RunNowError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("schedule unavailable")}
	s := NewScheduler("0 6 * * *", runner, yesterday)

	err := s.RunNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule unavailable")
	assert.True(t, s.LastRun().IsZero())
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler("@every 1s", runner, yesterday)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
