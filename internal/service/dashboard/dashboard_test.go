package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemportal/internal/domain"
)

type fakeRunner struct {
	mu       sync.Mutex
	calls    []string
	fail     map[string]error
	delay    map[string]time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeRunner) Execute(ctx context.Context, _ string, name string) (*domain.QueryResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if d := f.delay[name]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	return &domain.QueryResult{Columns: []string{"metric"}, Rows: [][]interface{}{{name}}, RowCount: 1}, nil
}

func TestRun_PreservesRequestOrder(t *testing.T) {
	runner := &fakeRunner{delay: map[string]time.Duration{"a": 30 * time.Millisecond, "b": 10 * time.Millisecond}}
	svc := NewService(runner, 0, slog.New(slog.DiscardHandler))

	panels, err := svc.Run(context.Background(), "alice", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, panels, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, panels[i].Metric)
		assert.Equal(t, name, panels[i].Result.Rows[0][0])
	}
}

func TestRun_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	runner := &fakeRunner{
		fail:  map[string]error{"bad": boom},
		delay: map[string]time.Duration{"slow": 5 * time.Second},
	}
	svc := NewService(runner, 2, nil)

	start := time.Now()
	_, err := svc.Run(context.Background(), "alice", []string{"slow", "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `metric "bad"`)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRun_BoundedParallelism(t *testing.T) {
	runner := &fakeRunner{delay: map[string]time.Duration{}}
	names := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	for _, n := range names {
		runner.delay[n] = 20 * time.Millisecond
	}
	svc := NewService(runner, 2, nil)

	_, err := svc.Run(context.Background(), "", names)
	require.NoError(t, err)
	assert.LessOrEqual(t, runner.peak.Load(), int32(2))
	assert.Len(t, runner.calls, len(names))
}

func TestRun_RequiresMetrics(t *testing.T) {
	svc := NewService(&fakeRunner{}, 0, nil)
	_, err := svc.Run(context.Background(), "", nil)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
}
