package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/infrastructure/analysis"
	"mentalwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakeRunner) Run(ctx context.Context) (*entity.AnalysisReport, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.AnalysisReport{Insights: json.RawMessage(`["ok"]`), GeneratedAt: fixedNow}, nil
}

func TestAnalysisServesCacheUnlessRefreshed(t *testing.T) {
	runner := &fakeRunner{}
	cache := &testutil.AnalysisCache{}
	uc := NewAnalysisUsecase(testutil.Logger(), runner, cache, time.Minute)
	ctx := context.Background()

	first, err := uc.Latest(ctx, false)
	require.NoError(t, err)
	assert.JSONEq(t, `["ok"]`, string(first.Insights))
	assert.EqualValues(t, 1, runner.calls.Load())
	assert.Equal(t, 1, cache.Sets())

	cached, err := uc.Latest(ctx, false)
	require.NoError(t, err)
	assert.Same(t, first, cached)
	assert.EqualValues(t, 1, runner.calls.Load())

	_, err = uc.Latest(ctx, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, runner.calls.Load())
	assert.Equal(t, 2, cache.Sets())
}

func TestAnalysisFailureIsNotCached(t *testing.T) {
	runner := &fakeRunner{err: analysis.ErrTimeout}
	cache := &testutil.AnalysisCache{}
	uc := NewAnalysisUsecase(testutil.Logger(), runner, cache, time.Minute)

	_, err := uc.Latest(context.Background(), false)
	assert.True(t, errors.Is(err, analysis.ErrTimeout))
	assert.Zero(t, cache.Sets())
}

func TestAnalysisConcurrentCallersShareOneRun(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	uc := NewAnalysisUsecase(testutil.Logger(), runner, &testutil.AnalysisCache{}, time.Minute)

	const callers = 5
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	reports := make([]*entity.AnalysisReport, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			report, err := uc.Latest(context.Background(), true)
			assert.NoError(t, err)
			reports[i] = report
		}(i)
	}

	started.Wait()
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(runner.release)
	done.Wait()

	assert.EqualValues(t, 1, runner.calls.Load())
	for _, r := range reports {
		assert.Same(t, reports[0], r)
	}
}

func TestAnalysisRunSurvivesCallerCancellation(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	cache := &testutil.AnalysisCache{}
	uc := NewAnalysisUsecase(testutil.Logger(), runner, cache, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := uc.Latest(ctx, false)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(runner.release)

	require.NoError(t, <-errCh)
	assert.Equal(t, 1, cache.Sets())
}
