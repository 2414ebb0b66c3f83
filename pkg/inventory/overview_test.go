package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanelFetchesOnceUntilRefresh(t *testing.T) {
	calls := 0
	p := NewPanel(func(ctx context.Context) (int, error) {
		calls++
		return calls * 10, nil
	})

	assert.Equal(t, 10, p.Get(context.Background()).Data)
	assert.Equal(t, 10, p.Get(context.Background()).Data)
	assert.Equal(t, 1, calls)

	st := p.Refresh(context.Background())
	assert.Equal(t, 20, st.Data)
	assert.NoError(t, st.Err)
	assert.False(t, st.FetchedAt.IsZero())
}

func TestPanelFailureIsShownUntilRetry(t *testing.T) {
	fail := true
	p := NewPanel(func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("unreachable")
		}
		return "ok", nil
	})

	st := p.Get(context.Background())
	assert.EqualError(t, st.Err, "unreachable")
	// no automatic retry
	assert.EqualError(t, p.Get(context.Background()).Err, "unreachable")

	fail = false
	st = p.Refresh(context.Background())
	assert.NoError(t, st.Err)
	assert.Equal(t, "ok", st.Data)
}

func slowPanel(calls *atomic.Int32) *Panel[int] {
	return NewPanel(func(ctx context.Context) (int, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 42, nil
	})
}

func TestPanelConcurrentGetsAllGetData(t *testing.T) {
	var calls atomic.Int32
	p := slowPanel(&calls)

	var wg sync.WaitGroup
	states := make([]PanelState[int], 2)
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = p.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for _, st := range states {
		require.NoError(t, st.Err)
		assert.Equal(t, 42, st.Data)
		assert.False(t, st.FetchedAt.IsZero())
	}
}

func TestPanelCancelledCallerLeavesNoError(t *testing.T) {
	var calls atomic.Int32
	p := slowPanel(&calls)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	st := p.Get(ctx)
	assert.ErrorIs(t, st.Err, context.Canceled)

	st = p.Get(context.Background())
	require.NoError(t, st.Err)
	assert.Equal(t, 42, st.Data)
	assert.EqualValues(t, 1, calls.Load())

	assert.NoError(t, p.Get(context.Background()).Err)
}

func TestPanelDeadlineIsNotStored(t *testing.T) {
	fail := true
	p := NewPanel(func(ctx context.Context) (string, error) {
		if fail {
			return "", context.DeadlineExceeded
		}
		return "ok", nil
	})

	st := p.Get(context.Background())
	assert.ErrorIs(t, st.Err, context.DeadlineExceeded)

	fail = false
	st = p.Get(context.Background())
	require.NoError(t, st.Err, "an unloaded panel fetches again")
	assert.Equal(t, "ok", st.Data)
}

type fakeOverviewSource struct{}

func (fakeOverviewSource) TotalCount(ctx context.Context) (*models.TotalCount, error) {
	return &models.TotalCount{TotalCount: 12, CurrentMonthCount: 2, PercentageDiff: 100, IsPositive: true}, nil
}

func (fakeOverviewSource) CountByLab(ctx context.Context) (models.LabCounts, error) {
	return models.LabCounts{models.LabLIPhy: 5, models.LabIGE: 7}, nil
}

func (fakeOverviewSource) BarChart(ctx context.Context) (*models.BarChart, error) {
	return nil, errors.New("chart endpoint down")
}

func TestOverviewPanelsAreIndependent(t *testing.T) {
	o := NewOverview(fakeOverviewSource{})
	ctx := context.Background()

	assert.Equal(t, 12, o.Total.Get(ctx).Data.TotalCount)
	assert.Equal(t, 7, o.LabCounts.Get(ctx).Data[models.LabIGE])
	assert.Error(t, o.YearlyBars.Get(ctx).Err)
	assert.NoError(t, o.Total.Get(ctx).Err)
}
