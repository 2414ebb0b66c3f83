package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/RigelNana/gazotheque/pkg/models"
)

// Panel is one overview widget: a single aggregate fetch with manual refresh.
// A failed fetch keeps the error for inline display until the next refresh.
// Panels are shared by every request; concurrent fetches are merged and a
// caller that goes away never leaves its cancellation behind as the state.
type Panel[T any] struct {
	fetch  func(ctx context.Context) (T, error)
	flight shared[T]

	mu        sync.RWMutex
	data      T
	err       error
	loaded    bool
	fetchedAt time.Time
}

func NewPanel[T any](fetch func(ctx context.Context) (T, error)) *Panel[T] {
	return &Panel[T]{fetch: fetch}
}

// PanelState is what the widget renders.
type PanelState[T any] struct {
	Data      T
	Err       error
	FetchedAt time.Time
}

// Get returns the last result, fetching once if the panel was never loaded.
func (p *Panel[T]) Get(ctx context.Context) PanelState[T] {
	p.mu.RLock()
	loaded := p.loaded
	p.mu.RUnlock()
	if !loaded {
		return p.load(ctx, "load")
	}
	return p.state()
}

// Refresh repeats the fetch. Refreshes running at the same time share it.
func (p *Panel[T]) Refresh(ctx context.Context) PanelState[T] {
	return p.load(ctx, "refresh")
}

func (p *Panel[T]) load(ctx context.Context, kind string) PanelState[T] {
	data, err := p.flight.do(ctx, kind, p.fetch, p.store)
	if isContextErr(err) {
		return PanelState[T]{Err: err}
	}
	p.mu.RLock()
	loaded := p.loaded
	p.mu.RUnlock()
	if !loaded {
		// Not stored; report this fetch.
		return PanelState[T]{Data: data, Err: err, FetchedAt: time.Now()}
	}
	return p.state()
}

func (p *Panel[T]) store(data T, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = true
	p.err = err
	if err == nil {
		p.data = data
		p.fetchedAt = time.Now()
	}
}

func (p *Panel[T]) state() PanelState[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PanelState[T]{Data: p.data, Err: p.err, FetchedAt: p.fetchedAt}
}

// OverviewSource is the part of the API the overview page reads.
type OverviewSource interface {
	TotalCount(ctx context.Context) (*models.TotalCount, error)
	CountByLab(ctx context.Context) (models.LabCounts, error)
	BarChart(ctx context.Context) (*models.BarChart, error)
}

// Overview groups the dashboard home widgets.
type Overview struct {
	Total      *Panel[*models.TotalCount]
	LabCounts  *Panel[models.LabCounts]
	YearlyBars *Panel[*models.BarChart]
}

func NewOverview(src OverviewSource) *Overview {
	return &Overview{
		Total:      NewPanel(src.TotalCount),
		LabCounts:  NewPanel(src.CountByLab),
		YearlyBars: NewPanel(src.BarChart),
	}
}
