package printshop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// StaticRepository serves one fixtures document until it is replaced.
type StaticRepository struct {
	doc atomic.Pointer[Fixtures]
}

// NewStaticRepository returns a repository serving the provided fixtures. A
// nil document falls back to DefaultFixtures.
func NewStaticRepository(doc *Fixtures) *StaticRepository {
	if doc == nil {
		doc = DefaultFixtures()
	}
	repo := &StaticRepository{}
	repo.doc.Store(doc)
	return repo
}

// Replace swaps the served document after validating it. Readers see either
// the old or the new document, never a mix.
func (s *StaticRepository) Replace(doc *Fixtures) error {
	if doc == nil {
		return errors.New("printshop: fixtures document is required")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	s.doc.Store(doc)
	return nil
}

func (s *StaticRepository) Metrics(context.Context) (DashboardMetrics, error) {
	return s.doc.Load().Metrics, nil
}

func (s *StaticRepository) DetailedStats(context.Context) (DetailedStats, error) {
	return s.doc.Load().Stats, nil
}

func (s *StaticRepository) PendingTasks(context.Context) ([]PrintTask, error) {
	return cloneTasks(s.doc.Load().Pending), nil
}

func (s *StaticRepository) CompletedTasks(context.Context) ([]PrintTask, error) {
	return cloneTasks(s.doc.Load().Completed), nil
}

func (s *StaticRepository) Series(_ context.Context, key string) (ChartSeries, error) {
	series, ok := s.doc.Load().series(key)
	if !ok {
		return ChartSeries{}, fmt.Errorf("printshop: series %s not found", key)
	}
	series.Points = append([]ChartPoint(nil), series.Points...)
	return series, nil
}

func cloneTasks(tasks []PrintTask) []PrintTask {
	out := make([]PrintTask, len(tasks))
	copy(out, tasks)
	return out
}
