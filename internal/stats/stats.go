// Package stats derives the dashboard counters from the task API. The
// server exposes no aggregate endpoint, so the counts come from four
// filtered list queries reduced client-side.
package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
)

// statsLimit approximates "all tasks" for the dashboard scan.
const statsLimit = 1000

// TaskLister is the slice of the API client the service needs.
type TaskLister interface {
	ListTasks(ctx context.Context, q api.TaskQuery) (*api.TaskPage, error)
}

// Service computes dashboard statistics.
type Service struct {
	tasks TaskLister
	now   func() time.Time
}

// New creates a stats service. now may be nil, in which case the wall clock
// is used; tests inject a fixed clock.
func New(tasks TaskLister, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{tasks: tasks, now: now}
}

// Load fetches the four stat queries concurrently and reduces them. If any
// query fails the whole load fails; a missing component is never silently
// treated as zero.
func (s *Service) Load(ctx context.Context) (*models.DashboardStats, error) {
	var all, completed, todo, inProgress *api.TaskPage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = s.tasks.ListTasks(gctx, api.TaskQuery{Page: 1, Limit: statsLimit})
		return err
	})
	g.Go(func() (err error) {
		completed, err = s.tasks.ListTasks(gctx, api.TaskQuery{Status: models.TaskCompleted, Page: 1, Limit: statsLimit})
		return err
	})
	g.Go(func() (err error) {
		todo, err = s.tasks.ListTasks(gctx, api.TaskQuery{Status: models.TaskTodo, Page: 1, Limit: statsLimit})
		return err
	})
	g.Go(func() (err error) {
		inProgress, err = s.tasks.ListTasks(gctx, api.TaskQuery{Status: models.TaskInProgress, Page: 1, Limit: statsLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	overdue := 0
	for _, t := range all.Tasks {
		if t.Overdue(now) {
			overdue++
		}
	}

	return &models.DashboardStats{
		TotalTasks:     len(all.Tasks),
		CompletedTasks: len(completed.Tasks),
		PendingTasks:   len(todo.Tasks) + len(inProgress.Tasks),
		OverdueTasks:   overdue,
	}, nil
}
