package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
)

func strp(s string) *string { return &s }

// fakeLister answers each status filter with a canned page.
type fakeLister struct {
	pages   map[models.TaskStatus]*api.TaskPage
	failAll bool
	queries []api.TaskQuery
}

func (f *fakeLister) ListTasks(ctx context.Context, q api.TaskQuery) (*api.TaskPage, error) {
	f.queries = append(f.queries, q)
	if q.Status == "" && f.failAll {
		return nil, errors.New("boom")
	}
	page, ok := f.pages[q.Status]
	if !ok {
		return &api.TaskPage{TotalPages: 1, CurrentPage: 1}, nil
	}
	return page, nil
}

func TestService_Load(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	all := &api.TaskPage{Tasks: []models.Task{
		{ID: 1, Status: models.TaskTodo, DueDate: strp("2025-06-01")},       // overdue
		{ID: 2, Status: models.TaskInProgress, DueDate: strp("2025-06-10")}, // overdue
		{ID: 3, Status: models.TaskCompleted, DueDate: strp("2025-06-01")},  // completed, not overdue
		{ID: 4, Status: models.TaskTodo, DueDate: strp("2025-07-01")},       // future
		{ID: 5, Status: models.TaskTodo},                                    // no due date
	}}
	lister := &fakeLister{pages: map[models.TaskStatus]*api.TaskPage{
		"":                      all,
		models.TaskCompleted:    {Tasks: []models.Task{{ID: 3}}},
		models.TaskTodo:         {Tasks: []models.Task{{ID: 1}, {ID: 4}, {ID: 5}}},
		models.TaskInProgress:   {Tasks: []models.Task{{ID: 2}}},
	}}

	svc := New(lister, func() time.Time { return now })
	stats, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if stats.TotalTasks != 5 {
		t.Errorf("TotalTasks = %d", stats.TotalTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("CompletedTasks = %d", stats.CompletedTasks)
	}
	if stats.PendingTasks != 4 {
		t.Errorf("PendingTasks = %d, expected todo+in_progress", stats.PendingTasks)
	}
	if stats.OverdueTasks != 2 {
		t.Errorf("OverdueTasks = %d", stats.OverdueTasks)
	}

	if len(lister.queries) != 4 {
		t.Errorf("expected 4 queries, got %d", len(lister.queries))
	}
}

func TestService_LoadFailsWhole(t *testing.T) {
	lister := &fakeLister{failAll: true, pages: map[models.TaskStatus]*api.TaskPage{}}
	svc := New(lister, nil)

	stats, err := svc.Load(context.Background())
	if err == nil {
		t.Fatal("a failing component query must fail the whole load")
	}
	if stats != nil {
		t.Errorf("no stats may be returned on partial failure, got %+v", stats)
	}
}
