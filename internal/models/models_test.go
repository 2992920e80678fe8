package models

import (
	"testing"
	"time"
)

func strp(s string) *string { return &s }

func TestTask_Overdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate *string
		status  TaskStatus
		want    bool
	}{
		{"past due, todo", strp("2025-06-01"), TaskTodo, true},
		{"past due, in progress", strp("2025-06-14T09:00:00Z"), TaskInProgress, true},
		{"past due, completed", strp("2025-06-01"), TaskCompleted, false},
		{"future due", strp("2025-07-01"), TaskTodo, false},
		{"no due date", nil, TaskTodo, false},
		{"unparseable due date", strp("soon"), TaskTodo, false},
	}

	for _, test := range tests {
		task := Task{DueDate: test.dueDate, Status: test.status}
		if got := task.Overdue(now); got != test.want {
			t.Errorf("%s: Overdue() = %v, expected %v", test.name, got, test.want)
		}
	}
}

func TestTask_OverdueBoundary(t *testing.T) {
	// A due date exactly at now is not yet overdue
	due := "2025-06-15T12:00:00Z"
	now, _ := time.Parse(time.RFC3339, due)
	task := Task{DueDate: &due, Status: TaskTodo}
	if task.Overdue(now) {
		t.Error("task due exactly now should not be overdue")
	}
	if !task.Overdue(now.Add(time.Second)) {
		t.Error("task should be overdue one second past its due date")
	}
}

func TestParseID_RoundTrip(t *testing.T) {
	for _, s := range []string{"1", "3", "42", "9007199254740993"} {
		id, err := ParseID(s)
		if err != nil {
			t.Fatalf("ParseID(%q) returned error: %v", s, err)
		}
		if got := FormatID(id); got != s {
			t.Errorf("FormatID(ParseID(%q)) = %q", s, got)
		}
	}
}

func TestParseID_Invalid(t *testing.T) {
	for _, s := range []string{"", "abc", "12x", "1.5"} {
		if _, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) should fail", s)
		}
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range TaskStatuses() {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, p := range TaskPriorities() {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	for _, s := range ProjectStatuses() {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if TaskStatus("DONE").Valid() {
		t.Error("DONE is not a valid task status")
	}
	if TaskPriority("CRITICAL").Valid() {
		t.Error("CRITICAL is not a valid task priority")
	}
	if ProjectStatus("ARCHIVED").Valid() {
		t.Error("ARCHIVED is not a valid project status")
	}
}
