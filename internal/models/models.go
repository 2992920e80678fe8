package models

import (
	"fmt"
	"strconv"
	"time"
)

// User is the authenticated account as returned by the server.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Project represents a server-owned project
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Status      ProjectStatus `json:"status"`
	OwnerID     int64         `json:"owner_id,omitempty"`
	CreatedAt   string        `json:"created_at,omitempty"`
	UpdatedAt   string        `json:"updated_at,omitempty"`
	Tasks       []Task        `json:"tasks,omitempty"` // populated on detail queries
}

// Task represents a single task. A task always belongs to exactly one project.
type Task struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	ProjectID    int64        `json:"project_id"`
	AssignedTo   *int64       `json:"assigned_to"`
	DueDate      *string      `json:"due_date"`
	CreatedAt    string       `json:"created_at,omitempty"`
	UpdatedAt    string       `json:"updated_at,omitempty"`
	Project      *Project     `json:"project,omitempty"`
	AssignedUser *User        `json:"assignedUser,omitempty"`
}

// Overdue reports whether the task's due date has passed relative to now
// and the task is not completed. Tasks without a parseable due date are
// never overdue.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskCompleted {
		return false
	}
	due, err := ParseDate(*t.DueDate)
	if err != nil {
		return false
	}
	return due.Before(now)
}

// TeamMember is a user that tasks can be assigned to. Read-only here.
type TeamMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DashboardStats holds the derived dashboard counters. Never persisted.
type DashboardStats struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	OverdueTasks   int
}

// ParseDate accepts the two date formats the server emits: full RFC 3339
// timestamps and bare yyyy-mm-dd dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ParseID converts a UI-side string identifier to the server's numeric form.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// FormatID converts a server identifier back to the UI's string form.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
