// Package task defines the todo record persisted in the tasks slot.
package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout matches the ISO-8601 timestamps written for every task:
// UTC with millisecond precision.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrEmptyTitle = errors.New("title is required")
	ErrEmptyID    = errors.New("id is required")
	ErrBadDate    = errors.New("malformed task date")
)

// Task is a single todo item. Field names on the wire are fixed.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ID          string `json:"id"`
	Date        string `json:"date"`
	IsDone      bool   `json:"isDone"`
}

// New builds a pending task created at now. The title is trimmed and must
// not be blank.
func New(title, description string, now time.Time) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	return Task{
		Title:       title,
		Description: description,
		ID:          NewID(now),
		Date:        FormatDate(now),
		IsDone:      false,
	}, nil
}

// NewID returns a base-36 millisecond prefix followed by a random suffix.
func NewID(now time.Time) string {
	prefix := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + suffix[:12]
}

// FormatDate renders t the way task dates are stored.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Created parses the task's creation timestamp.
func (t Task) Created() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: task %q: %q", ErrBadDate, t.ID, t.Date)
	}
	return ts, nil
}

// Validate checks the fields every stored task must carry.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.ID == "" {
		return ErrEmptyID
	}
	if _, err := t.Created(); err != nil {
		return err
	}
	return nil
}

// Status returns the label shown on the toggle control.
func (t Task) Status() string {
	if t.IsDone {
		return "Done"
	}
	return "Pending"
}
