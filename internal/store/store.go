// Package store owns the task collection and mirrors it into a KV slot
// after every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"dayboard/internal/storage"
	"dayboard/internal/task"
)

// SlotKey is the single key the whole collection is stored under.
const SlotKey = "tasks"

var ErrNotFound = errors.New("task not found")

// Store holds tasks in insertion order. It has a single writer and no locking.
type Store struct {
	kv     storage.KV
	tasks  []task.Task
	now    func() time.Time
	logger *log.Logger
}

type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns an empty store backed by kv. Call Load to read persisted tasks.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one. A missing,
// unreadable or malformed slot yields an empty collection.
func (s *Store) Load() []task.Task {
	s.tasks = s.readSlot()
	return s.Tasks()
}

func (s *Store) readSlot() []task.Task {
	raw, ok, err := s.kv.Get(SlotKey)
	if err != nil {
		s.logger.Warn("tasks slot unreadable, starting empty", "err", err)
		return []task.Task{}
	}
	if !ok || raw == "" {
		return []task.Task{}
	}
	var tasks []task.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		s.logger.Warn("tasks slot malformed, starting empty", "err", err)
		return []task.Task{}
	}
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			s.logger.Warn("tasks slot holds an invalid task, starting empty", "id", t.ID, "err", err)
			return []task.Task{}
		}
		if _, dup := seen[t.ID]; dup {
			s.logger.Warn("tasks slot holds a duplicate id, starting empty", "id", t.ID)
			return []task.Task{}
		}
		seen[t.ID] = struct{}{}
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []task.Task {
	return slices.Clone(s.tasks)
}

func (s *Store) Len() int {
	return len(s.tasks)
}

// Get looks a task up by id.
func (s *Store) Get(id string) (task.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// Find resolves an exact id or a unique id prefix.
func (s *Store) Find(ref string) (task.Task, error) {
	if t, ok := s.Get(ref); ok {
		return t, nil
	}
	var match []task.Task
	for _, t := range s.tasks {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return task.Task{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	default:
		return task.Task{}, fmt.Errorf("ambiguous id %q matches %d tasks", ref, len(match))
	}
}

// Add appends a new pending task and persists the collection. A blank title
// returns task.ErrEmptyTitle and changes nothing.
func (s *Store) Add(title, description string) (task.Task, error) {
	t, err := task.New(title, description, s.now())
	if err != nil {
		return task.Task{}, err
	}
	for s.index(t.ID) >= 0 {
		t.ID = task.NewID(s.now())
	}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("task added", "id", t.ID)
	return t, s.Persist()
}

// Toggle flips IsDone on the task with id. Unknown ids are ignored.
func (s *Store) Toggle(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].IsDone = !s.tasks[i].IsDone
	s.logger.Debug("task toggled", "id", id, "done", s.tasks[i].IsDone)
	return s.Persist()
}

// Delete removes the task with id. Unknown ids are ignored.
func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.logger.Debug("task deleted", "id", id)
	return s.Persist()
}

// Persist overwrites the slot with the full collection.
func (s *Store) Persist() error {
	tasks := s.tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(SlotKey, string(b)); err != nil {
		s.logger.Error("persist failed", "err", err)
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}
