// Package group derives the date-bucketed view of a task list.
package group

import (
	"slices"
	"time"

	"dayboard/internal/task"
)

// LabelLayout is the long-date style used for panel headers.
const LabelLayout = "January 2, 2006"

// Group is one calendar day of tasks, most recently added first.
type Group struct {
	Label string
	Day   time.Time
	Tasks []task.Task
}

// ByDate buckets tasks by the calendar day of their creation time in loc.
// Groups come back newest day first; within a day the later position in
// tasks comes first. A task with a malformed date is an error.
func ByDate(tasks []task.Task, loc *time.Location) ([]Group, error) {
	if loc == nil {
		loc = time.UTC
	}
	groups := []Group{}
	index := map[string]int{}
	for i := len(tasks) - 1; i >= 0; i-- {
		created, err := tasks[i].Created()
		if err != nil {
			return nil, err
		}
		day := truncateDay(created.In(loc))
		label := day.Format(LabelLayout)
		gi, ok := index[label]
		if !ok {
			gi = len(groups)
			index[label] = gi
			groups = append(groups, Group{Label: label, Day: day})
		}
		groups[gi].Tasks = append(groups[gi].Tasks, tasks[i])
	}
	slices.SortStableFunc(groups, func(a, b Group) int { return b.Day.Compare(a.Day) })
	return groups, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Counts returns how many tasks are done and pending.
func Counts(tasks []task.Task) (done, pending int) {
	for _, t := range tasks {
		if t.IsDone {
			done++
		} else {
			pending++
		}
	}
	return
}
