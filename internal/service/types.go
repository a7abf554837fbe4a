// Package service holds the to-do domain model, the local state store and
// the synchronization logic between local state and the remote store.
package service

import (
	"fmt"
	"strings"
)

// Assignee is the person a task is assigned to. Owned by exactly one Task.
type Assignee struct {
	ID    string
	Name  string
	Email string
}

// Task is a single to-do item inside a List.
type Task struct {
	ID          string
	Name        string
	IsCompleted bool
	AssignedTo  Assignee
}

// List is a named, ordered collection of tasks.
type List struct {
	ID          string
	Name        string
	Description string
	Tasks       []Task
}

// OpenTasks returns the number of tasks not yet completed.
func (l List) OpenTasks() int {
	n := 0
	for _, t := range l.Tasks {
		if !t.IsCompleted {
			n++
		}
	}
	return n
}

// clone deep-copies the task slice so callers never share backing arrays
// with the state store.
func (l List) clone() List {
	out := l
	if l.Tasks != nil {
		out.Tasks = make([]Task, len(l.Tasks))
		copy(out.Tasks, l.Tasks)
	}
	return out
}

// NewTask is a user-submitted task draft.
type NewTask struct {
	Name          string
	Completed     bool
	AssigneeName  string
	AssigneeEmail string
}

// NewList is a user-submitted list draft.
type NewList struct {
	Name        string
	Description string
	Tasks       []NewTask
}

// Validate checks a list draft before anything is sent.
func (n NewList) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: list name required", ErrInvalidDraft)
	}
	for i, t := range n.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks a task draft.
func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: task name required", ErrInvalidDraft)
	}
	return nil
}
