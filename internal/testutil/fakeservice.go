// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"todolists/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Ids are generated sequentially. Like the real service, a failing call
// leaves the lists untouched.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.List
	nextID int

	// Error injection for testing
	LoadErr       error
	AddListErr    error
	AddTaskErr    error
	EditTaskErr   error
	DeleteTaskErr error
	DeleteListErr error

	// LoadCalls counts Load invocations.
	LoadCalls int
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1}
}

func (f *FakeService) newID() string {
	id := fmt.Sprintf("%d", f.nextID)
	f.nextID++
	return id
}

// Seed adds a list with the given tasks, assigning ids to everything, and
// returns the stored list.
func (f *FakeService) Seed(name string, tasks ...service.Task) service.List {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := service.List{ID: f.newID(), Name: name, Tasks: []service.Task{}}
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = f.newID()
		}
		if (t.AssignedTo.Name != "" || t.AssignedTo.Email != "") && t.AssignedTo.ID == "" {
			t.AssignedTo.ID = f.newID()
		}
		list.Tasks = append(list.Tasks, t)
	}
	f.lists = append(f.lists, list)
	return list
}

// Load implements service.Service.
func (f *FakeService) Load(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadCalls++
	return f.LoadErr
}

// Lists implements service.Service.
func (f *FakeService) Lists() []service.List {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.List, len(f.lists))
	for i, l := range f.lists {
		result[i] = l
		result[i].Tasks = append([]service.Task{}, l.Tasks...)
	}
	return result
}

// ResolveList implements service.Service.
func (f *FakeService) ResolveList(name string) (service.List, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	nameLower := strings.ToLower(strings.TrimSpace(name))
	var matches []service.List
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.List{}, fmt.Errorf("%w: %s", service.ErrListNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.List{}, fmt.Errorf("%w: %s", service.ErrAmbiguousList, name)
	}
}

// AddList implements service.Service.
func (f *FakeService) AddList(ctx context.Context, draft service.NewList) (service.List, error) {
	if err := draft.Validate(); err != nil {
		return service.List{}, err
	}
	if f.AddListErr != nil {
		return service.List{}, f.AddListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	list := service.List{ID: f.newID(), Name: draft.Name, Description: draft.Description, Tasks: []service.Task{}}
	for _, t := range draft.Tasks {
		list.Tasks = append(list.Tasks, f.taskFromDraft(t))
	}
	f.lists = append(f.lists, list)
	return list, nil
}

func (f *FakeService) taskFromDraft(d service.NewTask) service.Task {
	t := service.Task{ID: f.newID(), Name: d.Name, IsCompleted: d.Completed}
	if d.AssigneeName != "" || d.AssigneeEmail != "" {
		t.AssignedTo = service.Assignee{ID: f.newID(), Name: d.AssigneeName, Email: d.AssigneeEmail}
	}
	return t
}

// AddTask implements service.Service.
func (f *FakeService) AddTask(ctx context.Context, listID string, draft service.NewTask) (service.Task, error) {
	if err := draft.Validate(); err != nil {
		return service.Task{}, err
	}
	if f.AddTaskErr != nil {
		return service.Task{}, f.AddTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.lists {
		if f.lists[i].ID == listID {
			t := f.taskFromDraft(draft)
			f.lists[i].Tasks = append(f.lists[i].Tasks, t)
			return t, nil
		}
	}
	return service.Task{}, fmt.Errorf("%w: %s", service.ErrListNotFound, listID)
}

// EditTask implements service.Service.
func (f *FakeService) EditTask(ctx context.Context, task service.Task) (service.Task, error) {
	if strings.TrimSpace(task.Name) == "" {
		return service.Task{}, fmt.Errorf("%w: task name required", service.ErrInvalidDraft)
	}
	if f.EditTaskErr != nil {
		return service.Task{}, f.EditTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.lists {
		for j := range f.lists[i].Tasks {
			if f.lists[i].Tasks[j].ID == task.ID {
				if task.AssignedTo.ID == "" && (task.AssignedTo.Name != "" || task.AssignedTo.Email != "") {
					task.AssignedTo.ID = f.newID()
				}
				f.lists[i].Tasks[j] = task
				return task, nil
			}
		}
	}
	return service.Task{}, fmt.Errorf("%w: %s", service.ErrTaskNotFound, task.ID)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.lists {
		for j, t := range f.lists[i].Tasks {
			if t.ID == taskID {
				f.lists[i].Tasks = append(f.lists[i].Tasks[:j], f.lists[i].Tasks[j+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", service.ErrTaskNotFound, taskID)
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", service.ErrListNotFound, listID)
}
