package service

import (
	"strings"
	"sync"
)

// State is the local state store: the ordered lists currently believed to
// match the remote store. Every mutation entry point is meant to be called
// only after the remote operation it mirrors has succeeded.
type State struct {
	mu    sync.RWMutex
	lists []List
}

// NewState creates an empty state store.
func NewState() *State {
	return &State{}
}

// Lists returns a deep copy of all lists in order.
func (s *State) Lists() []List {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]List, len(s.lists))
	for i, l := range s.lists {
		out[i] = l.clone()
	}
	return out
}

// Len returns the number of lists.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists)
}

// ReplaceAll swaps in a freshly queried set of lists.
func (s *State) ReplaceAll(lists []List) {
	next := make([]List, len(lists))
	for i, l := range lists {
		next[i] = l.clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = next
}

// Append adds a confirmed list at the end.
func (s *State) Append(list List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, list.clone())
}

// FindList returns the list with the given id.
func (s *State) FindList(id string) (List, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.listIndex(id)
	if i == -1 {
		return List{}, false
	}
	return s.lists[i].clone(), true
}

// FindListByName returns every list whose trimmed name matches
// case-insensitively.
func (s *State) FindListByName(name string) []List {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(name))
	var matches []List
	for _, l := range s.lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == want {
			matches = append(matches, l.clone())
		}
	}
	return matches
}

// FindTask returns the task with the given id and the id of its list.
func (s *State) FindTask(taskID string) (Task, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	li, ti := s.taskIndex(taskID)
	if li == -1 {
		return Task{}, "", false
	}
	return s.lists[li].Tasks[ti], s.lists[li].ID, true
}

// UpdateTask replaces the task with the same id in place. Returns false if
// no such task exists.
func (s *State) UpdateTask(task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, ti := s.taskIndex(task.ID)
	if li == -1 {
		return false
	}
	tasks := make([]Task, len(s.lists[li].Tasks))
	copy(tasks, s.lists[li].Tasks)
	tasks[ti] = task
	s.lists[li].Tasks = tasks
	return true
}

// RemoveTask deletes the task with the given id, closing the gap so the
// sequence never holds an empty slot. Returns false if no such task exists.
func (s *State) RemoveTask(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, ti := s.taskIndex(taskID)
	if li == -1 {
		return false
	}
	old := s.lists[li].Tasks
	tasks := make([]Task, 0, len(old)-1)
	tasks = append(tasks, old[:ti]...)
	tasks = append(tasks, old[ti+1:]...)
	s.lists[li].Tasks = tasks
	return true
}

// AppendTask adds a confirmed task to the end of a list. Returns false if
// the list does not exist.
func (s *State) AppendTask(listID string, task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.listIndex(listID)
	if i == -1 {
		return false
	}
	tasks := make([]Task, len(s.lists[i].Tasks), len(s.lists[i].Tasks)+1)
	copy(tasks, s.lists[i].Tasks)
	s.lists[i].Tasks = append(tasks, task)
	return true
}

// RemoveList deletes a list. Returns false if the list does not exist.
func (s *State) RemoveList(listID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.listIndex(listID)
	if i == -1 {
		return false
	}
	lists := make([]List, 0, len(s.lists)-1)
	lists = append(lists, s.lists[:i]...)
	lists = append(lists, s.lists[i+1:]...)
	s.lists = lists
	return true
}

// listIndex returns -1 when the list is missing. Callers hold mu.
func (s *State) listIndex(id string) int {
	for i, l := range s.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// taskIndex returns (-1, -1) when the task is missing. Index 0 is a match.
// Callers hold mu.
func (s *State) taskIndex(taskID string) (int, int) {
	for li, l := range s.lists {
		for ti, t := range l.Tasks {
			if t.ID == taskID {
				return li, ti
			}
		}
	}
	return -1, -1
}
