package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"todolists/internal/backend/fluree"
)

// Synchronizer implements Service on top of a Remote and a State.
//
// Each operation sequences its own remote round-trip before its local
// mutation. Nothing orders two concurrent operations against each other:
// two in-flight edits of one task race and the last one applied wins.
type Synchronizer struct {
	remote Remote
	state  *State
	logger *slog.Logger
}

var _ Service = (*Synchronizer)(nil)

// NewSynchronizer creates a synchronizer. A nil state starts empty; a nil
// logger discards output.
func NewSynchronizer(remote Remote, state *State, logger *slog.Logger) *Synchronizer {
	if state == nil {
		state = NewState()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synchronizer{remote: remote, state: state, logger: logger}
}

// State exposes the underlying state store.
func (s *Synchronizer) State() *State { return s.state }

// Load implements Service.
func (s *Synchronizer) Load(ctx context.Context) error {
	records, err := s.remote.QueryLists(ctx)
	if err != nil {
		return fmt.Errorf("load lists: %w", err)
	}
	s.state.ReplaceAll(listsFromRecords(records))
	s.logger.Debug("state loaded", "lists", len(records))
	return nil
}

// Lists implements Service.
func (s *Synchronizer) Lists() []List {
	return s.state.Lists()
}

// ResolveList implements Service.
func (s *Synchronizer) ResolveList(name string) (List, error) {
	name = strings.TrimSpace(name)
	matches := s.state.FindListByName(name)
	switch len(matches) {
	case 0:
		return List{}, fmt.Errorf("%w: %s", ErrListNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return List{}, fmt.Errorf("%w: %s", ErrAmbiguousList, name)
	}
}

// AddList implements Service. The list only becomes visible locally once
// the transaction succeeded and every placeholder resolved.
func (s *Synchronizer) AddList(ctx context.Context, draft NewList) (List, error) {
	if err := draft.Validate(); err != nil {
		return List{}, err
	}

	pending := newPendingList(draft)
	items, err := buildBatch(pending.txItem())
	if err != nil {
		return List{}, err
	}

	result, err := s.remote.Transact(ctx, items)
	if err != nil {
		s.logger.Debug("add list discarded", "name", pending.name, "error", err)
		return List{}, fmt.Errorf("add list %q: %w", pending.name, err)
	}

	list, err := pending.resolve(result.TempIDs)
	if err != nil {
		return List{}, fmt.Errorf("add list %q: %w", pending.name, err)
	}

	s.state.Append(list)
	s.logger.Debug("list confirmed", "id", list.ID, "tasks", len(list.Tasks))
	return list, nil
}

// AddTask implements Service. The task is nested inside an update of its
// owning list.
func (s *Synchronizer) AddTask(ctx context.Context, listID string, draft NewTask) (Task, error) {
	if err := draft.Validate(); err != nil {
		return Task{}, err
	}
	if _, ok := s.state.FindList(listID); !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}

	pending := newPendingTask(draft, 0)
	items, err := buildBatch(fluree.Upsert(fluree.ID(listID)).Nest("tasks", pending.txItem()))
	if err != nil {
		return Task{}, err
	}

	result, err := s.remote.Transact(ctx, items)
	if err != nil {
		return Task{}, fmt.Errorf("add task %q: %w", pending.name, err)
	}

	task, err := pending.resolve(result.TempIDs)
	if err != nil {
		return Task{}, fmt.Errorf("add task %q: %w", pending.name, err)
	}

	if !s.state.AppendTask(listID, task) {
		return Task{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	return task, nil
}

// EditTask implements Service.
func (s *Synchronizer) EditTask(ctx context.Context, task Task) (Task, error) {
	if strings.TrimSpace(task.Name) == "" {
		return Task{}, fmt.Errorf("%w: task name required", ErrInvalidDraft)
	}
	if _, _, ok := s.state.FindTask(task.ID); !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
	}

	item, assignee := taskUpdate(task)
	items, err := buildBatch(item)
	if err != nil {
		return Task{}, err
	}

	result, err := s.remote.Transact(ctx, items)
	if err != nil {
		return Task{}, fmt.Errorf("edit task %s: %w", task.ID, err)
	}

	aref, err := assignee.ref.Resolve(result.TempIDs)
	if err != nil {
		return Task{}, fmt.Errorf("edit task %s: %w", task.ID, err)
	}
	task.AssignedTo.ID = aref.ID()

	// The task may have been deleted by a concurrent operation meanwhile.
	if !s.state.UpdateTask(task) {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
	}
	return task, nil
}

// DeleteTask implements Service.
func (s *Synchronizer) DeleteTask(ctx context.Context, taskID string) error {
	task, _, ok := s.state.FindTask(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	items, err := buildBatch(taskDelete(task)...)
	if err != nil {
		return err
	}
	if _, err := s.remote.Transact(ctx, items); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}

	// Already gone locally means a concurrent delete won; the remote state
	// agrees either way.
	s.state.RemoveTask(taskID)
	return nil
}

// DeleteList implements Service.
func (s *Synchronizer) DeleteList(ctx context.Context, listID string) error {
	list, ok := s.state.FindList(listID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}

	items, err := buildBatch(listDelete(list)...)
	if err != nil {
		return err
	}
	if _, err := s.remote.Transact(ctx, items); err != nil {
		return fmt.Errorf("delete list %s: %w", listID, err)
	}

	s.state.RemoveList(listID)
	return nil
}
