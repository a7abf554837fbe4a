package service

import (
	"context"
	"errors"

	"todolists/internal/backend/fluree"
)

var (
	// ErrTaskNotFound is returned when a task id is not in the local state.
	ErrTaskNotFound = errors.New("task not found")

	// ErrListNotFound is returned when a list id or name is not in the local state.
	ErrListNotFound = errors.New("list not found")

	// ErrAmbiguousList is returned when a list name matches more than one list.
	ErrAmbiguousList = errors.New("ambiguous list name")

	// ErrInvalidDraft is returned for drafts rejected before any remote call.
	ErrInvalidDraft = errors.New("invalid input")

	// ErrOwnership is returned when a write batch breaks the nesting rules.
	ErrOwnership = errors.New("invalid transaction shape")
)

// Service defines the operations the presentation layer drives.
// Every mutating call completes its remote transaction before it changes
// local state; on error local state is unchanged.
type Service interface {
	// Load queries the remote store and replaces local state wholesale.
	Load(ctx context.Context) error

	// Lists returns a snapshot of local state in display order.
	Lists() []List

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns ErrListNotFound or ErrAmbiguousList.
	ResolveList(name string) (List, error)

	// AddList transacts a new list with its tasks and assignees and, on
	// success, appends the confirmed list locally.
	AddList(ctx context.Context, draft NewList) (List, error)

	// AddTask transacts a new task into an existing list.
	AddTask(ctx context.Context, listID string, draft NewTask) (Task, error)

	// EditTask replaces a task (matched by id) remotely, then locally.
	EditTask(ctx context.Context, task Task) (Task, error)

	// DeleteTask deletes a task and its assignee remotely, then locally.
	DeleteTask(ctx context.Context, taskID string) error

	// DeleteList deletes a list with everything it owns remotely, then locally.
	DeleteList(ctx context.Context, listID string) error
}

// Remote is the subset of the remote store client the synchronizer uses.
type Remote interface {
	QueryLists(ctx context.Context) ([]fluree.ListRecord, error)
	Transact(ctx context.Context, items []fluree.TxItem) (fluree.TxResult, error)
}
