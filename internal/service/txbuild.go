package service

import (
	"fmt"
	"strings"

	"todolists/internal/backend/fluree"
)

// Collections and their placeholder prefixes. A placeholder is
// "<collection>$<label>".
const (
	collectionList     = "list"
	collectionTask     = "task"
	collectionAssignee = "assignee"
)

// ownedCollections may only be inserted nested inside their owner's item.
var ownedCollections = map[string]string{
	collectionTask:     collectionList,
	collectionAssignee: collectionTask,
}

func placeholder(collection string, label int) Ref {
	return Pending(fmt.Sprintf("%s$%d", collection, label))
}

// placeholderCollection returns the collection of a placeholder id, or ""
// if id is not a placeholder.
func placeholderCollection(id fluree.ID) string {
	s := string(id)
	i := strings.IndexByte(s, '$')
	if i <= 0 {
		return ""
	}
	return s[:i]
}

type pendingAssignee struct {
	ref   Ref
	name  string
	email string
}

type pendingTask struct {
	ref       Ref
	name      string
	completed bool
	assignee  pendingAssignee
}

type pendingList struct {
	ref         Ref
	name        string
	description string
	tasks       []pendingTask
}

// newPendingList assigns placeholders: list$1 for the list, task$<i> and
// assignee$<i> for the i-th task and its assignee.
func newPendingList(n NewList) pendingList {
	p := pendingList{
		ref:         placeholder(collectionList, 1),
		name:        strings.TrimSpace(n.Name),
		description: n.Description,
		tasks:       make([]pendingTask, 0, len(n.Tasks)),
	}
	for i, t := range n.Tasks {
		p.tasks = append(p.tasks, newPendingTask(t, i))
	}
	return p
}

func newPendingTask(t NewTask, label int) pendingTask {
	return pendingTask{
		ref:       placeholder(collectionTask, label),
		name:      strings.TrimSpace(t.Name),
		completed: t.Completed,
		assignee: pendingAssignee{
			ref:   placeholder(collectionAssignee, label),
			name:  t.AssigneeName,
			email: t.AssigneeEmail,
		},
	}
}

// txItem nests every task, and every task's assignee, inside the list item.
func (p pendingList) txItem() fluree.TxItem {
	item := fluree.Upsert(p.ref.TxID()).
		Set("name", p.name).
		Set("description", p.description)
	tasks := make([]fluree.TxItem, 0, len(p.tasks))
	for _, t := range p.tasks {
		tasks = append(tasks, t.txItem())
	}
	return item.Set("tasks", tasks)
}

func (t pendingTask) txItem() fluree.TxItem {
	return fluree.Upsert(t.ref.TxID()).
		Set("name", t.name).
		Set("isCompleted", t.completed).
		NestOne("assignedTo", t.assignee.txItem())
}

func (a pendingAssignee) txItem() fluree.TxItem {
	return fluree.Upsert(a.ref.TxID()).
		Set("name", a.name).
		Set("email", a.email)
}

// resolve replaces every placeholder with its permanent id. Any missing
// mapping fails the whole list.
func (p pendingList) resolve(tempids map[string]fluree.ID) (List, error) {
	ref, err := p.ref.Resolve(tempids)
	if err != nil {
		return List{}, err
	}
	list := List{
		ID:          ref.ID(),
		Name:        p.name,
		Description: p.description,
		Tasks:       make([]Task, 0, len(p.tasks)),
	}
	for _, pt := range p.tasks {
		task, err := pt.resolve(tempids)
		if err != nil {
			return List{}, err
		}
		list.Tasks = append(list.Tasks, task)
	}
	return list, nil
}

func (t pendingTask) resolve(tempids map[string]fluree.ID) (Task, error) {
	ref, err := t.ref.Resolve(tempids)
	if err != nil {
		return Task{}, err
	}
	aref, err := t.assignee.ref.Resolve(tempids)
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:          ref.ID(),
		Name:        t.name,
		IsCompleted: t.completed,
		AssignedTo: Assignee{
			ID:    aref.ID(),
			Name:  t.assignee.name,
			Email: t.assignee.email,
		},
	}, nil
}

// taskUpdate builds the update item for an edited task. An assignee without
// an id yet is inserted nested under the task with placeholder assignee$0,
// but only when it has a name or email. A task with no assignee at all
// keeps none.
func taskUpdate(task Task) (fluree.TxItem, pendingAssignee) {
	a := pendingAssignee{
		ref:   Confirmed(task.AssignedTo.ID),
		name:  task.AssignedTo.Name,
		email: task.AssignedTo.Email,
	}
	item := fluree.Upsert(fluree.ID(task.ID)).
		Set("name", task.Name).
		Set("isCompleted", task.IsCompleted)

	switch {
	case task.AssignedTo.ID != "":
	case strings.TrimSpace(a.name) != "" || strings.TrimSpace(a.email) != "":
		a.ref = placeholder(collectionAssignee, 0)
	default:
		return item, a
	}
	return item.NestOne("assignedTo", a.txItem()), a
}

// taskDelete retracts a task together with the assignee it owns.
func taskDelete(task Task) []fluree.TxItem {
	items := []fluree.TxItem{fluree.Delete(fluree.ID(task.ID))}
	if task.AssignedTo.ID != "" {
		items = append(items, fluree.Delete(fluree.ID(task.AssignedTo.ID)))
	}
	return items
}

// listDelete retracts a list with every task and assignee it owns.
func listDelete(list List) []fluree.TxItem {
	items := []fluree.TxItem{fluree.Delete(fluree.ID(list.ID))}
	for _, t := range list.Tasks {
		items = append(items, taskDelete(t)...)
	}
	return items
}

// buildBatch checks the ownership rules on a batch before it is sent:
// owned entities are only inserted nested under their owner, and no
// placeholder appears twice.
func buildBatch(items ...fluree.TxItem) ([]fluree.TxItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", ErrOwnership)
	}

	seen := make(map[fluree.ID]bool)
	for _, item := range items {
		id := item.ID()
		if coll := placeholderCollection(id); coll != "" {
			if owner, owned := ownedCollections[coll]; owned {
				return nil, fmt.Errorf("%w: %s must be nested inside its %s", ErrOwnership, id, owner)
			}
		}
		if err := checkPlaceholders(item, "", seen); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// checkPlaceholders walks item and its nested children. parent is the
// collection of the enclosing placeholder or "" at top level / under a
// confirmed subject.
func checkPlaceholders(item fluree.TxItem, parent string, seen map[fluree.ID]bool) error {
	id := item.ID()
	coll := placeholderCollection(id)
	if coll != "" {
		if seen[id] {
			return fmt.Errorf("%w: placeholder %s used twice", ErrOwnership, id)
		}
		seen[id] = true
		if owner, owned := ownedCollections[coll]; owned && parent != "" && parent != owner {
			return fmt.Errorf("%w: %s nested under %s, want %s", ErrOwnership, id, parent, owner)
		}
	}
	for _, child := range item.Children() {
		if err := checkPlaceholders(child, itemCollection(item), seen); err != nil {
			return err
		}
	}
	return nil
}

// itemCollection infers the collection of an item from its placeholder, or
// from the shape of its predicates for confirmed subjects.
func itemCollection(item fluree.TxItem) string {
	if coll := placeholderCollection(item.ID()); coll != "" {
		return coll
	}
	switch {
	case item["tasks"] != nil:
		return collectionList
	case item["assignedTo"] != nil:
		return collectionTask
	}
	return ""
}
