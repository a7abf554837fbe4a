package service

import "todolists/internal/backend/fluree"

func listsFromRecords(records []fluree.ListRecord) []List {
	lists := make([]List, 0, len(records))
	for _, r := range records {
		lists = append(lists, listFromRecord(r))
	}
	return lists
}

func listFromRecord(r fluree.ListRecord) List {
	l := List{
		ID:          string(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Tasks:       make([]Task, 0, len(r.Tasks)),
	}
	for _, t := range r.Tasks {
		task := Task{
			ID:          string(t.ID),
			Name:        t.Name,
			IsCompleted: t.IsCompleted,
		}
		if t.AssignedTo != nil {
			task.AssignedTo = Assignee{
				ID:    string(t.AssignedTo.ID),
				Name:  t.AssignedTo.Name,
				Email: t.AssignedTo.Email,
			}
		}
		l.Tasks = append(l.Tasks, task)
	}
	return l
}
