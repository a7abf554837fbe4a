package fluree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a subject identifier. Fluree returns subject ids as JSON numbers;
// placeholders and some deployments use strings. ID accepts both.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid subject id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IsNumeric reports whether id is a permanent numeric subject id.
func (id ID) IsNumeric() bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

func (id ID) String() string { return string(id) }

// Query is the body of a POST /query request.
type Query struct {
	Select []any      `json:"select"`
	From   string     `json:"from"`
	Opts   *QueryOpts `json:"opts,omitempty"`
}

// QueryOpts holds query options.
type QueryOpts struct {
	Compact bool `json:"compact"`
	// OrderBy is [direction, field], e.g. ["ASC", "_id"].
	OrderBy []string `json:"orderBy,omitempty"`
}

// ListsQuery selects every list with nested tasks and assignees, ordered by id.
func ListsQuery() Query {
	return Query{
		Select: []any{
			"*",
			map[string]any{
				"tasks": []any{
					"*",
					map[string]any{"assignedTo": []any{"*"}},
				},
			},
		},
		From: "list",
		Opts: &QueryOpts{
			Compact: true,
			OrderBy: []string{"ASC", "_id"},
		},
	}
}

// ListRecord is a compacted list record as returned by ListsQuery.
type ListRecord struct {
	ID          ID           `json:"_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Tasks       []TaskRecord `json:"tasks"`
}

// TaskRecord is a compacted task record.
type TaskRecord struct {
	ID          ID              `json:"_id"`
	Name        string          `json:"name"`
	IsCompleted bool            `json:"isCompleted"`
	AssignedTo  *AssigneeRecord `json:"assignedTo"`
}

// AssigneeRecord is a compacted assignee record.
type AssigneeRecord struct {
	ID    ID     `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnmarshalJSON tolerates assignedTo arriving as a single-element array,
// which some ledgers emit for ref predicates.
func (t *TaskRecord) UnmarshalJSON(data []byte) error {
	type plain TaskRecord
	var raw struct {
		plain
		AssignedTo json.RawMessage `json:"assignedTo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = TaskRecord(raw.plain)
	t.AssignedTo = nil

	a := bytes.TrimSpace(raw.AssignedTo)
	switch {
	case len(a) == 0 || bytes.Equal(a, []byte("null")):
	case a[0] == '[':
		var many []AssigneeRecord
		if err := json.Unmarshal(a, &many); err != nil {
			return err
		}
		if len(many) > 0 {
			t.AssignedTo = &many[0]
		}
	default:
		var one AssigneeRecord
		if err := json.Unmarshal(a, &one); err != nil {
			return err
		}
		t.AssignedTo = &one
	}
	return nil
}

// ActionDelete is the _action value that retracts a subject.
const ActionDelete = "delete"

// TxItem is one transaction item: {_id, <predicates>} for insert/update,
// or {_id, _action: "delete"}. Nested collections are TxItems embedded as
// predicate values.
type TxItem map[string]any

// Upsert starts an insert (placeholder id) or update (permanent id) item.
func Upsert(id ID) TxItem {
	return TxItem{"_id": id}
}

// Delete builds a delete item.
func Delete(id ID) TxItem {
	return TxItem{"_id": id, "_action": ActionDelete}
}

// Set sets a scalar predicate and returns the item for chaining.
func (t TxItem) Set(predicate string, value any) TxItem {
	t[predicate] = value
	return t
}

// Nest embeds child items under a multi-cardinality ref predicate.
func (t TxItem) Nest(predicate string, children ...TxItem) TxItem {
	existing, _ := t[predicate].([]TxItem)
	t[predicate] = append(existing, children...)
	return t
}

// NestOne embeds a child item under a single-cardinality ref predicate.
func (t TxItem) NestOne(predicate string, child TxItem) TxItem {
	t[predicate] = child
	return t
}

// ID returns the item's subject id.
func (t TxItem) ID() ID {
	id, _ := t["_id"].(ID)
	return id
}

// IsDelete reports whether the item retracts its subject.
func (t TxItem) IsDelete() bool {
	action, _ := t["_action"].(string)
	return action == ActionDelete
}

// Children returns the items nested directly under t. Order across
// predicates is unspecified.
func (t TxItem) Children() []TxItem {
	var out []TxItem
	for k, v := range t {
		if k == "_id" || k == "_action" {
			continue
		}
		switch c := v.(type) {
		case TxItem:
			out = append(out, c)
		case []TxItem:
			out = append(out, c...)
		}
	}
	return out
}

// TxResult is the decoded transact response. Only TempIDs is consumed;
// the remaining fields are informational.
type TxResult struct {
	TempIDs map[string]ID `json:"tempids"`
	Block   int64         `json:"block,omitempty"`
	Status  int           `json:"status,omitempty"`
}
