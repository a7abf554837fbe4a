// Package devstore is an in-memory ledger that speaks the subset of the
// Fluree HTTP protocol the client uses: POST /fdb/{network}/{ledger}/query
// and /transact. It backs local development and tests.
package devstore

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Collection ids; a subject id is collection<<44 | sequence, as in Fluree.
var collectionIDs = map[string]int64{
	"list":     20,
	"task":     21,
	"assignee": 22,
}

// predicates lists the known predicates per collection. Ref predicates map
// to the referenced collection; scalar predicates map to "".
var predicates = map[string]map[string]refSpec{
	"list": {
		"name":        {},
		"description": {},
		"tasks":       {collection: "task", multi: true},
	},
	"task": {
		"name":        {},
		"isCompleted": {},
		"assignedTo":  {collection: "assignee"},
	},
	"assignee": {
		"name":  {},
		"email": {},
	},
}

type refSpec struct {
	collection string
	multi      bool
}

func (r refSpec) isRef() bool { return r.collection != "" }

var (
	errUnknownSubject   = errors.New("unknown subject")
	errUnknownPredicate = errors.New("invalid predicate")
	errBadItem          = errors.New("invalid transaction item")
)

type subject struct {
	id         int64
	collection string
	values     map[string]any // scalars, int64 refs, []int64 multi refs
}

func (s *subject) clone() *subject {
	out := &subject{id: s.id, collection: s.collection, values: make(map[string]any, len(s.values))}
	for k, v := range s.values {
		if ids, ok := v.([]int64); ok {
			cp := make([]int64, len(ids))
			copy(cp, ids)
			v = cp
		}
		out.values[k] = v
	}
	return out
}

// ledger is the mutable state. Transactions apply to a clone and swap it in
// on success, so a failed batch leaves nothing behind.
type ledger struct {
	subjects map[int64]*subject
	seq      map[string]int64
	block    int64
}

func newLedger() *ledger {
	return &ledger{subjects: make(map[int64]*subject), seq: make(map[string]int64)}
}

func (l *ledger) clone() *ledger {
	out := &ledger{
		subjects: make(map[int64]*subject, len(l.subjects)),
		seq:      make(map[string]int64, len(l.seq)),
		block:    l.block,
	}
	for id, s := range l.subjects {
		out.subjects[id] = s.clone()
	}
	for k, v := range l.seq {
		out.seq[k] = v
	}
	return out
}

func (l *ledger) create(collection string) *subject {
	l.seq[collection]++
	id := collectionIDs[collection]<<44 | l.seq[collection]
	s := &subject{id: id, collection: collection, values: make(map[string]any)}
	l.subjects[id] = s
	return s
}

// retract removes a subject and every reference to it.
func (l *ledger) retract(id int64) {
	delete(l.subjects, id)
	for _, s := range l.subjects {
		for k, v := range s.values {
			switch ref := v.(type) {
			case int64:
				if ref == id {
					delete(s.values, k)
				}
			case []int64:
				kept := ref[:0]
				for _, r := range ref {
					if r != id {
						kept = append(kept, r)
					}
				}
				s.values[k] = kept
			}
		}
	}
}

func (l *ledger) ids(collection string, desc bool) []int64 {
	var ids []int64
	for id, s := range l.subjects {
		if s.collection == collection {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if desc {
			return ids[i] > ids[j]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// tx applies one batch to a ledger clone.
type tx struct {
	l       *ledger
	tempids map[string]int64
}

func (t *tx) apply(item map[string]any, want string) (int64, error) {
	s, err := t.subjectFor(item["_id"], want)
	if err != nil {
		return 0, err
	}

	if action, _ := item["_action"].(string); action != "" {
		if action != "delete" {
			return 0, fmt.Errorf("%w: unknown _action %q", errBadItem, action)
		}
		t.l.retract(s.id)
		return s.id, nil
	}

	preds := predicates[s.collection]
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.HasPrefix(k, "_") {
			continue
		}
		name := strings.TrimPrefix(k, s.collection+"/")
		spec, ok := preds[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s/%s", errUnknownPredicate, s.collection, name)
		}
		if !spec.isRef() {
			s.values[name] = item[k]
			continue
		}
		if err := t.applyRef(s, name, spec, item[k]); err != nil {
			return 0, err
		}
	}
	return s.id, nil
}

func (t *tx) applyRef(s *subject, name string, spec refSpec, value any) error {
	var elems []any
	if arr, ok := value.([]any); ok {
		elems = arr
	} else {
		elems = []any{value}
	}

	var ids []int64
	for _, e := range elems {
		var id int64
		var err error
		if nested, ok := e.(map[string]any); ok {
			id, err = t.apply(nested, spec.collection)
		} else {
			var ref *subject
			ref, err = t.existing(e, spec.collection)
			if ref != nil {
				id = ref.id
			}
		}
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if !spec.multi {
		if len(ids) != 1 {
			return fmt.Errorf("%w: %s takes exactly one value", errBadItem, name)
		}
		s.values[name] = ids[0]
		return nil
	}
	existing, _ := s.values[name].([]int64)
	for _, id := range ids {
		if !containsID(existing, id) {
			existing = append(existing, id)
		}
	}
	s.values[name] = existing
	return nil
}

// subjectFor resolves an _id: a placeholder creates (or reuses within the
// batch) a subject, anything else must name an existing subject.
func (t *tx) subjectFor(raw any, want string) (*subject, error) {
	if str, ok := raw.(string); ok && strings.Contains(str, "$") {
		coll := str[:strings.IndexByte(str, '$')]
		if _, known := collectionIDs[coll]; !known {
			return nil, fmt.Errorf("%w: unknown collection in %q", errBadItem, str)
		}
		if want != "" && coll != want {
			return nil, fmt.Errorf("%w: %q where %s expected", errBadItem, str, want)
		}
		if id, seen := t.tempids[str]; seen {
			return t.l.subjects[id], nil
		}
		s := t.l.create(coll)
		t.tempids[str] = s.id
		return s, nil
	}
	return t.existing(raw, want)
}

func (t *tx) existing(raw any, want string) (*subject, error) {
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	s, ok := t.l.subjects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errUnknownSubject, id)
	}
	if want != "" && s.collection != want {
		return nil, fmt.Errorf("%w: subject %d is a %s, %s expected", errBadItem, id, s.collection, want)
	}
	return s, nil
}

func parseID(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing _id", errBadItem)
	case int64:
		return v, nil
	case interface{ Int64() (int64, error) }:
		return v.Int64()
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad _id %q", errBadItem, v)
		}
		return id, nil
	}
	return 0, fmt.Errorf("%w: bad _id %v", errBadItem, raw)
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Store is a concurrency-safe in-memory ledger with failure injection.
type Store struct {
	mu      sync.Mutex
	network string
	ledger  string
	state   *ledger
	fail    map[string][]int // op -> queued status codes
}

// New creates an empty store serving /fdb/{network}/{ledger}.
func New(network, ledgerName string) *Store {
	return &Store{
		network: network,
		ledger:  ledgerName,
		state:   newLedger(),
		fail:    make(map[string][]int),
	}
}

// FailNext makes the next request for op ("query" or "transact") answer
// with status instead of being processed. Calls queue up.
func (s *Store) FailNext(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = append(s.fail[op], status)
}

// Count returns the number of subjects in a collection.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.ids(collection, false))
}

func (s *Store) takeFailure(op string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.fail[op]
	if len(q) == 0 {
		return 0, false
	}
	s.fail[op] = q[1:]
	return q[0], true
}

// Transact applies items atomically and returns the tempid mapping.
func (s *Store) Transact(items []map[string]any) (map[string]int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		return nil, 0, fmt.Errorf("%w: empty transaction", errBadItem)
	}

	t := &tx{l: s.state.clone(), tempids: make(map[string]int64)}
	for _, item := range items {
		if _, err := t.apply(item, ""); err != nil {
			return nil, 0, err
		}
	}
	t.l.block++
	s.state = t.l
	return t.tempids, t.l.block, nil
}

// Query renders every subject of a collection through a select spec.
func (s *Store) Query(from string, selection []any, compact, desc bool) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := collectionIDs[from]; !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", errBadItem, from)
	}
	out := []map[string]any{}
	for _, id := range s.state.ids(from, desc) {
		out = append(out, s.render(s.state.subjects[id], selection, compact))
	}
	return out, nil
}

func (s *Store) render(sub *subject, selection []any, compact bool) map[string]any {
	out := map[string]any{"_id": sub.id}
	key := func(pred string) string {
		if compact {
			return pred
		}
		return sub.collection + "/" + pred
	}

	// Plain selections first so sub-selections override their shallow refs.
	for _, sel := range selection {
		v, ok := sel.(string)
		if !ok {
			continue
		}
		if v != "*" {
			name := strings.TrimPrefix(v, sub.collection+"/")
			if val, ok := sub.values[name]; ok {
				out[key(name)] = s.shallow(val)
			}
			continue
		}
		for name, val := range sub.values {
			out[key(name)] = s.shallow(val)
		}
	}

	preds := predicates[sub.collection]
	for _, sel := range selection {
		v, ok := sel.(map[string]any)
		if !ok {
			continue
		}
		for pred, sub2 := range v {
			name := strings.TrimPrefix(pred, sub.collection+"/")
			spec, ok := preds[name]
			if !ok || !spec.isRef() {
				continue
			}
			nested, _ := sub2.([]any)
			out[key(name)] = s.expand(sub.values[name], nested, compact)
		}
	}
	return out
}

// shallow renders ref values as {"_id": n} and scalars as-is.
func (s *Store) shallow(val any) any {
	switch ref := val.(type) {
	case int64:
		return map[string]any{"_id": ref}
	case []int64:
		out := make([]map[string]any, 0, len(ref))
		for _, id := range ref {
			out = append(out, map[string]any{"_id": id})
		}
		return out
	}
	return val
}

func (s *Store) expand(val any, selection []any, compact bool) any {
	switch ref := val.(type) {
	case int64:
		if sub, ok := s.state.subjects[ref]; ok {
			return s.render(sub, selection, compact)
		}
		return nil
	case []int64:
		out := make([]map[string]any, 0, len(ref))
		for _, id := range ref {
			if sub, ok := s.state.subjects[id]; ok {
				out = append(out, s.render(sub, selection, compact))
			}
		}
		return out
	}
	return nil
}
