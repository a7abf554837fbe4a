package service

import (
	"fmt"

	"todolists/internal/backend/fluree"
)

// Ref identifies an entity that is either still pending remote confirmation
// (a placeholder) or confirmed (a permanent id).
type Ref struct {
	id      string
	pending bool
}

// Pending returns a placeholder reference, e.g. "task$0".
func Pending(placeholder string) Ref {
	return Ref{id: placeholder, pending: true}
}

// Confirmed returns a reference to a permanent id.
func Confirmed(id string) Ref {
	return Ref{id: id}
}

// IsPending reports whether the reference is still a placeholder.
func (r Ref) IsPending() bool { return r.pending }

// ID returns the placeholder or the permanent id.
func (r Ref) ID() string { return r.id }

// TxID is the id as it appears in a transaction item.
func (r Ref) TxID() fluree.ID { return fluree.ID(r.id) }

// Resolve maps a pending reference through the tempid mapping. Confirmed
// references resolve to themselves.
func (r Ref) Resolve(tempids map[string]fluree.ID) (Ref, error) {
	if !r.pending {
		return r, nil
	}
	id, ok := tempids[r.id]
	if !ok || id == "" {
		return Ref{}, fmt.Errorf("%w: no permanent id for %s", fluree.ErrRemoteError, r.id)
	}
	return Confirmed(string(id)), nil
}

func (r Ref) String() string {
	if r.pending {
		return "pending(" + r.id + ")"
	}
	return r.id
}
