// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"math"

	"github.com/pkg/errors"

	"github.com/shmonad/shmon/shmon"
)

// Sentinels. They are always present and never returned by Iter.
const (
	Head shmon.ValidatorID = 0
	Tail shmon.ValidatorID = math.MaxUint64
)

type links struct {
	prev shmon.ValidatorID
	next shmon.ValidatorID
}

// List is an index-based doubly linked list of validator ids, keyed by id, with
// sentinel head and tail entries. Removing an entry never invalidates the links
// of the others, so a cursor holding any present id stays usable.
type List struct {
	nodes map[shmon.ValidatorID]links
	count int
}

func New() *List {
	return &List{
		nodes: map[shmon.ValidatorID]links{
			Head: {prev: Head, next: Tail},
			Tail: {prev: Head, next: Tail},
		},
	}
}

// FromSlice rebuilds a list from ids in traversal order.
func FromSlice(ids []shmon.ValidatorID) (*List, error) {
	l := New()
	for _, id := range ids {
		if err := l.Add(id); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func IsSentinel(id shmon.ValidatorID) bool {
	return id == Head || id == Tail
}

// Add appends id before the tail sentinel.
func (l *List) Add(id shmon.ValidatorID) error {
	if IsSentinel(id) {
		return errors.Errorf("cannot add sentinel %d", id)
	}
	if l.Contains(id) {
		return errors.Errorf("validator %d already listed", id)
	}
	last := l.nodes[Tail].prev

	l.nodes[id] = links{prev: last, next: Tail}
	l.setNext(last, id)
	l.setPrev(Tail, id)
	l.count++
	return nil
}

// Remove unlinks id. Removing an absent id is a no-op.
func (l *List) Remove(id shmon.ValidatorID) {
	if IsSentinel(id) || !l.Contains(id) {
		return
	}
	n := l.nodes[id]
	l.setNext(n.prev, n.next)
	l.setPrev(n.next, n.prev)
	delete(l.nodes, id)
	l.count--
}

func (l *List) Contains(id shmon.ValidatorID) bool {
	_, ok := l.nodes[id]
	return ok && !IsSentinel(id)
}

// Next returns the successor of id, Tail for the last entry or an absent id.
func (l *List) Next(id shmon.ValidatorID) shmon.ValidatorID {
	n, ok := l.nodes[id]
	if !ok || id == Tail {
		return Tail
	}
	return n.next
}

// Prev returns the predecessor of id, Head for the first entry or an absent id.
func (l *List) Prev(id shmon.ValidatorID) shmon.ValidatorID {
	n, ok := l.nodes[id]
	if !ok || id == Head {
		return Head
	}
	return n.prev
}

// First returns the first entry, or Tail if the list is empty.
func (l *List) First() shmon.ValidatorID {
	return l.Next(Head)
}

func (l *List) Len() int {
	return l.count
}

// Iter traverses the list from head to tail until callback returns an error.
func (l *List) Iter(callback func(shmon.ValidatorID) error) error {
	for id := l.First(); id != Tail; id = l.Next(id) {
		if err := callback(id); err != nil {
			return err
		}
	}
	return nil
}

// Slice returns the entries in traversal order.
func (l *List) Slice() []shmon.ValidatorID {
	ids := make([]shmon.ValidatorID, 0, l.count)
	for id := l.First(); id != Tail; id = l.Next(id) {
		ids = append(ids, id)
	}
	return ids
}

func (l *List) setNext(id, next shmon.ValidatorID) {
	n := l.nodes[id]
	n.next = next
	l.nodes[id] = n
}

func (l *List) setPrev(id, prev shmon.ValidatorID) {
	n := l.nodes[id]
	n.prev = prev
	l.nodes[id] = n
}
