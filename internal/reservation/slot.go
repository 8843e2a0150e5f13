// Package reservation provides a single-entry "last found" slot that
// repositories compose to guard read-then-write sequences on one entity.
//
// FindAndReserve looks an entity up and remembers it. UpdateReserved writes a
// new version only when the caller presents the token of the current
// reservation and the entity carries the reserved identity. Anything else
// fails with ErrNotReserved and leaves both the slot and the collection
// untouched.
package reservation

import (
	"context"
	"errors"
	"sync"
)

// ErrNotReserved is returned by UpdateReserved when the guard rejects the update.
var ErrNotReserved = errors.New("reservation: entity is not reserved")

// Collection is the backing store a Slot reads from and writes to.
//
// FindByID must return an error when the entity does not exist; the slot
// treats every error as a miss and propagates it unchanged.
type Collection[K comparable, E any] interface {
	FindByID(ctx context.Context, id K) (E, error)
	Replace(ctx context.Context, entity E) error
}

// Funcs adapts a pair of functions to the Collection interface, so a
// repository can keep its write path unexported.
type Funcs[K comparable, E any] struct {
	Find  func(ctx context.Context, id K) (E, error)
	Store func(ctx context.Context, entity E) error
}

// FindByID calls f.Find.
func (f Funcs[K, E]) FindByID(ctx context.Context, id K) (E, error) {
	return f.Find(ctx, id)
}

// Replace calls f.Store.
func (f Funcs[K, E]) Replace(ctx context.Context, entity E) error {
	return f.Store(ctx, entity)
}

// Token proves that the holder performed a FindAndReserve. The zero Token
// holds nothing and never passes the guard.
type Token[K comparable] struct {
	id    K
	valid bool
}

// ID returns the identity the token was issued for.
func (t Token[K]) ID() K { return t.id }

// Valid reports whether the token came from a successful FindAndReserve.
func (t Token[K]) Valid() bool { return t.valid }

// Slot holds at most one reserved entity.
//
// Thread Safety:
//   - All methods are safe for concurrent use. The lookup and the write both
//     run under the slot's lock, so a reservation can't change between the
//     guard check and the replace.
type Slot[K comparable, E any] struct {
	mu       sync.Mutex
	coll     Collection[K, E]
	identity func(E) K

	held   bool
	id     K
	entity E
}

// New creates an empty slot over coll. identity extracts an entity's key.
func New[K comparable, E any](coll Collection[K, E], identity func(E) K) *Slot[K, E] {
	return &Slot[K, E]{coll: coll, identity: identity}
}

// FindAndReserve looks id up in the collection. On a hit the entity becomes
// the current reservation and a token for it is returned. On a miss the
// collection's error is returned and any existing reservation is kept.
func (s *Slot[K, E]) FindAndReserve(ctx context.Context, id K) (E, Token[K], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, err := s.coll.FindByID(ctx, id)
	if err != nil {
		var zero E
		return zero, Token[K]{}, err
	}

	s.held = true
	s.id = id
	s.entity = entity
	return entity, Token[K]{id: id, valid: true}, nil
}

// UpdateReserved replaces the reserved entity in the collection with entity
// and makes entity the new reservation.
//
// It succeeds only when a reservation exists, tok was issued for it, and
// entity's identity equals the reserved identity. Otherwise it returns
// ErrNotReserved without touching the collection.
func (s *Slot[K, E]) UpdateReserved(ctx context.Context, tok Token[K], entity E) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero E
	if !s.held || !tok.valid || tok.id != s.id || s.identity(entity) != s.id {
		return zero, ErrNotReserved
	}

	if err := s.coll.Replace(ctx, entity); err != nil {
		return zero, err
	}
	s.entity = entity
	return entity, nil
}

// reserved returns the current reservation, if any.
func (s *Slot[K, E]) reserved() (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entity, s.held
}
