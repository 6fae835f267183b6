package engagement

import (
	"context"
	"sync"
)

type relationKey struct {
	kind   Kind
	actor  string
	target string
}

// MemoryStore is an in-memory Store used by tests and local tooling.
// Targets reports whether a target exists; nil accepts every target.
type MemoryStore struct {
	Targets func(kind Kind, targetID string) bool

	mu        sync.Mutex
	relations map[relationKey]Relation
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{relations: make(map[relationKey]Relation)}
}

// Remove deletes a relation if present.
func (s *MemoryStore) Remove(_ context.Context, kind Kind, actorID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := relationKey{kind: kind, actor: actorID, target: targetID}
	if _, ok := s.relations[key]; !ok {
		return false, nil
	}
	delete(s.relations, key)
	return true, nil
}

// Add inserts a relation unless one already exists.
func (s *MemoryStore) Add(_ context.Context, rel Relation) (Relation, bool, error) {
	if s.Targets != nil && !s.Targets(rel.Kind, rel.TargetID) {
		return Relation{}, false, ErrTargetNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := relationKey{kind: rel.Kind, actor: rel.ActorID, target: rel.TargetID}
	if existing, ok := s.relations[key]; ok {
		return existing, false, nil
	}
	s.relations[key] = rel
	return rel, true, nil
}

// Count reports how many relations exist for (kind, actor, target).
func (s *MemoryStore) Count(kind Kind, actorID, targetID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[relationKey{kind: kind, actor: actorID, target: targetID}]; ok {
		return 1
	}
	return 0
}

var _ Store = (*MemoryStore)(nil)
