package engine

import (
	"github.com/scopenco/netblock-tools/cidr"

	lru "github.com/hashicorp/golang-lru/v2"
)

// BlockedSet remembers the networks already dispatched in this run, in
// insertion order. Without a capacity it only grows. With one, the oldest
// network is forgotten once the set is full.
type BlockedSet struct {
	order []cidr.Block
	index map[cidr.Block]struct{}
	cache *lru.Cache[cidr.Block, struct{}]
}

func NewBlockedSet(capacity int) *BlockedSet {
	if capacity > 0 {
		cache, err := lru.New[cidr.Block, struct{}](capacity)
		if err == nil {
			return &BlockedSet{cache: cache}
		}
	}
	return &BlockedSet{index: make(map[cidr.Block]struct{})}
}

func (s *BlockedSet) Contains(b cidr.Block) bool {
	if s.cache != nil {
		// Contains leaves recency alone, eviction follows insertion order
		return s.cache.Contains(b)
	}
	_, ok := s.index[b]
	return ok
}

// Add inserts b and reports whether it was new.
func (s *BlockedSet) Add(b cidr.Block) bool {
	if s.cache != nil {
		if s.cache.Contains(b) {
			return false
		}
		s.cache.Add(b, struct{}{})
		return true
	}
	if _, ok := s.index[b]; ok {
		return false
	}
	s.index[b] = struct{}{}
	s.order = append(s.order, b)
	return true
}

func (s *BlockedSet) Len() int {
	if s.cache != nil {
		return s.cache.Len()
	}
	return len(s.order)
}

// Blocks returns the remembered networks, oldest first.
func (s *BlockedSet) Blocks() []cidr.Block {
	if s.cache != nil {
		return s.cache.Keys()
	}
	blocks := make([]cidr.Block, len(s.order))
	copy(blocks, s.order)
	return blocks
}
