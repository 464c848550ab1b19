package services

import "sync"

// ClaimSet records photo IDs already claimed for tagging this process
// lifetime. A photo is claimed the moment it is accepted into a queuing or
// tagging operation, not when tagging succeeds, so the guarantee is
// "at most one tagging attempt per photo per session". Entries are never
// removed, not even on failure.
type ClaimSet struct {
	mu      sync.RWMutex
	claimed map[string]struct{}
}

// NewClaimSet returns an empty claim set.
func NewClaimSet() *ClaimSet {
	return &ClaimSet{claimed: make(map[string]struct{})}
}

// HasBeenClaimed reports whether the photo ID was already claimed.
func (c *ClaimSet) HasBeenClaimed(photoID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.claimed[photoID]
	return ok
}

// Claim inserts every ID. Safe to call with IDs already present.
func (c *ClaimSet) Claim(photoIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range photoIDs {
		c.claimed[id] = struct{}{}
	}
}

// ClaimNew claims the IDs not yet present and returns them, in input order.
// Filtering and claiming happen under one lock so two callers racing with
// overlapping ID sets can never both receive the same ID.
func (c *ClaimSet) ClaimNew(photoIDs []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var fresh []string
	for _, id := range photoIDs {
		if id == "" {
			continue
		}
		if _, ok := c.claimed[id]; ok {
			continue
		}
		c.claimed[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

// Len returns the number of claimed IDs.
func (c *ClaimSet) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.claimed)
}
