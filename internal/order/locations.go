package order

import "sync"

// LocationCache keeps only the latest report per order. New watchers are
// backfilled from here; there is no history.
type LocationCache struct {
	mu      sync.RWMutex
	reports map[string]LocationReport
}

func NewLocationCache() *LocationCache {
	return &LocationCache{
		reports: make(map[string]LocationReport),
	}
}

func (c *LocationCache) Get(orderID string) (LocationReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, found := c.reports[orderID]
	return r, found
}

// Put overwrites the cached report for the order unconditionally.
func (c *LocationCache) Put(orderID string, r LocationReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[orderID] = r
}

func (c *LocationCache) Delete(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, orderID)
}
