package products

import (
	"context"
	"sync"
)

type CategoriesView struct {
	Names  []string `json:"categories"`
	Status Status   `json:"status"`
	Error  string   `json:"error,omitempty"`
}

type CategoriesSlice struct {
	gw      Gateway
	observe Observer

	mu     sync.RWMutex
	names  []string
	status Status
	err    string
	gen    uint64
}

func NewCategoriesSlice(gw Gateway, observe Observer) *CategoriesSlice {
	return &CategoriesSlice{gw: gw, observe: observe, names: []string{}, status: StatusIdle}
}

// Ensure fetches the names unless an earlier fetch already succeeded.
func (c *CategoriesSlice) Ensure(ctx context.Context) CategoriesView {
	c.mu.RLock()
	done := c.status == StatusSucceeded
	c.mu.RUnlock()

	if done {
		return c.View()
	}
	return c.Fetch(ctx)
}

func (c *CategoriesSlice) Fetch(ctx context.Context) CategoriesView {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.status = StatusLoading
	c.err = ""
	c.mu.Unlock()

	names, err := c.gw.Categories(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return c.viewLocked()
	}

	if err != nil {
		c.status = StatusFailed
		c.err = fetchMessage(err)
	} else {
		if names == nil {
			names = []string{}
		}
		c.status = StatusSucceeded
		c.names = names
	}
	c.observe.observe(SliceCategories, c.status)
	return c.viewLocked()
}

func (c *CategoriesSlice) View() CategoriesView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewLocked()
}

func (c *CategoriesSlice) viewLocked() CategoriesView {
	return CategoriesView{
		Names:  append([]string{}, c.names...),
		Status: c.status,
		Error:  c.err,
	}
}
