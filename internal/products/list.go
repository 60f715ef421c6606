package products

import (
	"context"
	"strings"
	"sync"

	"Storefront/internal/catalog"
)

type ListConfig struct {
	Limit    int
	Skip     int
	Debounce *Debouncer
	Observe  Observer
}

// ListView is what readers get: Items is already filtered by the search
// term, Total counts the unfiltered items.
type ListView struct {
	Items      []catalog.Product `json:"items"`
	Total      int               `json:"total"`
	Status     Status            `json:"status"`
	Error      string            `json:"error,omitempty"`
	SearchTerm string            `json:"searchTerm"`
	Category   string            `json:"currentCategory"`
}

// ListSlice holds the last fetched product list. Every fetch takes a
// generation number; a response that is not the latest issued is dropped.
type ListSlice struct {
	gw  Gateway
	cfg ListConfig

	mu         sync.RWMutex
	items      []catalog.Product
	all        []catalog.Product
	status     Status
	err        string
	searchTerm string
	category   string
	gen        uint64
}

func NewListSlice(gw Gateway, cfg ListConfig) *ListSlice {
	return &ListSlice{
		gw:       gw,
		cfg:      cfg,
		items:    []catalog.Product{},
		all:      []catalog.Product{},
		status:   StatusIdle,
		category: AllCategories,
	}
}

// FetchAll replaces items and the unfiltered copy with the catalog list.
func (l *ListSlice) FetchAll(ctx context.Context) ListView {
	return l.fetch(ctx, SliceList, "", func(ctx context.Context) ([]catalog.Product, error) {
		return l.gw.List(ctx, l.cfg.Limit, l.cfg.Skip)
	})
}

// FetchByCategory replaces items with one category's products. The
// unfiltered copy is left alone.
func (l *ListSlice) FetchByCategory(ctx context.Context, category string) ListView {
	if category == "" || category == AllCategories {
		return l.FetchAll(ctx)
	}
	return l.fetch(ctx, SliceCategory, category, func(ctx context.Context) ([]catalog.Product, error) {
		return l.gw.ByCategory(ctx, category)
	})
}

func (l *ListSlice) fetch(ctx context.Context, slice, category string, call func(context.Context) ([]catalog.Product, error)) ListView {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.status = StatusLoading
	l.err = ""
	l.mu.Unlock()

	items, err := call(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		return l.viewLocked()
	}

	if err != nil {
		l.status = StatusFailed
		l.err = fetchMessage(err)
		l.cfg.Observe.observe(slice, l.status)
		return l.viewLocked()
	}

	if items == nil {
		items = []catalog.Product{}
	}
	l.status = StatusSucceeded
	l.items = items
	if category == "" {
		l.all = items
	} else {
		l.category = category
	}
	l.cfg.Observe.observe(slice, l.status)
	return l.viewLocked()
}

// FilterByCategory narrows the last full list locally; "all" restores it.
func (l *ListSlice) FilterByCategory(category string) ListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	if category == "" {
		category = AllCategories
	}
	l.category = category

	if category == AllCategories {
		l.items = l.all
		return l.viewLocked()
	}

	items := make([]catalog.Product, 0, len(l.all))
	for _, p := range l.all {
		if p.Category == category {
			items = append(items, p)
		}
	}
	l.items = items
	return l.viewLocked()
}

func (l *ListSlice) SetSearchTerm(term string) {
	l.mu.Lock()
	l.searchTerm = term
	l.mu.Unlock()
}

// DebounceSearchTerm commits term once the debounce window passes with no
// newer call. Without a debouncer the term is committed at once.
func (l *ListSlice) DebounceSearchTerm(term string) {
	if l.cfg.Debounce == nil {
		l.SetSearchTerm(term)
		return
	}
	l.cfg.Debounce.Trigger(func() { l.SetSearchTerm(term) })
}

// ClearSearchTerm also drops a pending debounced term.
func (l *ListSlice) ClearSearchTerm() {
	if l.cfg.Debounce != nil {
		l.cfg.Debounce.Cancel()
	}
	l.SetSearchTerm("")
}

func (l *ListSlice) ClearError() {
	l.mu.Lock()
	l.err = ""
	l.mu.Unlock()
}

// Clear empties items and returns the slice to idle. An in-flight fetch
// is abandoned.
func (l *ListSlice) Clear() ListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.gen++
	l.items = []catalog.Product{}
	l.status = StatusIdle
	l.err = ""
	return l.viewLocked()
}

func (l *ListSlice) View() ListView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.viewLocked()
}

func (l *ListSlice) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Items is the unfiltered current list.
func (l *ListSlice) Items() []catalog.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]catalog.Product{}, l.items...)
}

// Find looks id up in the current items, then in the last full list.
func (l *ListSlice) Find(id int64) (catalog.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, set := range [][]catalog.Product{l.items, l.all} {
		for _, p := range set {
			if p.ID == id {
				return p, true
			}
		}
	}
	return catalog.Product{}, false
}

func (l *ListSlice) viewLocked() ListView {
	return ListView{
		Items:      Filter(l.items, l.searchTerm),
		Total:      len(l.items),
		Status:     l.status,
		Error:      l.err,
		SearchTerm: l.searchTerm,
		Category:   l.category,
	}
}

// Filter keeps products whose title or description contains term,
// ignoring case. The term is used as typed, surrounding spaces included;
// only the empty term keeps everything.
func Filter(items []catalog.Product, term string) []catalog.Product {
	out := make([]catalog.Product, 0, len(items))
	term = strings.ToLower(term)
	for _, p := range items {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}
