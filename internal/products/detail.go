package products

import (
	"context"
	"sync"

	"Storefront/internal/catalog"
)

type DetailView struct {
	Product *catalog.Product `json:"product"`
	Status  Status           `json:"status"`
	Error   string           `json:"error,omitempty"`
}

// DetailSlice holds the single product currently being viewed.
type DetailSlice struct {
	gw      Gateway
	observe Observer

	mu      sync.RWMutex
	product *catalog.Product
	status  Status
	err     string
	gen     uint64
}

func NewDetailSlice(gw Gateway, observe Observer) *DetailSlice {
	return &DetailSlice{gw: gw, observe: observe, status: StatusIdle}
}

func (d *DetailSlice) Fetch(ctx context.Context, id int64) DetailView {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.status = StatusLoading
	d.err = ""
	d.mu.Unlock()

	p, err := d.gw.Get(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		return d.viewLocked()
	}

	if err != nil {
		d.status = StatusFailed
		d.err = catalog.UpstreamMessage(err, msgDetailFailed)
	} else {
		d.status = StatusSucceeded
		d.product = &p
	}
	d.observe.observe(SliceDetail, d.status)
	return d.viewLocked()
}

// Clear forgets the viewed product and abandons any in-flight fetch.
func (d *DetailSlice) Clear() DetailView {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.product = nil
	d.status = StatusIdle
	d.err = ""
	return d.viewLocked()
}

func (d *DetailSlice) View() DetailView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewLocked()
}

// Current returns the viewed product when it was loaded successfully.
func (d *DetailSlice) Current() (catalog.Product, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.product == nil || d.status != StatusSucceeded {
		return catalog.Product{}, false
	}
	return *d.product, true
}

func (d *DetailSlice) viewLocked() DetailView {
	v := DetailView{Status: d.status, Error: d.err}
	if d.product != nil {
		p := *d.product
		v.Product = &p
	}
	return v
}
