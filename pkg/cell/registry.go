package cell

import (
	"sort"
	"sync"

	"github.com/vango-dev/cells/pkg/vdom"
)

// Cell renders one cell instance.
type Cell interface {
	Render(p Props, s Slots) *vdom.VNode
}

// CellFunc adapts a function to Cell.
type CellFunc func(p Props, s Slots) *vdom.VNode

// Render implements Cell.
func (f CellFunc) Render(p Props, s Slots) *vdom.VNode {
	return f(p, s)
}

// Registry maps cell-type markers to their renderers.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	cells map[string]Cell
}

// NewRegistry returns a registry with the built-in cells registered.
func NewRegistry() *Registry {
	r := &Registry{cells: make(map[string]Cell)}
	r.Register(ButtonType, Button{})
	return r
}

// Register binds a cell type to a renderer, replacing any previous one.
func (r *Registry) Register(cellType string, c Cell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cells[cellType] = c
}

// Lookup returns the renderer for cellType.
func (r *Registry) Lookup(cellType string) (Cell, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cells[cellType]
	return c, ok
}

// Types returns the registered cell types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.cells))
	for t := range r.cells {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
