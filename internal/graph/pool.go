package graph

import "sync"

// =============================================================================
// Object Pooling
// =============================================================================

// GraphPool recycles residual graphs and algorithm scratch maps.
//
// Building a residual graph allocates many small maps and slices. When a
// server solves one request after another, those allocations dominate the
// garbage collector's work. The pool keeps cleared instances around so the
// next request can reuse their backing storage.
//
// All objects returned to the pool are cleared first; acquiring an object
// always yields an empty, ready-to-use instance.
type GraphPool struct {
	graphs  sync.Pool
	intMaps sync.Pool
}

// NewGraphPool creates a pool with initialized factories.
func NewGraphPool() *GraphPool {
	return &GraphPool{
		graphs: sync.Pool{
			New: func() any {
				return NewResidualGraph()
			},
		},
		intMaps: sync.Pool{
			New: func() any {
				return make(map[int64]int, 64)
			},
		},
	}
}

var (
	defaultPool     *GraphPool
	defaultPoolOnce sync.Once
)

// GetPool returns the process-wide graph pool.
func GetPool() *GraphPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewGraphPool()
	})
	return defaultPool
}

// AcquireGraph returns an empty residual graph from the pool.
func (p *GraphPool) AcquireGraph() *ResidualGraph {
	return p.graphs.Get().(*ResidualGraph)
}

// ReleaseGraph clears the graph and returns it to the pool.
//
// The caller must not use the graph after releasing it.
func (p *GraphPool) ReleaseGraph(g *ResidualGraph) {
	if g == nil {
		return
	}
	g.Clear()
	p.graphs.Put(g)
}

// AcquireIntMap returns an empty map[int64]int from the pool.
//
// Used by Dinic's algorithm for level and current-arc bookkeeping.
func (p *GraphPool) AcquireIntMap() map[int64]int {
	return p.intMaps.Get().(map[int64]int)
}

// ReleaseIntMap clears the map and returns it to the pool.
func (p *GraphPool) ReleaseIntMap(m map[int64]int) {
	if m == nil {
		return
	}
	clear(m)
	p.intMaps.Put(m)
}
