package match

import (
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/face-sentry/internal/gallery"
)

// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
const hnswMaxNeighbors = 16

// Index is an approximate-nearest-neighbor shortlist over the gallery
// vectors. The graph does not support deletion, so membership is
// tracked separately and stale nodes are filtered at query time; the
// owner rebuilds the index after removals.
type Index struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	members map[string]struct{} // gallery keys currently valid
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{members: make(map[string]struct{})}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.CosineDistance
	return g
}

// Rebuild replaces the index content with the given identities.
func (idx *Index) Rebuild(identities []gallery.Identity) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.graph = nil
	idx.members = make(map[string]struct{}, len(identities))
	if len(identities) == 0 {
		return
	}

	g := newGraph()
	for _, id := range identities {
		if len(id.Vector) == 0 {
			continue
		}
		key := gallery.Key(id.Name)
		g.Add(hnsw.MakeNode(key, id.Vector))
		idx.members[key] = struct{}{}
	}
	idx.graph = g
}

// Add inserts one identity into the index.
func (idx *Index) Add(id gallery.Identity) {
	if len(id.Vector) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.graph == nil {
		idx.graph = newGraph()
	}
	key := gallery.Key(id.Name)
	idx.graph.Add(hnsw.MakeNode(key, id.Vector))
	idx.members[key] = struct{}{}
}

// Forget drops an identity from query results. The node stays in the
// graph until the next Rebuild.
func (idx *Index) Forget(name string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.members, gallery.Key(name))
}

// Shortlist returns the subset of candidates nearest to the query, in
// the candidates' original (registration) order so exact rescoring
// keeps stable tie-breaking. Returns nil when the index is empty,
// which makes the caller fall back to the full scan.
func (idx *Index) Shortlist(query []float32, k int, candidates []gallery.Identity) []gallery.Identity {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.graph == nil || len(query) == 0 {
		return nil
	}

	nearest := make(map[string]struct{}, k)
	for _, node := range idx.graph.Search(query, k) {
		if _, ok := idx.members[node.Key]; ok {
			nearest[node.Key] = struct{}{}
		}
	}
	if len(nearest) == 0 {
		return nil
	}

	var shortlist []gallery.Identity
	for _, id := range candidates {
		if _, ok := nearest[gallery.Key(id.Name)]; ok {
			shortlist = append(shortlist, id)
		}
	}
	return shortlist
}
