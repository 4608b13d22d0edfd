// Package queue holds the user's play queue: an ordered list of unique level
// IDs with random contiguous picks and a text snapshot for copy and paste.
package queue

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// ErrEmptySnapshot is returned by Deserialize when the text holds no IDs.
var ErrEmptySnapshot = errors.New("queue snapshot contains no level ids")

// Queue is safe for concurrent use.
type Queue struct {
	mu  sync.Mutex
	ids []string
	rng *rand.Rand
}

// New returns an empty queue. A nil rng uses the global source.
func New(rng *rand.Rand) *Queue {
	return &Queue{rng: rng}
}

// Add appends id. Adding an ID that is already queued does nothing and
// returns false.
func (q *Queue) Add(id string) bool {
	if id == "" {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if slices.Contains(q.ids, id) {
		return false
	}
	q.ids = append(q.ids, id)
	return true
}

// Remove drops id from the queue.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := slices.Index(q.ids, id)
	if i < 0 {
		return false
	}
	q.ids = slices.Delete(q.ids, i, i+1)
	return true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.ids = nil
	q.mu.Unlock()
}

// Len returns the number of queued IDs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

// Contains reports whether id is queued.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Contains(q.ids, id)
}

// IDs returns a copy of the queue in order.
func (q *Queue) IDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.ids)
}

// Replace sets the queue contents, dropping empties and duplicates.
func (q *Queue) Replace(ids []string) {
	out := dedupe(ids)
	q.mu.Lock()
	q.ids = out
	q.mu.Unlock()
}

// Resolve maps the queued IDs onto levels from cat. IDs that are no longer
// installed are left out.
func (q *Queue) Resolve(cat *catalog.Local) []catalog.Level {
	ids := q.IDs()
	out := make([]catalog.Level, 0, len(ids))
	for _, id := range ids {
		if l, ok := cat.ByID(id); ok {
			out = append(out, l)
		}
	}
	return out
}

// Shuffle replaces the queue with Pick(queue, amount) and returns the new
// contents.
func (q *Queue) Shuffle(amount int) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = Pick(q.ids, amount, q.rng)
	return slices.Clone(q.ids)
}

// Pick selects min(amount, len(ids)) distinct IDs.
//
// Indices are ordered by the key -(i - r) where r is drawn uniformly from
// [0, N) once per index, and a contiguous run of amount entries is taken
// from a random offset in [0, N-amount). The result favours nearby indices
// and is not a uniform permutation.
func Pick(ids []string, amount int, rng *rand.Rand) []string {
	n := len(ids)
	if amount > n {
		amount = n
	}
	if amount <= 0 || n == 0 {
		return []string{}
	}
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	perm := make([]int, n)
	keys := make([]int, n)
	for i := range perm {
		perm[i] = i
		keys[i] = -(i - intN(n))
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return keys[perm[a]] < keys[perm[b]]
	})

	minRandom := 0
	if span := n - amount; span > 0 {
		minRandom = intN(span)
	}

	out := make([]string, amount)
	for i := range out {
		out[i] = ids[perm[minRandom+i]]
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
