// Package library implements the indexed in-memory component database: it
// stores prompt components, answers multi-dimensional filtered queries
// without rescanning the corpus, and performs usage-weighted random
// selection. The database is a long-lived, process-wide store populated once
// by corpus ingestion; reads are safe under concurrent batches.
package library

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"promptforge/internal/component"
	"promptforge/internal/config"
	"promptforge/internal/logging"
)

// Database stores components under a primary ID mapping plus secondary
// indexes by category, slot type, brand, and tag. Queries intersect the
// index sets named by each non-empty filter field.
type Database struct {
	mu sync.RWMutex

	byID       map[string]*component.Component
	byCategory map[string]idSet
	bySlot     map[component.SlotType]idSet
	byBrand    map[string]idSet
	byTag      map[string]idSet

	cfg config.LibraryConfig

	rngMu sync.Mutex
	rng   *rand.Rand
}

type idSet map[string]struct{}

// NewDatabase creates an empty component database with default settings.
func NewDatabase() *Database {
	return &Database{
		byID:       make(map[string]*component.Component),
		byCategory: make(map[string]idSet),
		bySlot:     make(map[component.SlotType]idSet),
		byBrand:    make(map[string]idSet),
		byTag:      make(map[string]idSet),
		cfg:        config.DefaultLibraryConfig(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetConfig overrides the library configuration.
func (d *Database) SetConfig(cfg config.LibraryConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
}

// SetRandSource replaces the random source. Tests use this for
// deterministic selection.
func (d *Database) SetRandSource(rng *rand.Rand) {
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	d.rng = rng
}

// Add inserts a component into the primary mapping and every secondary
// index. Reinserting an existing ID overwrites the previous entry.
func (d *Database) Add(c *component.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.byID[c.ID]; ok {
		d.removeFromIndexesLocked(old)
	}

	d.byID[c.ID] = c

	addToIndex(d.byCategory, c.Category, c.ID)
	addToIndex(d.bySlot, c.Slot, c.ID)
	addToIndex(d.byBrand, c.Brand, c.ID)
	for _, tag := range c.Tags {
		addToIndex(d.byTag, tag, c.ID)
	}

	return nil
}

func addToIndex[K comparable](index map[K]idSet, key K, id string) {
	var zero K
	if key == zero {
		return
	}
	set, ok := index[key]
	if !ok {
		set = make(idSet)
		index[key] = set
	}
	set[id] = struct{}{}
}

func (d *Database) removeFromIndexesLocked(c *component.Component) {
	delete(d.byCategory[c.Category], c.ID)
	delete(d.bySlot[c.Slot], c.ID)
	delete(d.byBrand[c.Brand], c.ID)
	for _, tag := range c.Tags {
		delete(d.byTag[tag], c.ID)
	}
}

// Query returns every component matching the filter, in indeterminate
// order. It never fails: absence of matches is an empty result. Filtering
// itself is deterministic given identical inputs and database state.
func (d *Database) Query(f component.Filter) []*component.Component {
	d.mu.RLock()
	defer d.mu.RUnlock()

	candidates := d.candidateIDsLocked(f)
	if len(candidates) == 0 {
		return nil
	}

	for _, id := range f.ExcludeIDs {
		delete(candidates, id)
	}

	var out []*component.Component
	for id := range candidates {
		c, ok := d.byID[id]
		if !ok {
			continue
		}
		// Metadata exact-match is the last filter pass. The tagged
		// variant guarantees a filter built for one slot can never
		// match another slot's classification.
		if f.Meta != nil && !component.MetadataEqual(f.Meta, c.Meta) {
			continue
		}
		out = append(out, c)
	}

	return out
}

// candidateIDsLocked intersects the index sets named by each non-empty
// filter field. With no fields given, candidates are the entire ID
// universe.
func (d *Database) candidateIDsLocked(f component.Filter) idSet {
	var sets []idSet

	if f.Category != "" {
		sets = append(sets, d.byCategory[f.Category])
	}
	if f.Slot != "" {
		sets = append(sets, d.bySlot[f.Slot])
	}
	if f.Brand != "" {
		sets = append(sets, d.byBrand[f.Brand])
	}
	for _, tag := range f.Tags {
		sets = append(sets, d.byTag[tag])
	}

	if len(sets) == 0 {
		all := make(idSet, len(d.byID))
		for id := range d.byID {
			all[id] = struct{}{}
		}
		return all
	}

	// Intersect starting from the smallest set.
	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })

	result := make(idSet, len(sets[0]))
	for id := range sets[0] {
		result[id] = struct{}{}
	}
	for _, set := range sets[1:] {
		for id := range result {
			if _, ok := set[id]; !ok {
				delete(result, id)
			}
		}
		if len(result) == 0 {
			return nil
		}
	}

	return result
}

// GetRandom applies the filter, then picks uniformly at random from the
// least-used 30% of candidates (minimum one). Returns nil on an empty
// result, never an error. Selecting from a reduced low-usage pool spreads
// usage across the corpus instead of converging on a few popular fragments,
// while keeping enough randomness to avoid always returning the single
// least-used item.
func (d *Database) GetRandom(f component.Filter) *component.Component {
	pick := d.PickFrom(d.Query(f))
	if pick != nil {
		logging.LibraryDebug("GetRandom slot=%s picked=%s", f.Slot, pick.ID)
	}
	return pick
}

// PickFrom applies the usage-weighted random rule to an already-resolved
// candidate slice: sort ascending by usage, keep the lowest fraction
// (minimum one), pick uniformly within. The slice is reordered in place.
func (d *Database) PickFrom(candidates []*component.Component) *component.Component {
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].UsageCount() != candidates[j].UsageCount() {
			return candidates[i].UsageCount() < candidates[j].UsageCount()
		}
		return candidates[i].ID < candidates[j].ID
	})

	d.mu.RLock()
	fraction := d.cfg.LowUsageFraction
	d.mu.RUnlock()

	poolSize := int(float64(len(candidates)) * fraction)
	if poolSize < 1 {
		poolSize = 1
	}
	pool := candidates[:poolSize]

	d.rngMu.Lock()
	pick := pool[d.rng.Intn(len(pool))]
	d.rngMu.Unlock()

	return pick
}

// IncrementUsage bumps the usage counter for a component. No-op for an
// unknown ID.
func (d *Database) IncrementUsage(id string) {
	d.mu.RLock()
	c, ok := d.byID[id]
	d.mu.RUnlock()
	if ok {
		c.AddUsage()
	}
}

// Get returns a component by ID.
func (d *Database) Get(id string) (*component.Component, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.byID[id]
	return c, ok
}

// Count returns the total number of stored components.
func (d *Database) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// CountBySlot returns the number of components for one slot type.
func (d *Database) CountBySlot(slot component.SlotType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.bySlot[slot])
}

// Brands returns every distinct brand association, sorted.
func (d *Database) Brands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.byBrand))
	for brand, set := range d.byBrand {
		if len(set) > 0 {
			out = append(out, brand)
		}
	}
	sort.Strings(out)
	return out
}

// Categories returns every distinct corpus category, sorted.
func (d *Database) Categories() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.byCategory))
	for cat, set := range d.byCategory {
		if len(set) > 0 {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}
