package diversity

import (
	"promptforge/internal/component"
	"promptforge/internal/config"
	"promptforge/internal/logging"
)

// Similarity weights per categorized slot. Maximum similarity is 1.0 when
// every slot's category matches.
const (
	WeightPose     = 0.30
	WeightLocation = 0.25
	WeightLighting = 0.20
	WeightOutfit   = 0.15
	WeightFraming  = 0.10
)

// Profile is a bundle reduced to one category per scored slot.
type Profile struct {
	Pose     PoseCategory
	Location LocationCategory
	Lighting LightingCategory
	Outfit   OutfitCategory
	Framing  FramingCategory
}

// ProfileOf reduces a bundle to its categorical profile.
func ProfileOf(b *component.Bundle) Profile {
	return Profile{
		Pose:     ClassifyPose(b.Pose),
		Location: ClassifyLocation(b.Location),
		Lighting: ClassifyLighting(b.Lighting),
		Outfit:   ClassifyOutfit(b.Outfit),
		Framing:  ClassifyFraming(b.Camera),
	}
}

// Similarity computes the weighted sum of category equality indicators
// between two profiles, in [0, 1].
func Similarity(a, b Profile) float64 {
	return similarity(a, b, true, true)
}

func similarity(a, b Profile, scoreOutfit, scoreFraming bool) float64 {
	sim := 0.0
	if a.Pose == b.Pose {
		sim += WeightPose
	}
	if a.Location == b.Location {
		sim += WeightLocation
	}
	if a.Lighting == b.Lighting {
		sim += WeightLighting
	}
	if scoreOutfit && a.Outfit == b.Outfit {
		sim += WeightOutfit
	}
	if scoreFraming && a.Framing == b.Framing {
		sim += WeightFraming
	}
	return sim
}

// Decision is the outcome of evaluating a proposed bundle against the
// session history.
type Decision struct {
	// Accepted reports whether the bundle passed the diversity gate.
	Accepted bool

	// Score is 1 minus the similarity to the closest accepted neighbor;
	// exactly 1.0 against an empty history.
	Score float64

	// Reason explains a rejection; empty when accepted.
	Reason string
}

type historyEntry struct {
	profile Profile
	ids     []string
}

// Engine scores and accepts/rejects proposed bundles against one batch's
// acceptance history and enforces the component reuse cap. One engine
// instance corresponds to exactly one batch/session: it accumulates state
// and must never be shared across concurrent batches, or one caller's
// selections would leak into another's constraints. Construct a fresh
// engine per batch.
type Engine struct {
	constraints config.DiversityConfig
	history     []historyEntry
	usedCounts  map[string]int
}

// NewEngine creates a diversity engine for a single batch with the given
// constraints.
func NewEngine(constraints config.DiversityConfig) *Engine {
	return &Engine{
		constraints: constraints,
		usedCounts:  make(map[string]int),
	}
}

// Check evaluates a proposed bundle against the session history without
// recording it. A bundle is rejected when its similarity to any accepted
// bundle exceeds the maximum, or when any of its component IDs has already
// reached the reuse cap.
func (e *Engine) Check(b *component.Bundle) Decision {
	profile := ProfileOf(b)

	for _, id := range b.ComponentIDs() {
		if e.usedCounts[id] >= e.constraints.MaxComponentReuse {
			logging.DiversityDebug("Rejecting bundle: component %s already used %d times",
				id, e.usedCounts[id])
			return Decision{
				Accepted: false,
				Score:    e.scoreAgainstHistory(profile),
				Reason:   "component " + id + " reached reuse cap",
			}
		}
	}

	// First concept is maximally diverse by construction.
	if len(e.history) == 0 {
		return Decision{Accepted: true, Score: 1.0}
	}

	// The score is the distance to the closest accepted neighbor, so the
	// maximum similarity over the history is what matters.
	maxSim := 0.0
	for _, entry := range e.history {
		sim := similarity(profile, entry.profile,
			e.constraints.EnforceOutfitVariation, e.constraints.EnforceFramingVariation)
		if sim > e.constraints.MaxSimilarity {
			logging.DiversityDebug("Rejecting bundle: similarity %.2f exceeds %.2f",
				sim, e.constraints.MaxSimilarity)
			return Decision{
				Accepted: false,
				Score:    1 - sim,
				Reason:   "too similar to an accepted concept",
			}
		}
		if sim > maxSim {
			maxSim = sim
		}
	}

	return Decision{Accepted: true, Score: 1 - maxSim}
}

// scoreAgainstHistory computes the diversity score without the acceptance
// rule: distance from the closest accepted neighbor.
func (e *Engine) scoreAgainstHistory(profile Profile) float64 {
	if len(e.history) == 0 {
		return 1.0
	}
	maxSim := 0.0
	for _, entry := range e.history {
		sim := similarity(profile, entry.profile,
			e.constraints.EnforceOutfitVariation, e.constraints.EnforceFramingVariation)
		if sim > maxSim {
			maxSim = sim
		}
	}
	return 1 - maxSim
}

// Record appends an accepted bundle to the session history and marks all
// of its component IDs as used.
func (e *Engine) Record(b *component.Bundle) {
	ids := b.ComponentIDs()
	e.history = append(e.history, historyEntry{profile: ProfileOf(b), ids: ids})
	for _, id := range ids {
		e.usedCounts[id]++
	}
}

// HistoryLen returns the number of accepted bundles in the session.
func (e *Engine) HistoryLen() int {
	return len(e.history)
}

// IsComponentUsed reports whether a component ID appears in any accepted
// bundle of the session.
func (e *Engine) IsComponentUsed(id string) bool {
	return e.usedCounts[id] > 0
}

// UsedComponentIDs returns every component ID used by accepted bundles.
func (e *Engine) UsedComponentIDs() []string {
	ids := make([]string, 0, len(e.usedCounts))
	for id := range e.usedCounts {
		ids = append(ids, id)
	}
	return ids
}

// PoseCategoryCounts returns how often each pose category appears across
// accepted bundles. The builder uses this to prefer underused categories
// once the easy diversity budget is exhausted.
func (e *Engine) PoseCategoryCounts() map[PoseCategory]int {
	counts := make(map[PoseCategory]int)
	for _, entry := range e.history {
		counts[entry.profile.Pose]++
	}
	return counts
}

// UsedLocationCategories returns the location categories already used by
// accepted bundles.
func (e *Engine) UsedLocationCategories() map[LocationCategory]bool {
	used := make(map[LocationCategory]bool)
	for _, entry := range e.history {
		used[entry.profile.Location] = true
	}
	return used
}

// Reset clears history and used-ID tracking so the engine can be reused
// for a new batch.
func (e *Engine) Reset() {
	e.history = nil
	e.usedCounts = make(map[string]int)
}
