// Package component defines the shared vocabulary of the prompt composition
// engine: atomic prompt fragments (components), the slot roles they fill,
// slot-specific classification metadata, and the filter model used to query
// them. Every other engine package depends on these types.
package component

import (
	"fmt"
	"sync/atomic"
)

// SlotType identifies the structural role a component plays in an assembled
// prompt.
type SlotType string

const (
	SlotPose         SlotType = "pose"
	SlotOutfit       SlotType = "outfit"
	SlotLocation     SlotType = "location"
	SlotLighting     SlotType = "lighting"
	SlotCamera       SlotType = "camera"
	SlotStyling      SlotType = "styling"
	SlotBrandElement SlotType = "brand_element"
	SlotHair         SlotType = "hair"
	SlotMakeup       SlotType = "makeup"
	SlotAesthetic    SlotType = "aesthetic"
)

// AllSlotTypes returns every defined slot type.
func AllSlotTypes() []SlotType {
	return []SlotType{
		SlotPose,
		SlotOutfit,
		SlotLocation,
		SlotLighting,
		SlotCamera,
		SlotStyling,
		SlotBrandElement,
		SlotHair,
		SlotMakeup,
		SlotAesthetic,
	}
}

// RequiredSlots returns the slots every concept bundle must fill.
func RequiredSlots() []SlotType {
	return []SlotType{SlotPose, SlotOutfit, SlotLocation, SlotLighting, SlotCamera}
}

// Valid reports whether s is one of the defined slot types.
func (s SlotType) Valid() bool {
	for _, t := range AllSlotTypes() {
		if s == t {
			return true
		}
	}
	return false
}

// Component is an atomic, reusable fragment of a prompt. A component's slot
// type never changes after creation, and its ID is unique within a process
// lifetime.
type Component struct {
	// ID uniquely identifies this component (e.g. "pose-golden-042").
	ID string

	// Category is the thematic corpus the fragment was extracted from,
	// typically a brand or style collection name.
	Category string

	// Slot is the structural role this fragment fills.
	Slot SlotType

	// Description is a short human-readable label.
	Description string

	// Text is the literal fragment inserted into an assembled prompt.
	Text string

	// Tags are free-form descriptors; insertion order is irrelevant.
	Tags []string

	// Brand is an optional brand association.
	Brand string

	// Meta holds the slot-specific classification, if any. Its concrete
	// type is keyed to Slot so a pose component can never be matched by a
	// lighting filter.
	Meta Metadata

	// usage counts how many times this component was selected for an
	// accepted concept. Concurrent batches share the database, so the
	// counter is atomic; it is a soft bias signal, not a correctness
	// invariant.
	usage atomic.Int64
}

// UsageCount returns how often the component has been selected.
func (c *Component) UsageCount() int64 {
	return c.usage.Load()
}

// AddUsage increments the usage counter. Callers invoke this only when the
// component is actually chosen for an accepted concept, not merely
// considered.
func (c *Component) AddUsage() {
	c.usage.Add(1)
}

// SetUsage overwrites the usage counter. Intended for tests and for loaders
// restoring a previously observed count.
func (c *Component) SetUsage(n int64) {
	c.usage.Store(n)
}

// HasTag reports whether the component carries the given tag.
func (c *Component) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the component for consistency errors.
func (c *Component) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("component ID is required")
	}
	if c.Text == "" {
		return fmt.Errorf("component text is required for %q", c.ID)
	}
	if !c.Slot.Valid() {
		return fmt.Errorf("unknown slot type %q for component %q", c.Slot, c.ID)
	}
	if c.Meta != nil && c.Meta.Slot() != c.Slot {
		return fmt.Errorf("metadata for slot %q attached to %q component %q",
			c.Meta.Slot(), c.Slot, c.ID)
	}
	return nil
}

// Filter narrows a database query. Every non-zero field must match; zero
// fields impose no constraint.
type Filter struct {
	// Category restricts to components extracted from this corpus.
	Category string

	// Slot restricts to one structural role.
	Slot SlotType

	// Tags must all be present on a matching component.
	Tags []string

	// Brand restricts to components with this brand association.
	Brand string

	// ExcludeIDs removes specific components from the candidate set.
	ExcludeIDs []string

	// Meta requires an exact match on the slot-specific classification.
	Meta Metadata
}

// WithoutExclusions returns a copy of the filter with ExcludeIDs cleared.
// Used when a required slot's pool is exhausted and reuse is the only way
// forward.
func (f Filter) WithoutExclusions() Filter {
	f.ExcludeIDs = nil
	return f
}
