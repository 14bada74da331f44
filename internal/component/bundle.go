package component

// Bundle is one fully-selected set of components representing a single
// candidate prompt: exactly one component for each required slot, an
// optional styling component, and zero or more brand elements. Bundles are
// immutable once assembled and owned by the batch that produced them; they
// exist only for diversity comparison and are discarded with the batch.
type Bundle struct {
	Pose     *Component
	Outfit   *Component
	Location *Component
	Lighting *Component
	Camera   *Component

	// Styling is optional; assembly substitutes a default line when nil.
	Styling *Component

	// BrandElements holds up to a handful of brand components, present
	// only when the request named a brand.
	BrandElements []*Component
}

// Components returns every non-nil component in the bundle, required slots
// first.
func (b *Bundle) Components() []*Component {
	out := make([]*Component, 0, 7+len(b.BrandElements))
	for _, c := range []*Component{b.Pose, b.Outfit, b.Location, b.Lighting, b.Camera, b.Styling} {
		if c != nil {
			out = append(out, c)
		}
	}
	out = append(out, b.BrandElements...)
	return out
}

// ComponentIDs returns the IDs of every component in the bundle.
func (b *Bundle) ComponentIDs() []string {
	comps := b.Components()
	ids := make([]string, len(comps))
	for i, c := range comps {
		ids[i] = c.ID
	}
	return ids
}

// Complete reports whether every required slot is filled.
func (b *Bundle) Complete() bool {
	return b.Pose != nil && b.Outfit != nil && b.Location != nil &&
		b.Lighting != nil && b.Camera != nil
}

// ComposedPrompt is a bundle plus its derived final text and presentation
// metadata. Created once per concept and returned to the caller; the engine
// does not retain it.
type ComposedPrompt struct {
	// Prompt is the assembled final text.
	Prompt string

	// Bundle is the component selection the prompt was built from.
	Bundle *Bundle

	// Title is a short display label derived from the location and pose.
	Title string

	// Description is a one-sentence natural-language summary.
	Description string

	// Category echoes the corpus the components were drawn from.
	Category string

	// WordCount is the length of the assembled prompt in words.
	WordCount int

	// DiversityScore is the concept's distance from its closest neighbor
	// in the batch, 1.0 for the first concept.
	DiversityScore float64

	// BrandElementIDs lists the brand components woven into the prompt.
	BrandElementIDs []string
}

// BatchRequest is what the calling application supplies to compose a batch.
type BatchRequest struct {
	// Category names the corpus to draw from.
	Category string `json:"category" yaml:"category"`

	// UserIntent is free text scanned for keyword families; it is never
	// interpreted beyond heuristic matching.
	UserIntent string `json:"user_intent" yaml:"user_intent"`

	// Brand optionally restricts outfits and attaches brand elements.
	Brand string `json:"brand,omitempty" yaml:"brand,omitempty"`

	// Count is the number of concepts requested.
	Count int `json:"count" yaml:"count"`

	// PriorComponentIDs carries component IDs already used earlier in a
	// multi-turn session so cross-call repetition is avoided too.
	PriorComponentIDs []string `json:"prior_component_ids,omitempty" yaml:"prior_component_ids,omitempty"`
}
