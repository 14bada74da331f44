package config

// LibraryConfig configures the component database.
type LibraryConfig struct {
	// LowUsageFraction is the fraction of least-used candidates random
	// selection draws from (default: 0.30). Spreads usage across the
	// corpus without always picking the single least-used fragment.
	LowUsageFraction float64 `yaml:"low_usage_fraction" json:"low_usage_fraction"`
}

// DefaultLibraryConfig returns sensible defaults for the database.
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		LowUsageFraction: 0.30,
	}
}

// DiversityConfig configures the per-batch diversity engine.
type DiversityConfig struct {
	// MaxSimilarity is the pairwise similarity above which a proposed
	// bundle is rejected (default: 0.7).
	MaxSimilarity float64 `yaml:"max_similarity" json:"max_similarity"`

	// MaxComponentReuse is the maximum times any single component ID may
	// appear across accepted bundles within one batch (default: 2).
	MaxComponentReuse int `yaml:"max_component_reuse" json:"max_component_reuse"`

	// EnforceOutfitVariation includes the outfit slot in similarity
	// scoring (default: true).
	EnforceOutfitVariation bool `yaml:"enforce_outfit_variation" json:"enforce_outfit_variation"`

	// EnforceFramingVariation includes the camera framing slot in
	// similarity scoring (default: true).
	EnforceFramingVariation bool `yaml:"enforce_framing_variation" json:"enforce_framing_variation"`
}

// DefaultDiversityConfig returns the standard diversity constraints.
func DefaultDiversityConfig() DiversityConfig {
	return DiversityConfig{
		MaxSimilarity:           0.7,
		MaxComponentReuse:       2,
		EnforceOutfitVariation:  true,
		EnforceFramingVariation: true,
	}
}

// ComposerConfig configures the composition builder.
type ComposerConfig struct {
	// MaxDiversityRetries bounds reselection attempts after a diversity
	// rejection before the bundle is accepted with a warning (default: 3).
	// Guarantees forward progress on small corpora.
	MaxDiversityRetries int `yaml:"max_diversity_retries" json:"max_diversity_retries"`

	// MaxBrandElements caps brand components attached per concept
	// (default: 2).
	MaxBrandElements int `yaml:"max_brand_elements" json:"max_brand_elements"`

	// Diversity carries the per-batch diversity constraints.
	Diversity DiversityConfig `yaml:"diversity" json:"diversity"`
}

// DefaultComposerConfig returns sensible defaults for composition.
func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{
		MaxDiversityRetries: 3,
		MaxBrandElements:    2,
		Diversity:           DefaultDiversityConfig(),
	}
}
