package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/component"
)

func assembleBundle() *component.Bundle {
	return &component.Bundle{
		Pose: &component.Component{
			ID: "pose-001", Slot: component.SlotPose,
			Description: "relaxed lean",
			Text:        "Leaning against a weathered stone railing.",
		},
		Outfit: &component.Component{
			ID: "out-001", Slot: component.SlotOutfit,
			Text: "a tailored ivory silk blazer over wide-leg trousers",
		},
		Location: &component.Component{
			ID: "loc-001", Slot: component.SlotLocation,
			Description: "rooftop terrace",
			Text:        "a rooftop terrace overlooking the old town",
		},
		Lighting: &component.Component{
			ID: "light-001", Slot: component.SlotLighting,
			Text: "warm golden hour light raking across the scene",
		},
		Camera: &component.Component{
			ID: "cam-001", Slot: component.SlotCamera,
			Text: "shot at 85mm with a shallow depth of field",
		},
	}
}

func TestAssemble(t *testing.T) {
	s := &Session{req: component.BatchRequest{Category: "golden-hour-luxury"}}
	b := assembleBundle()

	p := s.assemble(b, 0.85)

	require.NotNil(t, p)
	assert.Same(t, b, p.Bundle)
	assert.Equal(t, "golden-hour-luxury", p.Category)
	assert.InDelta(t, 0.85, p.DiversityScore, 1e-9)
	assert.Empty(t, p.BrandElementIDs)
	assert.Equal(t, len(strings.Fields(p.Prompt)), p.WordCount)

	// Section order: identity anchor, outfit+pose, styling default,
	// location, lighting, camera, aesthetic.
	assert.True(t, strings.HasPrefix(p.Prompt, identityAnchor))
	assert.Contains(t, p.Prompt, "Wearing a tailored ivory silk blazer over wide-leg trousers, leaning against a weathered stone railing")
	assert.Contains(t, p.Prompt, defaultStylingLine)
	assert.Contains(t, p.Prompt, "Set in a rooftop terrace overlooking the old town")
	assert.Contains(t, p.Prompt, "Warm golden hour light")
	assert.Contains(t, p.Prompt, "Shot at 85mm")
	assert.Contains(t, p.Prompt, "Overall aesthetic: warm, cinematic")

	assert.True(t, strings.HasSuffix(p.Prompt, "."))
	assert.NotContains(t, p.Prompt, "..")
}

func TestAssembleWithStylingAndBrand(t *testing.T) {
	s := &Session{req: component.BatchRequest{Category: "coastal"}}
	b := assembleBundle()
	b.Styling = &component.Component{
		ID: "style-001", Slot: component.SlotStyling,
		Text: "loose beach waves and a sunkissed glow",
	}
	b.BrandElements = []*component.Component{
		{ID: "brand-001", Slot: component.SlotBrandElement, Text: "the monogram tote resting beside her"},
		{ID: "brand-002", Slot: component.SlotBrandElement, Text: "gold logo earrings"},
	}

	p := s.assemble(b, 1.0)

	assert.NotContains(t, p.Prompt, defaultStylingLine)
	assert.Contains(t, p.Prompt, "loose beach waves")
	assert.Contains(t, p.Prompt, "Featuring the monogram tote resting beside her and gold logo earrings")
	assert.Equal(t, []string{"brand-001", "brand-002"}, p.BrandElementIDs)
}

func TestNormalizePunctuation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a sentence", "a sentence."},
		{"a sentence.", "a sentence."},
		{"doubled up.. here", "doubled up. here."},
		{"spaced. . out", "spaced. out."},
		{"  padded  ", "padded."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePunctuation(tt.in))
		})
	}
}

func TestAestheticPhrase(t *testing.T) {
	light := func(text string) *component.Component {
		return &component.Component{ID: "l", Slot: component.SlotLighting, Text: text}
	}
	loc := func(text string) *component.Component {
		return &component.Component{ID: "p", Slot: component.SlotLocation, Text: text}
	}

	tests := []struct {
		name     string
		category string
		lighting *component.Component
		location *component.Component
		want     string
	}{
		{"golden hour wins", "x", light("golden hour glow"), loc("anywhere"), "warm, cinematic"},
		{"studio", "x", light("studio softbox"), loc("anywhere"), "professional, clean"},
		{"coastal", "x", light("soft light"), loc("a beach cove"), "airy, coastal"},
		{"luxury from category", "luxury-editorial", light("soft light"), loc("anywhere"), "polished, elevated"},
		{"cozy", "x", light("flickering candle light"), loc("anywhere"), "intimate, warm"},
		{"default", "x", light("even light"), loc("anywhere"), "refined, editorial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aestheticPhrase(tt.category, tt.lighting, tt.location))
		})
	}
}

func TestGenerateTitle(t *testing.T) {
	mk := func(slot component.SlotType, desc, text string) *component.Component {
		return &component.Component{ID: "x", Slot: slot, Description: desc, Text: text}
	}

	tests := []struct {
		name     string
		location *component.Component
		pose     *component.Component
		want     string
	}{
		{
			name:     "location and pose keywords",
			location: mk(component.SlotLocation, "rooftop terrace", ""),
			pose:     mk(component.SlotPose, "relaxed lean", ""),
			want:     "Rooftop Relaxed",
		},
		{
			name:     "falls back to text when description is empty",
			location: mk(component.SlotLocation, "", "sunlit courtyard"),
			pose:     mk(component.SlotPose, "", "kneeling gently"),
			want:     "Courtyard Kneeling",
		},
		{
			name:     "generic fallback",
			location: mk(component.SlotLocation, "", "the"),
			pose:     mk(component.SlotPose, "", "and"),
			want:     "Signature Concept",
		},
		{
			name:     "location only",
			location: mk(component.SlotLocation, "marble lobby", ""),
			pose:     mk(component.SlotPose, "", "sit"),
			want:     "Marble Moment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateTitle(tt.location, tt.pose))
		})
	}
}

func TestGenerateDescription(t *testing.T) {
	pose := &component.Component{ID: "p", Slot: component.SlotPose, Description: "graceful stretch"}
	loc := &component.Component{ID: "l", Slot: component.SlotLocation, Description: "garden pavilion"}
	light := &component.Component{ID: "li", Slot: component.SlotLighting, Text: "golden hour rays"}

	got := generateDescription(pose, loc, light)
	assert.Equal(t, "A graceful moment in pavilion, bathed in warm golden light.", got)

	// Missing descriptions degrade to generic phrasing.
	bare := &component.Component{ID: "b", Slot: component.SlotPose, Description: "the"}
	got = generateDescription(bare, &component.Component{ID: "l2", Slot: component.SlotLocation, Description: "a"},
		&component.Component{ID: "li2", Slot: component.SlotLighting, Text: "even light"})
	assert.Equal(t, "A styled moment in a curated setting, in soft natural light.", got)
}
