package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotTypeValid(t *testing.T) {
	for _, slot := range AllSlotTypes() {
		assert.True(t, slot.Valid(), "slot %q should be valid", slot)
	}
	assert.False(t, SlotType("").Valid())
	assert.False(t, SlotType("wardrobe").Valid())
}

func TestRequiredSlots(t *testing.T) {
	required := RequiredSlots()
	require.Len(t, required, 5)
	assert.Contains(t, required, SlotPose)
	assert.Contains(t, required, SlotOutfit)
	assert.Contains(t, required, SlotLocation)
	assert.Contains(t, required, SlotLighting)
	assert.Contains(t, required, SlotCamera)
	assert.NotContains(t, required, SlotStyling)
	assert.NotContains(t, required, SlotBrandElement)
}

func TestComponentValidate(t *testing.T) {
	tests := []struct {
		name    string
		comp    Component
		wantErr string
	}{
		{
			name: "valid component",
			comp: Component{ID: "pose-001", Slot: SlotPose, Text: "standing tall"},
		},
		{
			name: "valid with matching metadata",
			comp: Component{ID: "pose-002", Slot: SlotPose, Text: "seated", Meta: PoseMeta("sitting")},
		},
		{
			name:    "missing ID",
			comp:    Component{Slot: SlotPose, Text: "standing"},
			wantErr: "ID is required",
		},
		{
			name:    "missing text",
			comp:    Component{ID: "pose-003", Slot: SlotPose},
			wantErr: "text is required",
		},
		{
			name:    "unknown slot",
			comp:    Component{ID: "x-001", Slot: "wardrobe", Text: "jacket"},
			wantErr: "unknown slot type",
		},
		{
			name:    "metadata slot mismatch",
			comp:    Component{ID: "pose-004", Slot: SlotPose, Text: "standing", Meta: LightingMeta("studio")},
			wantErr: "metadata for slot",
		},
	}

	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comp.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestComponentUsage(t *testing.T) {
	c := &Component{ID: "loc-001", Slot: SlotLocation, Text: "rooftop terrace"}
	assert.Equal(t, int64(0), c.UsageCount())

	c.AddUsage()
	c.AddUsage()
	assert.Equal(t, int64(2), c.UsageCount())

	c.SetUsage(7)
	assert.Equal(t, int64(7), c.UsageCount())
}

func TestComponentHasTag(t *testing.T) {
	c := &Component{ID: "out-001", Slot: SlotOutfit, Text: "silk blazer", Tags: []string{"editorial", "luxury"}}
	assert.True(t, c.HasTag("editorial"))
	assert.True(t, c.HasTag("luxury"))
	assert.False(t, c.HasTag("casual"))
	assert.False(t, c.HasTag(""))
}

func TestMetadataFor(t *testing.T) {
	tests := []struct {
		name  string
		slot  SlotType
		value string
		want  Metadata
		ok    bool
	}{
		{"pose", SlotPose, "standing", PoseMeta("standing"), true},
		{"location", SlotLocation, "outdoor", LocationMeta("outdoor"), true},
		{"lighting", SlotLighting, "golden-hour", LightingMeta("golden-hour"), true},
		{"outfit", SlotOutfit, "athletic", OutfitMeta("athletic"), true},
		{"camera", SlotCamera, "close-up", CameraMeta("close-up"), true},
		{"empty value", SlotPose, "", nil, false},
		{"unclassified slot", SlotStyling, "minimal", nil, false},
		{"brand element", SlotBrandElement, "logo", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MetadataFor(tt.slot, tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetadataEqual(t *testing.T) {
	assert.True(t, MetadataEqual(PoseMeta("standing"), PoseMeta("standing")))
	assert.False(t, MetadataEqual(PoseMeta("standing"), PoseMeta("sitting")))

	// Same raw string on different slots never matches.
	assert.False(t, MetadataEqual(LocationMeta("studio"), LightingMeta("studio")))

	assert.False(t, MetadataEqual(nil, PoseMeta("standing")))
	assert.False(t, MetadataEqual(PoseMeta("standing"), nil))
	assert.False(t, MetadataEqual(nil, nil))
}

func TestMetadataSlotBinding(t *testing.T) {
	assert.Equal(t, SlotPose, PoseMeta("standing").Slot())
	assert.Equal(t, SlotLocation, LocationMeta("indoor").Slot())
	assert.Equal(t, SlotLighting, LightingMeta("natural").Slot())
	assert.Equal(t, SlotOutfit, OutfitMeta("casual").Slot())
	assert.Equal(t, SlotCamera, CameraMeta("medium").Slot())
	assert.Equal(t, "golden-hour", LightingMeta("golden-hour").Value())
}

func TestBundleComplete(t *testing.T) {
	b := &Bundle{
		Pose:     &Component{ID: "p1", Slot: SlotPose, Text: "standing"},
		Outfit:   &Component{ID: "o1", Slot: SlotOutfit, Text: "linen suit"},
		Location: &Component{ID: "l1", Slot: SlotLocation, Text: "beach"},
		Lighting: &Component{ID: "li1", Slot: SlotLighting, Text: "golden light"},
		Camera:   &Component{ID: "c1", Slot: SlotCamera, Text: "85mm close-up"},
	}
	assert.True(t, b.Complete())

	b.Lighting = nil
	assert.False(t, b.Complete())
}

func TestBundleComponents(t *testing.T) {
	b := &Bundle{
		Pose:     &Component{ID: "p1", Slot: SlotPose, Text: "standing"},
		Outfit:   &Component{ID: "o1", Slot: SlotOutfit, Text: "linen suit"},
		Location: &Component{ID: "l1", Slot: SlotLocation, Text: "beach"},
		Lighting: &Component{ID: "li1", Slot: SlotLighting, Text: "golden light"},
		Camera:   &Component{ID: "c1", Slot: SlotCamera, Text: "85mm close-up"},
		BrandElements: []*Component{
			{ID: "b1", Slot: SlotBrandElement, Text: "monogram bag"},
		},
	}

	// Styling is nil and must be skipped, not emitted as a nil entry.
	comps := b.Components()
	require.Len(t, comps, 6)
	for _, c := range comps {
		assert.NotNil(t, c)
	}

	assert.Equal(t, []string{"p1", "o1", "l1", "li1", "c1", "b1"}, b.ComponentIDs())
}

func TestFilterWithoutExclusions(t *testing.T) {
	f := Filter{
		Category:   "golden-hour-luxury",
		Slot:       SlotOutfit,
		ExcludeIDs: []string{"o1", "o2"},
	}

	relaxed := f.WithoutExclusions()
	assert.Empty(t, relaxed.ExcludeIDs)
	assert.Equal(t, f.Category, relaxed.Category)
	assert.Equal(t, f.Slot, relaxed.Slot)

	// Original is untouched.
	assert.Equal(t, []string{"o1", "o2"}, f.ExcludeIDs)
}
