package component

// Metadata is the slot-specific classification attached to a component.
// It is a tagged variant keyed by slot type: each concrete implementation
// belongs to exactly one slot, so a filter built from a pose classification
// can never accidentally match a lighting component even when the raw
// strings collide.
type Metadata interface {
	// Slot returns the slot type this classification belongs to.
	Slot() SlotType

	// Value returns the raw classification string (e.g. "standing").
	Value() string
}

// PoseMeta classifies a pose component:
// standing|sitting|kneeling|walking|yoga|editorial|casual|dynamic.
type PoseMeta string

func (m PoseMeta) Slot() SlotType { return SlotPose }
func (m PoseMeta) Value() string  { return string(m) }

// LocationMeta classifies a location component:
// indoor|outdoor|studio|transitional.
type LocationMeta string

func (m LocationMeta) Slot() SlotType { return SlotLocation }
func (m LocationMeta) Value() string  { return string(m) }

// LightingMeta classifies a lighting component:
// natural|studio|golden-hour|ambient|firelight|window-light.
type LightingMeta string

func (m LightingMeta) Slot() SlotType { return SlotLighting }
func (m LightingMeta) Value() string  { return string(m) }

// OutfitMeta classifies an outfit component:
// casual|athletic|luxury|editorial|minimal.
type OutfitMeta string

func (m OutfitMeta) Slot() SlotType { return SlotOutfit }
func (m OutfitMeta) Value() string  { return string(m) }

// CameraMeta classifies a camera component:
// close-up|medium|full-body|three-quarter.
type CameraMeta string

func (m CameraMeta) Slot() SlotType { return SlotCamera }
func (m CameraMeta) Value() string  { return string(m) }

// MetadataFor builds the metadata variant for a slot from its raw
// classification string. Returns false for slots that carry no
// classification or for an empty value.
func MetadataFor(slot SlotType, value string) (Metadata, bool) {
	if value == "" {
		return nil, false
	}
	switch slot {
	case SlotPose:
		return PoseMeta(value), true
	case SlotLocation:
		return LocationMeta(value), true
	case SlotLighting:
		return LightingMeta(value), true
	case SlotOutfit:
		return OutfitMeta(value), true
	case SlotCamera:
		return CameraMeta(value), true
	default:
		return nil, false
	}
}

// MetadataEqual reports whether two classifications are the same variant
// with the same value. A nil on either side never matches.
func MetadataEqual(a, b Metadata) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Slot() == b.Slot() && a.Value() == b.Value()
}
