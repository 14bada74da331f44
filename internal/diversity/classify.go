// Package diversity decides whether a proposed concept bundle is
// sufficiently different from every bundle already accepted in the current
// batch, and maintains the batch's acceptance history. Raw slot text is
// first reduced to a small closed category set per slot; similarity is then
// a weighted sum of category equality across slots.
package diversity

import (
	"strings"

	"promptforge/internal/component"
)

// Closed category sets per slot. Classification is deliberately a pure
// text -> category mapping so it can be swapped for a learned classifier
// without touching selection or diversity logic.

type PoseCategory string

const (
	PoseStanding PoseCategory = "standing"
	PoseSitting  PoseCategory = "sitting"
	PoseKneeling PoseCategory = "kneeling"
	PoseMovement PoseCategory = "movement"
	PoseLying    PoseCategory = "lying"
	PoseYoga     PoseCategory = "yoga"
	PoseOther    PoseCategory = "other"
)

type LocationCategory string

const (
	LocationOutdoor LocationCategory = "outdoor"
	LocationIndoor  LocationCategory = "indoor"
	LocationDining  LocationCategory = "dining"
	LocationTravel  LocationCategory = "travel"
	LocationFitness LocationCategory = "fitness"
	LocationOther   LocationCategory = "other"
)

type LightingCategory string

const (
	LightingGoldenHour    LightingCategory = "golden-hour"
	LightingStudio        LightingCategory = "studio"
	LightingNaturalSoft   LightingCategory = "natural-soft"
	LightingNaturalDirect LightingCategory = "natural-direct"
	LightingWindow        LightingCategory = "window"
	LightingWarm          LightingCategory = "warm"
	LightingOther         LightingCategory = "other"
)

type OutfitCategory string

const (
	OutfitAthletic OutfitCategory = "athletic"
	OutfitLuxury   OutfitCategory = "luxury"
	OutfitCasual   OutfitCategory = "casual"
	OutfitMinimal  OutfitCategory = "minimal"
	OutfitOther    OutfitCategory = "other"
)

type FramingCategory string

const (
	FramingCloseUp      FramingCategory = "close-up"
	FramingFullBody     FramingCategory = "full-body"
	FramingThreeQuarter FramingCategory = "three-quarter"
	FramingMedium       FramingCategory = "medium"
	FramingOther        FramingCategory = "other"
)

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ClassifyPoseText reduces free pose text to a pose category.
func ClassifyPoseText(text string) PoseCategory {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "yoga", "stretch", "warrior pose", "lotus", "asana"):
		return PoseYoga
	case containsAny(t, "walk", "strid", "running", "motion", "moving", "twirl", "danc", "jump", "mid-step"):
		return PoseMovement
	case containsAny(t, "kneel", "crouch", "squat"):
		return PoseKneeling
	case containsAny(t, "lying", "lie ", "reclin", "sprawl", "laying"):
		return PoseLying
	case containsAny(t, "sit", "seated", "perch"):
		return PoseSitting
	case containsAny(t, "stand", "leaning", "upright", "posed against"):
		return PoseStanding
	default:
		return PoseOther
	}
}

// ClassifyLocationText reduces free location text to a location category.
func ClassifyLocationText(text string) LocationCategory {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "cafe", "café", "restaurant", "dining", "brunch", "bistro", "wine bar"):
		return LocationDining
	case containsAny(t, "gym", "fitness", "pilates", "yoga studio", "workout"):
		return LocationFitness
	case containsAny(t, "airport", "hotel", "train", "vacation", "travel", "resort"):
		return LocationTravel
	case containsAny(t, "beach", "park", "garden", "outdoor", "rooftop", "street", "field", "forest", "ocean", "terrace", "coastal"):
		return LocationOutdoor
	case containsAny(t, "studio", "loft", "apartment", "indoor", "kitchen", "bedroom", "office", "interior", "living room"):
		return LocationIndoor
	default:
		return LocationOther
	}
}

// ClassifyLightingText reduces free lighting text to a lighting category.
func ClassifyLightingText(text string) LightingCategory {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "golden hour", "sunset", "sunrise", "dusk"):
		return LightingGoldenHour
	case containsAny(t, "studio", "softbox", "strobe", "flash"):
		return LightingStudio
	case containsAny(t, "window"):
		return LightingWindow
	case containsAny(t, "harsh", "direct sun", "midday", "high noon"):
		return LightingNaturalDirect
	case containsAny(t, "candle", "firelight", "fireplace", "warm glow", "lamp", "cozy"):
		return LightingWarm
	case containsAny(t, "soft", "diffused", "overcast", "natural", "daylight"):
		return LightingNaturalSoft
	default:
		return LightingOther
	}
}

// ClassifyOutfitText reduces free outfit text to an outfit category.
func ClassifyOutfitText(text string) OutfitCategory {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "leggings", "sports", "athletic", "activewear", "workout", "gym"):
		return OutfitAthletic
	case containsAny(t, "silk", "cashmere", "designer", "tailored", "luxury", "couture", "gown"):
		return OutfitLuxury
	case containsAny(t, "minimal", "clean lines", "monochrome", "simple"):
		return OutfitMinimal
	case containsAny(t, "jeans", "denim", "t-shirt", "tee", "casual", "relaxed", "hoodie", "sweater"):
		return OutfitCasual
	default:
		return OutfitOther
	}
}

// ClassifyFramingText reduces free camera text to a framing category.
func ClassifyFramingText(text string) FramingCategory {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "close-up", "close up", "headshot", "portrait lens", "85mm"):
		return FramingCloseUp
	case containsAny(t, "full-body", "full body", "full length", "full-length", "wide shot"):
		return FramingFullBody
	case containsAny(t, "three-quarter", "3/4"):
		return FramingThreeQuarter
	case containsAny(t, "medium", "waist-up", "waist up", "half-length"):
		return FramingMedium
	default:
		return FramingOther
	}
}

// componentText joins the searchable text of a component for keyword
// classification.
func componentText(c *component.Component) string {
	if c == nil {
		return ""
	}
	parts := []string{c.Text, c.Description}
	parts = append(parts, c.Tags...)
	return strings.Join(parts, " ")
}

// ClassifyPose categorizes a pose component, preferring its explicit
// classification metadata over keyword matching.
func ClassifyPose(c *component.Component) PoseCategory {
	if c == nil {
		return PoseOther
	}
	if c.Meta != nil {
		switch component.PoseMeta(c.Meta.Value()) {
		case "standing":
			return PoseStanding
		case "sitting":
			return PoseSitting
		case "kneeling":
			return PoseKneeling
		case "walking", "dynamic":
			return PoseMovement
		case "yoga":
			return PoseYoga
		}
	}
	return ClassifyPoseText(componentText(c))
}

// ClassifyLocation categorizes a location component.
func ClassifyLocation(c *component.Component) LocationCategory {
	if c == nil {
		return LocationOther
	}
	if c.Meta != nil {
		switch c.Meta.Value() {
		case "outdoor":
			return LocationOutdoor
		case "indoor", "studio":
			return LocationIndoor
		}
	}
	return ClassifyLocationText(componentText(c))
}

// ClassifyLighting categorizes a lighting component.
func ClassifyLighting(c *component.Component) LightingCategory {
	if c == nil {
		return LightingOther
	}
	if c.Meta != nil {
		switch c.Meta.Value() {
		case "golden-hour":
			return LightingGoldenHour
		case "studio":
			return LightingStudio
		case "window-light":
			return LightingWindow
		case "natural":
			return LightingNaturalSoft
		case "firelight":
			return LightingWarm
		}
	}
	return ClassifyLightingText(componentText(c))
}

// ClassifyOutfit categorizes an outfit component.
func ClassifyOutfit(c *component.Component) OutfitCategory {
	if c == nil {
		return OutfitOther
	}
	if c.Meta != nil {
		switch c.Meta.Value() {
		case "athletic":
			return OutfitAthletic
		case "luxury":
			return OutfitLuxury
		case "casual":
			return OutfitCasual
		case "minimal":
			return OutfitMinimal
		}
	}
	return ClassifyOutfitText(componentText(c))
}

// ClassifyFraming categorizes a camera component.
func ClassifyFraming(c *component.Component) FramingCategory {
	if c == nil {
		return FramingOther
	}
	if c.Meta != nil {
		switch c.Meta.Value() {
		case "close-up":
			return FramingCloseUp
		case "medium":
			return FramingMedium
		case "full-body":
			return FramingFullBody
		case "three-quarter":
			return FramingThreeQuarter
		}
	}
	return ClassifyFramingText(componentText(c))
}
