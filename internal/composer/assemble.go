package composer

import (
	"strings"

	"promptforge/internal/component"
	"promptforge/internal/diversity"
)

// identityAnchor opens every assembled prompt. It pins the depicted
// subject's visual identity to the caller's reference without inviting a
// verbatim copy of any reference image.
const identityAnchor = "The subject's visual identity must stay consistent with the provided reference, " +
	"matching facial features, hair color and body proportions naturally without replicating any reference image verbatim"

// defaultStylingLine substitutes for a missing styling component.
const defaultStylingLine = "Hair styled naturally with soft, polished makeup"

// assemble builds the final prompt text and presentation metadata for an
// accepted bundle.
func (s *Session) assemble(b *component.Bundle, score float64) *component.ComposedPrompt {
	sections := []string{
		identityAnchor,
		fuseOutfitPose(b.Outfit, b.Pose),
	}

	if b.Styling != nil {
		sections = append(sections, trimSentence(b.Styling.Text))
	} else {
		sections = append(sections, defaultStylingLine)
	}

	sections = append(sections,
		"Set in "+trimSentence(b.Location.Text),
		capitalize(trimSentence(b.Lighting.Text)),
	)

	if len(b.BrandElements) > 0 {
		texts := make([]string, len(b.BrandElements))
		for i, el := range b.BrandElements {
			texts[i] = trimSentence(el.Text)
		}
		sections = append(sections, "Featuring "+strings.Join(texts, " and "))
	}

	sections = append(sections,
		capitalize(trimSentence(b.Camera.Text)),
		"Overall aesthetic: "+aestheticPhrase(s.req.Category, b.Lighting, b.Location),
	)

	prompt := normalizePunctuation(strings.Join(sections, ". "))

	brandIDs := make([]string, len(b.BrandElements))
	for i, el := range b.BrandElements {
		brandIDs[i] = el.ID
	}

	return &component.ComposedPrompt{
		Prompt:          prompt,
		Bundle:          b,
		Title:           generateTitle(b.Location, b.Pose),
		Description:     generateDescription(b.Pose, b.Location, b.Lighting),
		Category:        s.req.Category,
		WordCount:       len(strings.Fields(prompt)),
		DiversityScore:  score,
		BrandElementIDs: brandIDs,
	}
}

// fuseOutfitPose joins the outfit and pose fragments into one sentence.
func fuseOutfitPose(outfit, pose *component.Component) string {
	return "Wearing " + trimSentence(outfit.Text) + ", " + lowerFirst(trimSentence(pose.Text))
}

// aestheticPhrase synthesizes a mood descriptor from keyword hits across
// the category name and the chosen lighting/location text.
func aestheticPhrase(category string, lighting, location *component.Component) string {
	t := strings.ToLower(category + " " + lighting.Text + " " + location.Text)
	switch {
	case strings.Contains(t, "golden hour") || strings.Contains(t, "sunset"):
		return "warm, cinematic"
	case strings.Contains(t, "studio"):
		return "professional, clean"
	case strings.Contains(t, "beach") || strings.Contains(t, "coastal") || strings.Contains(t, "ocean"):
		return "airy, coastal"
	case strings.Contains(t, "luxury") || strings.Contains(t, "designer"):
		return "polished, elevated"
	case strings.Contains(t, "candle") || strings.Contains(t, "fire") || strings.Contains(t, "cozy"):
		return "intimate, warm"
	default:
		return "refined, editorial"
	}
}

// normalizePunctuation collapses accidental double periods and guarantees a
// single terminal period.
func normalizePunctuation(s string) string {
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	s = strings.ReplaceAll(s, ". .", ".")
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// trimSentence removes surrounding whitespace and any trailing period so
// fragments can be joined with uniform punctuation.
func trimSentence(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

var titleStopwords = map[string]bool{
	"with": true, "that": true, "this": true, "from": true, "into": true,
	"over": true, "against": true, "while": true, "near": true, "the": true,
	"and": true, "soft": true, "light": true, "shot": true, "pose": true,
}

// salientKeyword extracts the most distinctive word from a short
// description: the longest word over three characters that is not a
// stopword.
func salientKeyword(text string) string {
	best := ""
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?")
		if len(word) <= 3 || titleStopwords[word] {
			continue
		}
		if len(word) > len(best) {
			best = word
		}
	}
	return best
}

// generateTitle combines a salient keyword each from the location and pose
// descriptions, falling back to a generic label when neither yields one.
func generateTitle(location, pose *component.Component) string {
	loc := salientKeyword(location.Description)
	if loc == "" {
		loc = salientKeyword(location.Text)
	}
	act := salientKeyword(pose.Description)
	if act == "" {
		act = salientKeyword(pose.Text)
	}

	switch {
	case loc != "" && act != "":
		return capitalize(loc) + " " + capitalize(act)
	case loc != "":
		return capitalize(loc) + " Moment"
	case act != "":
		return capitalize(act) + " Concept"
	default:
		return "Signature Concept"
	}
}

// generateDescription builds a one-sentence summary from a simplified pose
// action, a simplified location name, and a mood clause derived from the
// lighting.
func generateDescription(pose, location, lighting *component.Component) string {
	action := salientKeyword(pose.Description)
	if action == "" {
		action = "styled"
	}
	place := salientKeyword(location.Description)
	if place == "" {
		place = "a curated setting"
	}

	var mood string
	switch diversity.ClassifyLighting(lighting) {
	case diversity.LightingGoldenHour:
		mood = "bathed in warm golden light"
	case diversity.LightingStudio:
		mood = "with clean studio polish"
	case diversity.LightingWindow:
		mood = "lit by soft window light"
	case diversity.LightingWarm:
		mood = "wrapped in a warm ambient glow"
	default:
		mood = "in soft natural light"
	}

	return "A " + action + " moment in " + place + ", " + mood + "."
}
