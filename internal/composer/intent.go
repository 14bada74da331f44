// Package composer orchestrates prompt composition: it analyzes the
// caller's free-text intent, selects one component per slot with
// compatibility rules between slots, gates every candidate bundle through
// the diversity engine, and assembles the final prompt text.
package composer

import "strings"

// IntentProfile holds the biases derived from a caller's free-text request.
// Derivation is heuristic keyword matching, not natural-language
// understanding; a missed intent degrades gracefully to unbiased random
// selection.
type IntentProfile struct {
	WantsMovement   bool
	WantsCloseUp    bool
	WantsFullBody   bool
	WantsOutdoor    bool
	WantsIndoor     bool
	WantsGoldenHour bool
	WantsEditorial  bool
	WantsCasual     bool

	// Brand is an explicit brand mention, matched against the brands the
	// database knows about.
	Brand string

	// PoseKeyword is an explicitly mentioned pose word, if any.
	PoseKeyword string

	// LocationKeyword is an explicitly mentioned location word, if any.
	LocationKeyword string
}

var poseLexicon = []string{
	"standing", "sitting", "walking", "kneeling", "lying", "yoga",
	"dancing", "stretching", "leaning",
}

var locationLexicon = []string{
	"beach", "cafe", "studio", "rooftop", "park", "kitchen", "gym",
	"street", "garden", "hotel", "office", "loft",
}

// AnalyzeIntent scans free text for keyword families and returns the
// derived biases. knownBrands is the set of brands present in the corpus;
// the first one mentioned in the text wins.
func AnalyzeIntent(text string, knownBrands []string) IntentProfile {
	t := strings.ToLower(text)

	profile := IntentProfile{
		WantsMovement:   containsAny(t, "movement", "moving", "walking", "dynamic", "action", "motion"),
		WantsCloseUp:    containsAny(t, "close-up", "close up", "portrait", "face", "headshot"),
		WantsFullBody:   containsAny(t, "full body", "full-body", "full length", "head to toe"),
		WantsOutdoor:    containsAny(t, "outdoor", "outside", "nature", "beach", "park", "street", "rooftop"),
		WantsIndoor:     containsAny(t, "indoor", "inside", "interior", "at home", "studio"),
		WantsGoldenHour: containsAny(t, "golden hour", "sunset", "sunrise", "warm light"),
		WantsEditorial:  containsAny(t, "editorial", "high fashion", "magazine", "vogue", "sophisticated"),
		WantsCasual:     containsAny(t, "casual", "relaxed", "everyday", "laid-back", "effortless"),
	}

	for _, brand := range knownBrands {
		if brand != "" && strings.Contains(t, strings.ToLower(brand)) {
			profile.Brand = brand
			break
		}
	}

	for _, word := range poseLexicon {
		if strings.Contains(t, word) {
			profile.PoseKeyword = word
			break
		}
	}

	for _, word := range locationLexicon {
		if strings.Contains(t, word) {
			profile.LocationKeyword = word
			break
		}
	}

	return profile
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
