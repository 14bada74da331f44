package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want IntentProfile
	}{
		{
			name: "empty text has no biases",
			text: "",
			want: IntentProfile{},
		},
		{
			name: "movement and outdoor",
			text: "something dynamic outside, lots of motion",
			want: IntentProfile{WantsMovement: true, WantsOutdoor: true},
		},
		{
			name: "golden hour close-up",
			text: "a warm sunset portrait",
			want: IntentProfile{WantsCloseUp: true, WantsGoldenHour: true},
		},
		{
			name: "editorial full body",
			text: "high fashion, full length, head to toe",
			want: IntentProfile{WantsFullBody: true, WantsEditorial: true},
		},
		{
			name: "casual indoor",
			text: "relaxed everyday shots at home",
			want: IntentProfile{WantsIndoor: true, WantsCasual: true},
		},
		{
			name: "pose keyword extracted",
			text: "her sitting somewhere quiet",
			want: IntentProfile{PoseKeyword: "sitting"},
		},
		{
			name: "location keyword extracted",
			text: "shots on a rooftop at night",
			want: IntentProfile{WantsOutdoor: true, LocationKeyword: "rooftop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeIntent(tt.text, nil))
		})
	}
}

func TestAnalyzeIntentBrandMatching(t *testing.T) {
	brands := []string{"Aurelle", "Zephyr"}

	p := AnalyzeIntent("feature the aurelle collection", brands)
	assert.Equal(t, "Aurelle", p.Brand)

	p = AnalyzeIntent("no brand mentioned", brands)
	assert.Empty(t, p.Brand)

	// First known brand mentioned wins.
	p = AnalyzeIntent("zephyr only", brands)
	assert.Equal(t, "Zephyr", p.Brand)
}

func TestAnalyzeIntentConflictingFamilies(t *testing.T) {
	// Conflicting biases are both recorded; selection resolves them by
	// trying each in a fixed order.
	p := AnalyzeIntent("outdoor shots but also some indoor studio work", nil)
	assert.True(t, p.WantsOutdoor)
	assert.True(t, p.WantsIndoor)
}
