// Package metrics aggregates diversity and quality statistics per composed
// batch, plus optional user-experience signals reported back by the calling
// application. Tracking is observational only and never influences
// generation. All state is in-memory, unbounded, and per-process; the
// tracker is diagnostic, so no eviction policy is needed.
package metrics

import (
	"regexp"
	"sync"
	"time"

	"promptforge/internal/component"
	"promptforge/internal/diversity"
	"promptforge/internal/logging"
)

// Detail level classifications for a batch's prompts.
const (
	DetailSpecific = "specific"
	DetailModerate = "moderate"
	DetailGeneric  = "generic"
)

var (
	technicalSpecsRe = regexp.MustCompile(`(?i)\b(lens|aperture|\d+mm|f/[0-9.]+|bokeh|depth of field)\b`)
	lightingDetailRe = regexp.MustCompile(`(?i)\b(light|lighting|glow|shadow|illuminat|golden hour|softbox)`)
)

// DiversityMetrics summarizes how varied a batch's concepts are.
type DiversityMetrics struct {
	// AvgPairwiseSimilarity is the mean weighted-category similarity over
	// all concept pairs in the batch.
	AvgPairwiseSimilarity float64 `json:"avg_pairwise_similarity"`

	// PoseRepetitionRate is the share (percent) of the batch taken by its
	// most frequent pose category.
	PoseRepetitionRate float64 `json:"pose_repetition_rate"`

	// LocationRepetitionRate is the same measure for location categories.
	LocationRepetitionRate float64 `json:"location_repetition_rate"`

	// DistinctComponents counts unique component IDs used in the batch.
	DistinctComponents int `json:"distinct_components"`

	// ComponentReuseRate is distinct components used over the estimated
	// corpus size available.
	ComponentReuseRate float64 `json:"component_reuse_rate"`
}

// QualityMetrics summarizes how detailed a batch's prompts are.
type QualityMetrics struct {
	AvgWordCount        float64 `json:"avg_word_count"`
	HasTechnicalSpecs   bool    `json:"has_technical_specs"`
	HasLightingDetails  bool    `json:"has_lighting_details"`
	HasBrandIntegration bool    `json:"has_brand_integration"`

	// DetailLevel is specific, moderate, or generic.
	DetailLevel string `json:"detail_level"`
}

// UXSignals carries the optional downstream signals a caller reports after
// users interact with a batch. Nil fields are left untouched on merge; no
// validation is performed.
type UXSignals struct {
	ApprovalRate          *float64
	RegenerationRequests  *int
	TimeToFirstGeneration *time.Duration
	SatisfactionScore     *float64
}

// UserExperience is the merged per-batch user-experience record.
type UserExperience struct {
	ApprovalRate          float64       `json:"approval_rate"`
	RegenerationRequests  int           `json:"regeneration_requests"`
	TimeToFirstGeneration time.Duration `json:"time_to_first_generation"`
	SatisfactionScore     float64       `json:"satisfaction_score"`
}

// BatchMetrics is the read-only snapshot computed when a batch completes.
type BatchMetrics struct {
	BatchID   string           `json:"batch_id"`
	Category  string           `json:"category"`
	BatchSize int              `json:"batch_size"`
	Diversity DiversityMetrics `json:"diversity"`
	Quality   QualityMetrics   `json:"quality"`
	UX        UserExperience   `json:"ux"`
	HasUX     bool             `json:"has_ux"`
	TrackedAt time.Time        `json:"tracked_at"`
}

// AggregatedMetrics rolls every tracked batch into global summaries.
type AggregatedMetrics struct {
	BatchCount                int            `json:"batch_count"`
	AvgPairwiseSimilarity     float64        `json:"avg_pairwise_similarity"`
	AvgPoseRepetitionRate     float64        `json:"avg_pose_repetition_rate"`
	AvgLocationRepetitionRate float64        `json:"avg_location_repetition_rate"`
	AvgWordCount              float64        `json:"avg_word_count"`
	AvgApprovalRate           float64        `json:"avg_approval_rate"`
	TotalRegenerations        int            `json:"total_regenerations"`
	AvgSatisfactionScore      float64        `json:"avg_satisfaction_score"`
	DetailLevels              map[string]int `json:"detail_levels"`
}

// Tracker records metrics for completed batches, keyed by caller-supplied
// batch ID. The tracker is process-wide and safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	batches    map[string]*BatchMetrics
	corpusSize int
}

// NewTracker creates an empty metrics tracker.
func NewTracker() *Tracker {
	return &Tracker{
		batches: make(map[string]*BatchMetrics),
	}
}

// SetCorpusSize records the estimated total number of components available,
// used for the reuse-rate ratio.
func (t *Tracker) SetCorpusSize(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.corpusSize = n
}

// TrackBatch computes and stores diversity and quality metrics for a
// finished batch. Re-tracking a batch ID overwrites the previous snapshot
// but preserves merged user-experience signals.
func (t *Tracker) TrackBatch(batchID, category string, prompts []*component.ComposedPrompt, bundles []*component.Bundle) BatchMetrics {
	timer := logging.StartTimer(logging.CategoryMetrics, "TrackBatch")
	defer timer.Stop()

	bm := BatchMetrics{
		BatchID:   batchID,
		Category:  category,
		BatchSize: len(prompts),
		Diversity: t.diversityMetrics(bundles),
		Quality:   qualityMetrics(prompts),
		TrackedAt: time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.batches[batchID]; ok && prev.HasUX {
		bm.UX = prev.UX
		bm.HasUX = true
	}
	t.batches[batchID] = &bm

	logging.Metrics("Tracked batch %s: size=%d avgSim=%.2f detail=%s",
		batchID, bm.BatchSize, bm.Diversity.AvgPairwiseSimilarity, bm.Quality.DetailLevel)
	return bm
}

func (t *Tracker) diversityMetrics(bundles []*component.Bundle) DiversityMetrics {
	dm := DiversityMetrics{}
	if len(bundles) == 0 {
		return dm
	}

	profiles := make([]diversity.Profile, len(bundles))
	for i, b := range bundles {
		profiles[i] = diversity.ProfileOf(b)
	}

	// Average similarity across all concept pairs.
	pairs := 0
	simSum := 0.0
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			simSum += diversity.Similarity(profiles[i], profiles[j])
			pairs++
		}
	}
	if pairs > 0 {
		dm.AvgPairwiseSimilarity = simSum / float64(pairs)
	}

	poseCounts := make(map[diversity.PoseCategory]int)
	locCounts := make(map[diversity.LocationCategory]int)
	for _, p := range profiles {
		poseCounts[p.Pose]++
		locCounts[p.Location]++
	}
	dm.PoseRepetitionRate = repetitionRate(maxCount(poseCounts), len(bundles))
	dm.LocationRepetitionRate = repetitionRate(maxCount(locCounts), len(bundles))

	distinct := make(map[string]struct{})
	for _, b := range bundles {
		for _, id := range b.ComponentIDs() {
			distinct[id] = struct{}{}
		}
	}
	dm.DistinctComponents = len(distinct)

	t.mu.Lock()
	corpus := t.corpusSize
	t.mu.Unlock()
	if corpus > 0 {
		dm.ComponentReuseRate = float64(len(distinct)) / float64(corpus)
	}

	return dm
}

func maxCount[K comparable](counts map[K]int) int {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	return max
}

func repetitionRate(most, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(most) / float64(total) * 100
}

func qualityMetrics(prompts []*component.ComposedPrompt) QualityMetrics {
	qm := QualityMetrics{DetailLevel: DetailGeneric}
	if len(prompts) == 0 {
		return qm
	}

	wordSum := 0
	for _, p := range prompts {
		wordSum += p.WordCount
		if technicalSpecsRe.MatchString(p.Prompt) {
			qm.HasTechnicalSpecs = true
		}
		if lightingDetailRe.MatchString(p.Prompt) {
			qm.HasLightingDetails = true
		}
		if len(p.BrandElementIDs) > 0 {
			qm.HasBrandIntegration = true
		}
	}
	qm.AvgWordCount = float64(wordSum) / float64(len(prompts))

	switch {
	case qm.AvgWordCount >= 150 && qm.HasTechnicalSpecs && qm.HasLightingDetails:
		qm.DetailLevel = DetailSpecific
	case qm.AvgWordCount >= 100 && (qm.HasTechnicalSpecs || qm.HasLightingDetails):
		qm.DetailLevel = DetailModerate
	}

	return qm
}

// TrackUserExperience merges caller-supplied signals into a batch's record.
// The merge is additive/overwrite per field with no validation; an unknown
// batch ID creates a bare record.
func (t *Tracker) TrackUserExperience(batchID string, sig UXSignals) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bm, ok := t.batches[batchID]
	if !ok {
		bm = &BatchMetrics{BatchID: batchID, TrackedAt: time.Now()}
		t.batches[batchID] = bm
	}

	if sig.ApprovalRate != nil {
		bm.UX.ApprovalRate = *sig.ApprovalRate
	}
	if sig.RegenerationRequests != nil {
		bm.UX.RegenerationRequests = *sig.RegenerationRequests
	}
	if sig.TimeToFirstGeneration != nil {
		bm.UX.TimeToFirstGeneration = *sig.TimeToFirstGeneration
	}
	if sig.SatisfactionScore != nil {
		bm.UX.SatisfactionScore = *sig.SatisfactionScore
	}
	bm.HasUX = true
}

// ImportBatch inserts a previously computed snapshot, replacing any
// existing record for the same batch ID. Used when rehydrating a tracker
// from persisted metrics.
func (t *Tracker) ImportBatch(bm BatchMetrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batches[bm.BatchID] = &bm
}

// Batch returns the snapshot for one batch ID.
func (t *Tracker) Batch(batchID string) (BatchMetrics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bm, ok := t.batches[batchID]
	if !ok {
		return BatchMetrics{}, false
	}
	return *bm, true
}

// AggregatedMetrics averages every tracked batch into global diversity,
// quality, and user-experience summaries, including a histogram of detail
// levels.
func (t *Tracker) AggregatedMetrics() AggregatedMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	agg := AggregatedMetrics{
		DetailLevels: make(map[string]int),
	}
	if len(t.batches) == 0 {
		return agg
	}

	uxCount := 0
	for _, bm := range t.batches {
		agg.BatchCount++
		agg.AvgPairwiseSimilarity += bm.Diversity.AvgPairwiseSimilarity
		agg.AvgPoseRepetitionRate += bm.Diversity.PoseRepetitionRate
		agg.AvgLocationRepetitionRate += bm.Diversity.LocationRepetitionRate
		agg.AvgWordCount += bm.Quality.AvgWordCount
		if bm.Quality.DetailLevel != "" {
			agg.DetailLevels[bm.Quality.DetailLevel]++
		}
		if bm.HasUX {
			uxCount++
			agg.AvgApprovalRate += bm.UX.ApprovalRate
			agg.TotalRegenerations += bm.UX.RegenerationRequests
			agg.AvgSatisfactionScore += bm.UX.SatisfactionScore
		}
	}

	n := float64(agg.BatchCount)
	agg.AvgPairwiseSimilarity /= n
	agg.AvgPoseRepetitionRate /= n
	agg.AvgLocationRepetitionRate /= n
	agg.AvgWordCount /= n
	if uxCount > 0 {
		agg.AvgApprovalRate /= float64(uxCount)
		agg.AvgSatisfactionScore /= float64(uxCount)
	}

	return agg
}
