package composer

import (
	"errors"
	"fmt"
	"strings"

	"promptforge/internal/component"
	"promptforge/internal/config"
	"promptforge/internal/diversity"
	"promptforge/internal/library"
	"promptforge/internal/logging"
)

// ErrNoCandidates indicates a required slot query returned no components
// even after relaxing exclusions. An empty corpus, an exhausted filter, and
// a slot with zero ingested components for the category all surface this
// same error; callers decide whether to retry with wider filters, skip the
// concept, or abort the batch.
var ErrNoCandidates = errors.New("no candidate components")

// Builder produces composed prompts from a component database. A builder is
// stateless across batches; all per-batch state lives in the Session it
// creates.
type Builder struct {
	db  *library.Database
	cfg config.ComposerConfig
}

// NewBuilder creates a builder with default configuration.
func NewBuilder(db *library.Database) *Builder {
	return &Builder{
		db:  db,
		cfg: config.DefaultComposerConfig(),
	}
}

// SetConfig overrides the composer configuration.
func (b *Builder) SetConfig(cfg config.ComposerConfig) {
	b.cfg = cfg
}

// Session holds the state of one batch: a fresh diversity engine, the
// analyzed intent, and the exclusion set accumulated from prior concepts.
// Sessions are not safe for concurrent use; create one per batch.
type Session struct {
	builder *Builder
	db      *library.Database
	engine  *diversity.Engine
	req     component.BatchRequest
	intent  IntentProfile

	// excluded is the union of every component ID used by any concept
	// already produced in this session, plus any prior IDs the caller
	// carried over. Passed to every database query so literal reuse is
	// structurally prevented before diversity scoring even runs.
	excluded   []string
	excludedIn map[string]struct{}
}

// NewSession begins a batch. The brand explicitly set on the request wins
// over a brand mentioned in the intent text.
func (b *Builder) NewSession(req component.BatchRequest) *Session {
	intent := AnalyzeIntent(req.UserIntent, b.db.Brands())
	if req.Brand == "" && intent.Brand != "" {
		req.Brand = intent.Brand
	}

	s := &Session{
		builder:    b,
		db:         b.db,
		engine:     diversity.NewEngine(b.cfg.Diversity),
		req:        req,
		intent:     intent,
		excludedIn: make(map[string]struct{}),
	}
	for _, id := range req.PriorComponentIDs {
		s.exclude(id)
	}
	return s
}

// ComposeBatch generates the requested number of concepts in a fresh
// session. Failures are per-concept: the returned slice holds every concept
// composed before the first failure, and the error reports that failure.
// Returning fewer concepts than requested is the caller's policy decision.
func (b *Builder) ComposeBatch(req component.BatchRequest) ([]*component.ComposedPrompt, error) {
	timer := logging.StartTimer(logging.CategoryComposer, "ComposeBatch")
	defer timer.StopWithInfo()

	if req.Count <= 0 {
		return nil, fmt.Errorf("batch count must be positive, got %d", req.Count)
	}

	session := b.NewSession(req)
	prompts := make([]*component.ComposedPrompt, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		prompt, err := session.Compose()
		if err != nil {
			return prompts, fmt.Errorf("concept %d/%d: %w", i+1, req.Count, err)
		}
		prompts = append(prompts, prompt)
	}

	logging.Composer("Composed batch: category=%q brand=%q count=%d",
		req.Category, req.Brand, len(prompts))
	return prompts, nil
}

func (s *Session) exclude(id string) {
	if _, ok := s.excludedIn[id]; ok {
		return
	}
	s.excludedIn[id] = struct{}{}
	s.excluded = append(s.excluded, id)
}

// slotFilter builds the base filter for one slot: category narrowing plus
// the session exclusion set.
func (s *Session) slotFilter(slot component.SlotType) component.Filter {
	return component.Filter{
		Category:   s.req.Category,
		Slot:       slot,
		ExcludeIDs: s.excluded,
	}
}

// Compose produces one concept: selects a bundle, gates it through the
// diversity engine with bounded reselection, accounts usage, and assembles
// the final prompt.
func (s *Session) Compose() (*component.ComposedPrompt, error) {
	bundle, err := s.buildBundle()
	if err != nil {
		return nil, err
	}

	decision := s.engine.Check(bundle)

	// On rejection, reselect the most recently chosen scored slots first
	// (camera, then lighting), rebuilding the whole bundle as the final
	// attempt. A bundle still rejected after the retry budget is accepted
	// with a warning: on a small corpus, forward progress beats strict
	// diversity.
	for attempt := 1; !decision.Accepted && attempt <= s.builder.cfg.MaxDiversityRetries; attempt++ {
		logging.ComposerDebug("Diversity rejection (attempt %d): %s", attempt, decision.Reason)

		switch attempt {
		case 1:
			if cam, err := s.selectCamera(bundle.Pose, bundle.Camera.ID); err == nil {
				bundle.Camera = cam
			}
		case 2:
			if light, err := s.selectLighting(bundle.Location, bundle.Lighting.ID); err == nil {
				bundle.Lighting = light
			}
		default:
			rebuilt, err := s.buildBundle()
			if err != nil {
				break
			}
			bundle = rebuilt
		}

		decision = s.engine.Check(bundle)
	}

	if !decision.Accepted {
		logging.ComposerWarn("Accepting bundle after %d diversity rejections: %s",
			s.builder.cfg.MaxDiversityRetries, decision.Reason)
	}

	// Usage accounting happens only for accepted concepts.
	s.engine.Record(bundle)
	for _, id := range bundle.ComponentIDs() {
		s.db.IncrementUsage(id)
		s.exclude(id)
	}

	prompt := s.assemble(bundle, decision.Score)
	return prompt, nil
}

// buildBundle runs slot selection in order, threading compatibility from
// earlier slots into later ones.
func (s *Session) buildBundle() (*component.Bundle, error) {
	pose, err := s.selectPose()
	if err != nil {
		return nil, err
	}
	outfit, err := s.selectOutfit()
	if err != nil {
		return nil, err
	}
	location, err := s.selectLocation()
	if err != nil {
		return nil, err
	}
	lighting, err := s.selectLighting(location, "")
	if err != nil {
		return nil, err
	}
	camera, err := s.selectCamera(pose, "")
	if err != nil {
		return nil, err
	}

	bundle := &component.Bundle{
		Pose:     pose,
		Outfit:   outfit,
		Location: location,
		Lighting: lighting,
		Camera:   camera,
		Styling:  s.selectStyling(),
	}

	if s.req.Brand != "" {
		bundle.BrandElements = s.selectBrandElements()
	}

	return bundle, nil
}

// requireCandidates resolves a slot's candidates, relaxing exclusions as a
// last resort before failing. Reuse across concepts is preferable to an
// empty slot when a pool is smaller than the batch.
func (s *Session) requireCandidates(f component.Filter) ([]*component.Component, error) {
	if cands := s.db.Query(f); len(cands) > 0 {
		return cands, nil
	}
	if cands := s.db.Query(f.WithoutExclusions()); len(cands) > 0 {
		logging.ComposerDebug("Relaxed exclusions for slot %s", f.Slot)
		return cands, nil
	}
	return nil, fmt.Errorf("%w for required slot %s (category=%q brand=%q)",
		ErrNoCandidates, f.Slot, f.Category, f.Brand)
}

// selectPose picks the pose component. Once four or more distinct pose
// categories appear in the batch history, pure randomness is replaced by
// preferring the least-used pose category, so variety continues after the
// easy diversity budget is exhausted.
func (s *Session) selectPose() (*component.Component, error) {
	f := s.slotFilter(component.SlotPose)
	if s.intent.PoseKeyword != "" {
		keyed := f
		keyed.Tags = []string{s.intent.PoseKeyword}
		if cands := s.db.Query(keyed); len(cands) > 0 {
			return s.db.PickFrom(cands), nil
		}
	}

	cands, err := s.requireCandidates(f)
	if err != nil {
		return nil, err
	}

	if s.intent.WantsMovement {
		if sub := filterPoseCategory(cands, diversity.PoseMovement); len(sub) > 0 {
			cands = sub
		}
	}

	counts := s.engine.PoseCategoryCounts()
	if len(counts) >= 4 {
		cands = leastUsedPoseCategory(cands, counts)
	}

	return s.db.PickFrom(cands), nil
}

func filterPoseCategory(cands []*component.Component, cat diversity.PoseCategory) []*component.Component {
	var out []*component.Component
	for _, c := range cands {
		if diversity.ClassifyPose(c) == cat {
			out = append(out, c)
		}
	}
	return out
}

// leastUsedPoseCategory keeps only the candidates whose pose category has
// the lowest usage count in the batch history.
func leastUsedPoseCategory(cands []*component.Component, counts map[diversity.PoseCategory]int) []*component.Component {
	best := -1
	var out []*component.Component
	for _, c := range cands {
		n := counts[diversity.ClassifyPose(c)]
		switch {
		case best == -1 || n < best:
			best = n
			out = out[:0]
			out = append(out, c)
		case n == best:
			out = append(out, c)
		}
	}
	return out
}

// selectOutfit picks the outfit, filtered by brand when one was requested
// and biased by editorial/casual intent tags.
func (s *Session) selectOutfit() (*component.Component, error) {
	f := s.slotFilter(component.SlotOutfit)
	f.Brand = s.req.Brand

	var biasTags []string
	if s.intent.WantsEditorial {
		biasTags = []string{"editorial", "sophisticated"}
	} else if s.intent.WantsCasual {
		biasTags = []string{"casual", "relaxed"}
	}
	for _, tag := range biasTags {
		biased := f
		biased.Tags = []string{tag}
		if c := s.db.GetRandom(biased); c != nil {
			return c, nil
		}
	}

	cands, err := s.requireCandidates(f)
	if err != nil {
		return nil, err
	}
	return s.db.PickFrom(cands), nil
}

// selectLocation picks the location. An explicitly named place in the
// intent text wins over the broader outdoor/indoor bias. When the batch
// already used a location category, a candidate from an unused category is
// preferred so the batch keeps moving through settings.
func (s *Session) selectLocation() (*component.Component, error) {
	f := s.slotFilter(component.SlotLocation)

	var cands []*component.Component
	if kw := s.intent.LocationKeyword; kw != "" {
		keyed := f
		keyed.Tags = []string{kw}
		cands = s.db.Query(keyed)
		if len(cands) == 0 {
			for _, c := range s.db.Query(f) {
				if strings.Contains(strings.ToLower(c.Text), kw) {
					cands = append(cands, c)
				}
			}
		}
	}

	switch {
	case len(cands) > 0:
	case s.intent.WantsOutdoor:
		biased := f
		biased.Meta = component.LocationMeta("outdoor")
		cands = s.db.Query(biased)
	case s.intent.WantsIndoor:
		biased := f
		biased.Meta = component.LocationMeta("indoor")
		cands = s.db.Query(biased)
	}

	if len(cands) == 0 {
		var err error
		cands, err = s.requireCandidates(f)
		if err != nil {
			return nil, err
		}
	}

	used := s.engine.UsedLocationCategories()
	if len(used) > 0 {
		var fresh []*component.Component
		for _, c := range cands {
			if !used[diversity.ClassifyLocation(c)] {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) > 0 {
			cands = fresh
		}
	}

	return s.db.PickFrom(cands), nil
}

// selectLighting picks the lighting slot. Golden hour wins when requested;
// otherwise the chosen location's type defaults it: a studio location draws
// from studio lighting only, an outdoor location prefers natural light.
// avoidID excludes the previously chosen lighting on diversity retries.
func (s *Session) selectLighting(location *component.Component, avoidID string) (*component.Component, error) {
	f := s.slotFilter(component.SlotLighting)
	if avoidID != "" {
		f.ExcludeIDs = append(append([]string{}, f.ExcludeIDs...), avoidID)
	}

	if s.intent.WantsGoldenHour {
		biased := f
		biased.Meta = component.LightingMeta("golden-hour")
		if c := s.db.GetRandom(biased); c != nil {
			return c, nil
		}
	} else if location != nil && location.Meta != nil {
		switch location.Meta.Value() {
		case "studio":
			biased := f
			biased.Meta = component.LightingMeta("studio")
			if c := s.db.GetRandom(biased); c != nil {
				return c, nil
			}
			// No studio lighting ingested at all; fall through rather
			// than fail the concept.
		case "outdoor":
			biased := f
			biased.Meta = component.LightingMeta("natural")
			if c := s.db.GetRandom(biased); c != nil {
				return c, nil
			}
		}
	}

	cands, err := s.requireCandidates(f)
	if err != nil {
		return nil, err
	}
	return s.db.PickFrom(cands), nil
}

// selectCamera picks the framing slot. Complex poses (yoga, movement) bias
// toward full-body framing; explicit close-up/full-body intent applies
// otherwise. avoidID excludes the previously chosen camera on diversity
// retries.
func (s *Session) selectCamera(pose *component.Component, avoidID string) (*component.Component, error) {
	f := s.slotFilter(component.SlotCamera)
	if avoidID != "" {
		f.ExcludeIDs = append(append([]string{}, f.ExcludeIDs...), avoidID)
	}

	var preferred component.Metadata
	poseCat := diversity.ClassifyPose(pose)
	switch {
	case poseCat == diversity.PoseYoga || poseCat == diversity.PoseMovement:
		preferred = component.CameraMeta("full-body")
	case s.intent.WantsCloseUp:
		preferred = component.CameraMeta("close-up")
	case s.intent.WantsFullBody:
		preferred = component.CameraMeta("full-body")
	}

	if preferred != nil {
		biased := f
		biased.Meta = preferred
		if c := s.db.GetRandom(biased); c != nil {
			return c, nil
		}
	}

	cands, err := s.requireCandidates(f)
	if err != nil {
		return nil, err
	}
	return s.db.PickFrom(cands), nil
}

// selectStyling picks the optional styling component; nil is tolerated and
// assembly substitutes a default line.
func (s *Session) selectStyling() *component.Component {
	return s.db.GetRandom(s.slotFilter(component.SlotStyling))
}

// selectBrandElements attaches up to the configured number of brand
// components for the requested brand.
func (s *Session) selectBrandElements() []*component.Component {
	f := s.slotFilter(component.SlotBrandElement)
	f.Brand = s.req.Brand

	var out []*component.Component
	picked := make(map[string]struct{})
	for len(out) < s.builder.cfg.MaxBrandElements {
		cands := s.db.Query(f)
		var fresh []*component.Component
		for _, c := range cands {
			if _, ok := picked[c.ID]; !ok {
				fresh = append(fresh, c)
			}
		}
		c := s.db.PickFrom(fresh)
		if c == nil {
			break
		}
		picked[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
