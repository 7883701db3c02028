package videogen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Classifier is the AI model that picks a provider given the filtered
// catalog and the rules table. Its answer is untrusted input: identifiers go
// through the correction pass before they reach any network call.
type Classifier interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// videoTypeRules gives the authoritative provider type per content type.
// The classifier's answer expresses intent; catalog-level type tagging wins
// whenever the two disagree.
var videoTypeRules = map[string]ProviderType{
	"talking_head": ProviderTypeAvatar,
	"testimonial":  ProviderTypeAvatar,
	"educational":  ProviderTypeAvatar,
	"ugc":          ProviderTypeAvatar,
	"dance":        ProviderTypeGenerative,
	"product":      ProviderTypeGenerative,
	"meme":         ProviderTypeGenerative,
	"cinematic":    ProviderTypeGenerative,
	"broll":        ProviderTypeGenerative,
}

// budgetCeilings maps budget tiers to a cost-per-ten-seconds ceiling,
// serialized into the classifier prompt.
var budgetCeilings = map[string]float64{
	"low":      0.40,
	"balanced": 0.60,
}

const maxAlternatives = 3

// Selector resolves a SelectionRequest to a catalog-validated Selection.
type Selector struct {
	catalog    *Catalog
	classifier Classifier
}

// NewSelector creates a selector.
func NewSelector(catalog *Catalog, classifier Classifier) *Selector {
	return &Selector{
		catalog:    catalog,
		classifier: classifier,
	}
}

// classifierAnswer is the structured response requested from the model.
type classifierAnswer struct {
	Provider     string `json:"provider"`
	Reason       string `json:"reason"`
	Alternatives []struct {
		Provider string `json:"provider"`
		Reason   string `json:"reason"`
	} `json:"alternatives"`
}

// Select picks a provider for the request. The classifier chooses intent;
// the deterministic correction pass guarantees validity, so a model upgrade
// can never crash the pipeline on a wire-format mismatch.
func (s *Selector) Select(ctx context.Context, req SelectionRequest) (*Selection, error) {
	candidates := s.catalog.Find(req.Duration)
	if len(candidates) == 0 {
		return nil, &SelectionError{
			ValidIDs: s.catalog.IDs(),
			Reason:   fmt.Sprintf("no provider supports a %ds duration", req.Duration),
		}
	}

	answer, err := s.classify(ctx, req, candidates)
	if err != nil {
		return nil, err
	}

	provider, ok := resolveProviderID(answer.Provider, candidates)
	if !ok {
		return nil, &SelectionError{
			Attempted: answer.Provider,
			ValidIDs:  providerIDs(candidates),
			Reason:    "classifier answer did not resolve to a catalog entry",
		}
	}

	// Content-type rules are authoritative over the classifier. A
	// talking-head request never goes to a generative backend, no matter
	// what the model said.
	if required, ok := videoTypeRules[req.VideoType]; ok && provider.Type != required {
		forced, ok := bestOfType(candidates, required, req.VideoType)
		if !ok {
			return nil, &SelectionError{
				Attempted: answer.Provider,
				ValidIDs:  providerIDs(candidates),
				Reason: fmt.Sprintf("video type %q requires a %s provider but none supports %ds",
					req.VideoType, required, req.Duration),
			}
		}
		log.Warn().
			Str("classifier_pick", provider.ID).
			Str("forced_pick", forced.ID).
			Str("video_type", req.VideoType).
			Msg("classifier picked the wrong provider type, overruled by rules table")
		provider = forced
	}

	return &Selection{
		Provider:             provider,
		Reason:               answer.Reason,
		EstimatedCost:        provider.CostPerTenSeconds * float64(req.Duration) / 10,
		EstimatedTimeSeconds: estimateRenderSeconds(provider, req.Duration),
		Alternatives:         s.correctAlternatives(answer, provider, candidates),
	}, nil
}

// classify runs the model and parses its JSON answer.
func (s *Selector) classify(ctx context.Context, req SelectionRequest, candidates []Provider) (*classifierAnswer, error) {
	prompt, err := buildPrompt(req, candidates)
	if err != nil {
		return nil, err
	}

	raw, err := s.classifier.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}

	answer := &classifierAnswer{}
	if err := json.Unmarshal([]byte(extractJSON(raw)), answer); err != nil {
		return nil, &SelectionError{
			ValidIDs: providerIDs(candidates),
			Reason:   fmt.Sprintf("classifier returned unparseable answer: %v", err),
		}
	}
	return answer, nil
}

// correctAlternatives best-effort resolves the runner-up list. Unresolvable
// entries and duplicates of the chosen provider are dropped silently.
func (s *Selector) correctAlternatives(answer *classifierAnswer, chosen Provider, candidates []Provider) []Alternative {
	var out []Alternative
	for _, alt := range answer.Alternatives {
		p, ok := resolveProviderID(alt.Provider, candidates)
		if !ok || p.ID == chosen.ID {
			continue
		}
		out = append(out, Alternative{ProviderID: p.ID, Reason: alt.Reason})
		if len(out) == maxAlternatives {
			break
		}
	}
	return out
}

// bestOfType picks the strongest provider of the required type: a BestFor
// tag match wins, quality breaks ties.
func bestOfType(candidates []Provider, required ProviderType, videoType string) (Provider, bool) {
	var typed []Provider
	for _, p := range candidates {
		if p.Type == required {
			typed = append(typed, p)
		}
	}
	if len(typed) == 0 {
		return Provider{}, false
	}
	sort.SliceStable(typed, func(i, j int) bool {
		ti, tj := hasTag(typed[i], videoType), hasTag(typed[j], videoType)
		if ti != tj {
			return ti
		}
		return typed[i].QualityScore > typed[j].QualityScore
	})
	return typed[0], true
}

func hasTag(p Provider, tag string) bool {
	for _, t := range p.BestFor {
		if t == tag {
			return true
		}
	}
	return false
}

func providerIDs(providers []Provider) []string {
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
	}
	return ids
}

// estimateRenderSeconds gives a deterministic wall-clock estimate from the
// provider's speed score.
func estimateRenderSeconds(p Provider, duration int) int {
	base := 60 + (10-p.SpeedScore)*30
	return base + duration*2
}

// buildPrompt serializes the filtered catalog and the rules table for the
// classifier and requests a strict JSON answer.
func buildPrompt(req SelectionRequest, candidates []Provider) (string, error) {
	catalogJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal catalog: %w", err)
	}

	// Map iteration order would shuffle the prompt run to run; identical
	// requests must produce identical prompts.
	videoTypes := make([]string, 0, len(videoTypeRules))
	for videoType := range videoTypeRules {
		videoTypes = append(videoTypes, videoType)
	}
	sort.Strings(videoTypes)

	var rules strings.Builder
	rules.WriteString("Content type rules (mandatory):\n")
	for _, videoType := range videoTypes {
		fmt.Fprintf(&rules, "- %s content must use a %s provider\n", videoType, videoTypeRules[videoType])
	}
	rules.WriteString("Objective preferences:\n")
	rules.WriteString("- awareness: prefer the highest quality_score\n")
	rules.WriteString("- conversion: prefer avatar providers tagged talking_head\n")
	rules.WriteString("- engagement: prefer the highest speed_score\n")
	if ceiling, ok := budgetCeilings[req.BudgetPriority]; ok {
		fmt.Fprintf(&rules, "Budget ceiling: cost_per_ten_seconds must not exceed %.2f\n", ceiling)
	}

	return fmt.Sprintf(`You select the best video generation provider for a marketing clip.

Available providers (only these IDs are valid):
%s

%s
Request:
- duration_seconds: %d
- video_type: %q
- objective: %q
- budget_priority: %q
- has_audio: %t
- caption: %q

Answer with strict JSON only, no prose, in this shape:
{"provider": "<id>", "reason": "<one sentence>", "alternatives": [{"provider": "<id>", "reason": "<one sentence>"}]}
List at most %d alternatives.`,
		catalogJSON, rules.String(), req.Duration, req.VideoType, req.Objective,
		req.BudgetPriority, req.HasAudio, req.Caption, maxAlternatives), nil
}

// extractJSON pulls the first JSON object out of a model answer that may be
// wrapped in markdown fences or prose.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			return raw[i : j+1]
		}
	}
	return raw
}
