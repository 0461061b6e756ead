package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/confidence"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

// Policy holds the tunable review thresholds and fuzzy matching cutoffs.
type Policy struct {
	Review confidence.Policy
	Match  vocabulary.MatchPolicy
}

// LoadPolicy reads review.* and validation.* settings over the defaults.
func LoadPolicy() (Policy, error) {
	p := Policy{
		Review: confidence.DefaultPolicy(),
		Match:  vocabulary.DefaultMatchPolicy(),
	}

	setFloat(&p.Review.ReviewThreshold, "review.threshold")
	setFloat(&p.Review.HighPriorityBelow, "review.priority_high")
	setFloat(&p.Review.MediumPriorityBelow, "review.priority_medium")
	setFloat(&p.Match.FuzzyCutoff, "validation.fuzzy_cutoff")
	setFloat(&p.Match.SuggestionCutoff, "validation.suggestion_cutoff")
	if viper.IsSet("validation.suggestion_limit") {
		p.Match.SuggestionLimit = viper.GetInt("validation.suggestion_limit")
	}
	if viper.IsSet("validation.max_suggestions") {
		p.Match.MaxSuggestions = viper.GetInt("validation.max_suggestions")
	}

	for key, v := range map[string]float64{
		"review.threshold":             p.Review.ReviewThreshold,
		"review.priority_high":         p.Review.HighPriorityBelow,
		"review.priority_medium":       p.Review.MediumPriorityBelow,
		"validation.fuzzy_cutoff":      p.Match.FuzzyCutoff,
		"validation.suggestion_cutoff": p.Match.SuggestionCutoff,
	} {
		if v <= 0 || v > 1 {
			return p, fmt.Errorf("%w: %s must be in (0, 1], got %v", common.ErrInvalidConfig, key, v)
		}
	}

	if p.Review.HighPriorityBelow > p.Review.MediumPriorityBelow {
		return p, fmt.Errorf("%w: review.priority_high must not exceed review.priority_medium", common.ErrInvalidConfig)
	}

	if p.Match.SuggestionLimit <= 0 || p.Match.MaxSuggestions <= 0 {
		return p, fmt.Errorf("%w: suggestion limits must be positive", common.ErrInvalidConfig)
	}

	return p, nil
}

func setFloat(dst *float64, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetFloat64(key)
	}
}
