package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

// NewClient creates the provider client named by cfg.Provider. The none
// provider yields a nil client.
func NewClient(ctx context.Context, cfg Config, tables LabelTables) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderGCP:
		client, err := newGCPClient(ctx, cfg, tables)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "", ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: vision provider %q", common.ErrUnsupportedProvider, cfg.Provider)
	}
}

// TablesFrom builds label tables from the vocabulary's keyword mappings.
func TablesFrom(vocab *vocabulary.Store) LabelTables {
	return LabelTables{
		Category: vocab.CategoryKeywordMappings(),
		Color:    vocab.ColorKeywordMappings(),
		Material: vocab.MaterialKeywordMappings(),
		Pattern:  vocab.PatternKeywordMappings(),
	}
}
