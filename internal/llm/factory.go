package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/facet-flow/internal/common"
)

// NewClient creates the provider client named by cfg.Provider. The template
// provider yields a nil client.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderClaudeCode:
		return newClaudeCodeClient(cfg)
	case "", ProviderTemplate:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: text provider %q", common.ErrUnsupportedProvider, cfg.Provider)
	}
}
