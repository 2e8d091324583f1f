// Package tokens fetches newly listed tokens from DEX data providers.
package tokens

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/dexradar/token-news-monitor/internal/logger"
)

// Link is an external link published for a token.
type Link struct {
	Type  string `json:"type,omitempty"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

// Token is a newly listed token.
type Token struct {
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol,omitempty"`
	Chain       string    `json:"chain"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Links       []Link    `json:"links,omitempty"`
	ListedAt    time.Time `json:"listed_at"`
	Source      string    `json:"source"`
}

// Key identifies the token across providers and passes.
func (t Token) Key() string {
	if t.Address != "" {
		return strings.ToLower(t.Chain) + ":" + strings.ToLower(t.Address)
	}
	return t.Source + ":" + strings.ToLower(t.Name)
}

// Source is a provider of newly listed tokens.
type Source interface {
	Name() string
	FetchTokens(ctx context.Context) ([]Token, error)
}

// Fetcher merges the tokens of several sources.
type Fetcher struct {
	sources []Source
	log     *logger.Logger
}

// NewFetcher creates a fetcher over the given sources, queried in order.
func NewFetcher(log *logger.Logger, sources ...Source) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Fetcher{sources: sources, log: log}
}

// FetchNewTokens queries every source and returns the de-duplicated union. It only fails when
// every source failed.
func (f *Fetcher) FetchNewTokens(ctx context.Context) ([]Token, error) {
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("no token sources configured")
	}

	var all []Token
	var lastErr error
	failures := 0
	for _, source := range f.sources {
		tokens, err := source.FetchTokens(ctx)
		if err != nil {
			failures++
			lastErr = fmt.Errorf("%s: %w", source.Name(), err)
			f.log.Warn("❌ token source failed", "source", source.Name(), "error", err)
			continue
		}
		f.log.Info("💎 fetched token listings", "source", source.Name(), "tokens", len(tokens))
		all = append(all, tokens...)
	}

	if failures == len(f.sources) {
		return nil, fmt.Errorf("all %d token sources failed: %w", failures, lastErr)
	}

	return GetUniqueTokens(all), nil
}

// GetUniqueTokens removes duplicate tokens by Key, keeping the first occurrence.
func GetUniqueTokens(tokens []Token) []Token {
	seen := make(map[string]bool)
	var unique []Token

	for _, token := range tokens {
		key := token.Key()
		if !seen[key] {
			seen[key] = true
			unique = append(unique, token)
		}
	}

	return unique
}

var evmChains = map[string]bool{
	"ethereum":  true,
	"bsc":       true,
	"base":      true,
	"arbitrum":  true,
	"polygon":   true,
	"avalanche": true,
	"optimism":  true,
	"linea":     true,
	"blast":     true,
	"abstract":  true,
}

// ValidAddress reports whether address is well formed for chain. Chains without a known
// format accept any non-empty address.
func ValidAddress(chain, address string) bool {
	if address == "" {
		return false
	}

	switch {
	case strings.EqualFold(chain, "solana"):
		decoded, err := base58.Decode(address)
		return err == nil && len(decoded) == 32
	case evmChains[strings.ToLower(chain)]:
		if len(address) != 42 || !strings.HasPrefix(strings.ToLower(address), "0x") {
			return false
		}
		_, err := hex.DecodeString(address[2:])
		return err == nil
	default:
		return true
	}
}
