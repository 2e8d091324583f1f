package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dexradar/token-news-monitor/internal/logger"
)

// DexScreenerBaseURL is the public DexScreener API root.
const DexScreenerBaseURL = "https://api.dexscreener.com"

// maxAddressesPerLookup is the DexScreener limit for /tokens/v1.
const maxAddressesPerLookup = 30

// DexScreenerClient fetches the latest token profiles from DexScreener.
type DexScreenerClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewDexScreenerClient creates a new DexScreener client
func NewDexScreenerClient(baseURL string, log *logger.Logger) *DexScreenerClient {
	if baseURL == "" {
		baseURL = DexScreenerBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &DexScreenerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type dexProfile struct {
	URL          string `json:"url"`
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Icon         string `json:"icon"`
	Header       string `json:"header"`
	Description  string `json:"description"`
	Links        []struct {
		Type  string `json:"type"`
		Label string `json:"label"`
		URL   string `json:"url"`
	} `json:"links"`
}

type dexPair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PairCreatedAt int64 `json:"pairCreatedAt"`
	Info          *struct {
		ImageURL string `json:"imageUrl"`
	} `json:"info"`
}

// Name implements Source.
func (c *DexScreenerClient) Name() string {
	return "dex_screener"
}

// FetchTokens implements Source: latest profiles enriched with pair data.
func (c *DexScreenerClient) FetchTokens(ctx context.Context) ([]Token, error) {
	tokens, err := c.FetchProfiles(ctx)
	if err != nil {
		return nil, err
	}
	return c.Enrich(ctx, tokens), nil
}

// FetchProfiles fetches the latest token profiles. Profiles without a usable name or with an
// address that is malformed for its chain are skipped.
func (c *DexScreenerClient) FetchProfiles(ctx context.Context) ([]Token, error) {
	var profiles []dexProfile
	if err := c.getJSON(ctx, "/token-profiles/latest/v1", &profiles); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tokens := make([]Token, 0, len(profiles))
	for _, p := range profiles {
		name := profileName(p.Description)
		if name == "" {
			continue
		}
		if !ValidAddress(p.ChainID, p.TokenAddress) {
			c.log.Debug("skipping profile with invalid address", "chain", p.ChainID, "address", p.TokenAddress)
			continue
		}

		token := Token{
			Name:        name,
			Chain:       p.ChainID,
			Address:     p.TokenAddress,
			Description: strings.TrimSpace(p.Description),
			ImageURL:    p.Icon,
			ListedAt:    now,
			Source:      c.Name(),
		}
		for _, l := range p.Links {
			if l.URL == "" {
				continue
			}
			token.Links = append(token.Links, Link{Type: l.Type, Label: l.Label, URL: l.URL})
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Enrich fills names, symbols and listing times from the pairs of each token. Lookup failures
// are logged and leave the profile data untouched.
func (c *DexScreenerClient) Enrich(ctx context.Context, tokens []Token) []Token {
	byChain := make(map[string][]int)
	var chains []string
	for i, t := range tokens {
		if _, ok := byChain[t.Chain]; !ok {
			chains = append(chains, t.Chain)
		}
		byChain[t.Chain] = append(byChain[t.Chain], i)
	}

	for _, chain := range chains {
		indexes := byChain[chain]
		for start := 0; start < len(indexes); start += maxAddressesPerLookup {
			end := start + maxAddressesPerLookup
			if end > len(indexes) {
				end = len(indexes)
			}
			batch := indexes[start:end]

			addresses := make([]string, len(batch))
			for i, idx := range batch {
				addresses[i] = tokens[idx].Address
			}

			var pairs []dexPair
			path := "/tokens/v1/" + chain + "/" + strings.Join(addresses, ",")
			if err := c.getJSON(ctx, path, &pairs); err != nil {
				c.log.Warn("token pair lookup failed", "chain", chain, "tokens", len(batch), "error", err)
				continue
			}
			applyPairs(tokens, batch, pairs)
		}
	}

	return tokens
}

// applyPairs copies the first pair found for each token address into the token.
func applyPairs(tokens []Token, batch []int, pairs []dexPair) {
	byAddress := make(map[string]dexPair, len(pairs))
	for _, p := range pairs {
		key := strings.ToLower(p.BaseToken.Address)
		if _, ok := byAddress[key]; !ok {
			byAddress[key] = p
		}
	}

	for _, idx := range batch {
		pair, ok := byAddress[strings.ToLower(tokens[idx].Address)]
		if !ok {
			continue
		}
		if pair.BaseToken.Name != "" {
			tokens[idx].Name = strings.TrimSpace(pair.BaseToken.Name)
		}
		if pair.BaseToken.Symbol != "" {
			tokens[idx].Symbol = strings.TrimSpace(pair.BaseToken.Symbol)
		}
		if pair.PairCreatedAt > 0 {
			tokens[idx].ListedAt = time.UnixMilli(pair.PairCreatedAt).UTC()
		}
		if tokens[idx].ImageURL == "" && pair.Info != nil {
			tokens[idx].ImageURL = pair.Info.ImageURL
		}
	}
}

// profileName is the first non-empty line of a profile description.
func profileName(description string) string {
	for _, line := range strings.Split(description, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func (c *DexScreenerClient) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dexscreener returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
