package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CoinGeckoBaseURL is the public CoinGecko API root.
const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient fetches recently listed coins from CoinGecko.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client. apiKey may be empty.
func NewCoinGeckoClient(baseURL, apiKey string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geckoCoin struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	ActivatedAt int64  `json:"activated_at"`
}

// Name implements Source.
func (c *CoinGeckoClient) Name() string {
	return "coingecko"
}

// FetchTokens implements Source.
func (c *CoinGeckoClient) FetchTokens(ctx context.Context) ([]Token, error) {
	return c.FetchNewCoins(ctx)
}

// FetchNewCoins fetches the most recently listed coins.
func (c *CoinGeckoClient) FetchNewCoins(ctx context.Context) ([]Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/list/new", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching new coins: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var coins []geckoCoin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	tokens := make([]Token, 0, len(coins))
	for _, coin := range coins {
		name := strings.TrimSpace(coin.Name)
		if name == "" {
			continue
		}
		token := Token{
			Name:   name,
			Symbol: strings.ToUpper(strings.TrimSpace(coin.Symbol)),
			Source: c.Name(),
			Links: []Link{{
				Type:  "coingecko",
				Label: "CoinGecko",
				URL:   "https://www.coingecko.com/en/coins/" + coin.ID,
			}},
		}
		if coin.ActivatedAt > 0 {
			token.ListedAt = time.Unix(coin.ActivatedAt, 0).UTC()
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}
