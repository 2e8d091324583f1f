package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	evmAddr  = "0x6982508145454Ce325dDbE47a25d4ec3d2311933"
)

func TestValidAddress(t *testing.T) {
	tests := []struct {
		name     string
		chain    string
		address  string
		expected bool
	}{
		{"solana mint", "solana", solMint, true},
		{"solana bad alphabet", "solana", "0OIl" + solMint[4:], false},
		{"solana too short", "solana", "abc", false},
		{"evm address", "ethereum", evmAddr, true},
		{"evm missing prefix", "bsc", evmAddr[2:], false},
		{"evm bad hex", "base", "0x" + strings.Repeat("z", 40), false},
		{"unknown chain", "sui", "0x2::sui::SUI", true},
		{"empty", "solana", "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ValidAddress(test.chain, test.address))
		})
	}
}

func TestTokenKey(t *testing.T) {
	a := Token{Name: "Foo", Chain: "Ethereum", Address: evmAddr}
	b := Token{Name: "Foo Renamed", Chain: "ethereum", Address: strings.ToLower(evmAddr)}
	c := Token{Name: "FooCoin", Source: "coingecko"}

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "coingecko:foocoin", c.Key())
}

func TestDexScreenerFetchTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/token-profiles/latest/v1":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{
					"chainId":      "solana",
					"tokenAddress": solMint,
					"icon":         "https://cdn.example.com/foo.png",
					"description":  "FooCoin\nThe first foo on Solana",
					"links": []map[string]string{
						{"type": "twitter", "url": "https://x.com/foocoin"},
						{"label": "Website", "url": "https://foocoin.io"},
						{"label": "Empty"},
					},
				},
				{
					"chainId":      "solana",
					"tokenAddress": usdcMint,
					"description":  "",
				},
				{
					"chainId":      "solana",
					"tokenAddress": "not-a-mint",
					"description":  "Broken",
				},
			})
		case strings.HasPrefix(r.URL.Path, "/tokens/v1/solana/"):
			assert.Equal(t, "/tokens/v1/solana/"+solMint, r.URL.Path)
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{
					"chainId": "solana",
					"baseToken": map[string]string{
						"address": solMint,
						"name":    "FooCoin",
						"symbol":  "FOO",
					},
					"pairCreatedAt": int64(1760000000000),
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewDexScreenerClient(srv.URL, nil)

	tokens, err := client.FetchTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	got := tokens[0]
	assert.Equal(t, "FooCoin", got.Name)
	assert.Equal(t, "FOO", got.Symbol)
	assert.Equal(t, "solana", got.Chain)
	assert.Equal(t, solMint, got.Address)
	assert.Equal(t, "https://cdn.example.com/foo.png", got.ImageURL)
	assert.Equal(t, "dex_screener", got.Source)
	assert.Equal(t, time.UnixMilli(1760000000000).UTC(), got.ListedAt)
	require.Len(t, got.Links, 2)
	assert.Equal(t, "twitter", got.Links[0].Type)
	assert.Equal(t, "Website", got.Links[1].Label)
}

func TestDexScreenerEnrichFailureKeepsProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewDexScreenerClient(srv.URL, nil)
	in := []Token{{Name: "Profile Name", Chain: "solana", Address: solMint}}

	out := client.Enrich(context.Background(), in)
	require.Len(t, out, 1)
	assert.Equal(t, "Profile Name", out[0].Name)
	assert.Empty(t, out[0].Symbol)
}

func TestDexScreenerEnrichBatches(t *testing.T) {
	var lookups int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups++
		addresses := strings.Split(strings.TrimPrefix(r.URL.Path, "/tokens/v1/ethereum/"), ",")
		assert.LessOrEqual(t, len(addresses), maxAddressesPerLookup)
		json.NewEncoder(w).Encode([]interface{}{})
	}))
	defer srv.Close()

	in := make([]Token, 45)
	for i := range in {
		in[i] = Token{Name: "T", Chain: "ethereum", Address: evmAddr}
	}

	NewDexScreenerClient(srv.URL, nil).Enrich(context.Background(), in)
	assert.Equal(t, 2, lookups)
}

func TestDexScreenerStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewDexScreenerClient(srv.URL, nil).FetchProfiles(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestCoinGeckoFetchNewCoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/list/new", r.URL.Path)
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "foocoin", "symbol": "foo", "name": "FooCoin", "activated_at": 1760000000},
			{"id": "nameless", "symbol": "nil", "name": ""},
		})
	}))
	defer srv.Close()

	tokens, err := NewCoinGeckoClient(srv.URL, "demo-key").FetchNewCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "FooCoin", tokens[0].Name)
	assert.Equal(t, "FOO", tokens[0].Symbol)
	assert.Equal(t, "coingecko", tokens[0].Source)
	assert.Equal(t, time.Unix(1760000000, 0).UTC(), tokens[0].ListedAt)
	require.Len(t, tokens[0].Links, 1)
	assert.Equal(t, "https://www.coingecko.com/en/coins/foocoin", tokens[0].Links[0].URL)
}

type stubSource struct {
	name   string
	tokens []Token
	err    error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) FetchTokens(ctx context.Context) ([]Token, error) {
	return s.tokens, s.err
}

func TestFetcherMergesSources(t *testing.T) {
	fetcher := NewFetcher(nil,
		stubSource{name: "a", tokens: []Token{
			{Name: "FooCoin", Chain: "solana", Address: solMint},
			{Name: "BarCoin", Chain: "solana", Address: usdcMint},
		}},
		stubSource{name: "b", err: errors.New("rate limited")},
		stubSource{name: "c", tokens: []Token{
			{Name: "FooCoin duplicate", Chain: "solana", Address: solMint},
		}},
	)

	tokens, err := fetcher.FetchNewTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "FooCoin", tokens[0].Name)
	assert.Equal(t, "BarCoin", tokens[1].Name)
}

func TestFetcherAllSourcesFail(t *testing.T) {
	fetcher := NewFetcher(nil,
		stubSource{name: "a", err: errors.New("timeout")},
		stubSource{name: "b", err: errors.New("rate limited")},
	)

	_, err := fetcher.FetchNewTokens(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 token sources failed")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetcherNoSources(t *testing.T) {
	_, err := NewFetcher(nil).FetchNewTokens(context.Background())
	assert.Error(t, err)
}
