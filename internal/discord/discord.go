// Package discord posts token-news matches to a Discord channel through the bot REST API.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/dexradar/token-news-monitor/internal/matcher"
)

// DefaultBaseURL is the Discord REST API root.
const DefaultBaseURL = "https://discord.com/api/v10"

// Discord limits and presentation constants.
const (
	maxFieldValue   = 1024
	maxTitleWidth   = 100
	maxSummaryWidth = 140
	maxDescription  = 300
	colorGreen      = 0x2ECC71
	embedTitle      = "🔍 New Token-News Match Found!"
)

// Client handles Discord notifications
type Client struct {
	botToken    string
	channelID   string
	baseURL     string
	maxArticles int
	httpClient  *http.Client
}

// NewClient creates a new Discord client. maxArticles bounds the articles listed per embed.
func NewClient(botToken, channelID, baseURL string, maxArticles int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxArticles <= 0 {
		maxArticles = 5
	}
	return &Client{
		botToken:    botToken,
		channelID:   channelID,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxArticles: maxArticles,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Embed is a Discord rich embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField is a named block of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedImage is an embed thumbnail or image.
type EmbedImage struct {
	URL string `json:"url"`
}

// EmbedFooter is the small text under an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// CreateMessageRequest is the body of POST /channels/{id}/messages.
type CreateMessageRequest struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// APIError is a non-2xx answer from Discord.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("discord API returned status %d", e.StatusCode)
	if e.Message != "" {
		msg += fmt.Sprintf(" (code %d): %s", e.Code, e.Message)
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	return msg
}

// SendMatch sends one consolidated notification for a token and its related articles.
func (c *Client) SendMatch(ctx context.Context, match matcher.Match) error {
	return c.send(ctx, CreateMessageRequest{Embeds: []Embed{c.BuildEmbed(match)}})
}

// BuildEmbed renders a match.
func (c *Client) BuildEmbed(match matcher.Match) Embed {
	token := match.Token

	embed := Embed{
		Title:     embedTitle,
		Color:     colorGreen,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []EmbedField{
			{Name: "Token Information", Value: tokenInfo(match)},
			{Name: "Related News Articles", Value: c.articleSummary(match)},
		},
	}
	if len(match.Terms) > 0 {
		embed.Description = "Matched on: " + strings.Join(match.Terms, ", ")
	}
	if token.ImageURL != "" {
		embed.Thumbnail = &EmbedImage{URL: token.ImageURL}
	}
	if token.Source != "" {
		embed.Footer = &EmbedFooter{Text: "Source: " + token.Source}
	}
	return embed
}

func tokenInfo(match matcher.Match) string {
	token := match.Token

	name := token.Name
	if token.Symbol != "" {
		name += " (" + token.Symbol + ")"
	}
	chain := token.Chain
	if chain == "" {
		chain = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Name:** %s\n**Chain:** %s\n**Total Related Articles:** %d", name, chain, match.ArticleCount)
	if token.Address != "" {
		fmt.Fprintf(&b, "\n**Contract:** `%s`", token.Address)
	}
	if token.Description != "" {
		fmt.Fprintf(&b, "\n\n**Description:** %s", truncate(token.Description, maxDescription))
	}
	if len(token.Links) > 0 {
		b.WriteString("\n\n**Links:**")
		for _, link := range token.Links {
			label := link.Label
			if label == "" {
				label = link.Type
			}
			if label == "" {
				label = "Link"
			}
			fmt.Fprintf(&b, "\n• [%s](%s)", escapeLinkText(label), link.URL)
		}
	}

	return clampField(b.String())
}

func (c *Client) articleSummary(match matcher.Match) string {
	if len(match.Articles) == 0 {
		return "No articles found"
	}

	var b strings.Builder
	for i, article := range match.Articles {
		if i == c.maxArticles {
			break
		}
		title := escapeLinkText(truncate(article.Title, maxTitleWidth))
		if article.URL != "" {
			fmt.Fprintf(&b, "\n%d. [%s](%s)", i+1, title, article.URL)
		} else {
			fmt.Fprintf(&b, "\n%d. %s", i+1, title)
		}
		if article.Body != "" {
			fmt.Fprintf(&b, "\n> %s", truncate(article.Body, maxSummaryWidth))
		}
	}
	if extra := len(match.Articles) - c.maxArticles; extra > 0 {
		fmt.Fprintf(&b, "\n\n...and %d more articles", extra)
	}

	return clampField(strings.TrimPrefix(b.String(), "\n"))
}

func (c *Client) send(ctx context.Context, message CreateMessageRequest) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, c.channelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bot "+c.botToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "DiscordBot (https://github.com/dexradar/token-news-monitor, 1.0)")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var discordResp struct {
		Message    string  `json:"message"`
		Code       int     `json:"code"`
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&discordResp); err == nil {
		apiErr.Message = discordResp.Message
		apiErr.Code = discordResp.Code
		apiErr.RetryAfter = time.Duration(discordResp.RetryAfter * float64(time.Second))
	}
	return apiErr
}

// truncate shortens s to at most width display cells, marking the cut with "...".
const ellipsis = "..."

// truncate shortens s to a display width for appearance.
func truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// clampField enforces Discord's field limit, which counts characters rather than display
// cells.
func clampField(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxFieldValue {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxFieldValue-len(ellipsis)]) + ellipsis
}

var linkTextEscaper = strings.NewReplacer("[", "(", "]", ")")

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}
