// Package narrative fetches the mission briefing shown before a run. Any
// failure degrades to a fixed per-class line; a briefing never blocks or
// fails the session.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBriefingBytes = 4 << 10

// Briefer produces a short mission briefing for class on the map seeded by seed.
type Briefer interface {
	Brief(ctx context.Context, class string, seed int64) (string, error)
}

var tones = map[string]string{
	"SAMURAI": "honorable, poetic, cyberpunk",
	"GUNNER":  "gritty, military, abrupt",
	"MAGE":    "mysterious, arcane, scientific",
}

var fallbackLines = map[string]string{
	"SAMURAI": "The storm gathers over the river. Draw only when the blade is certain.",
	"GUNNER":  "Comms are down. Fourteen rounds a mag, make every one count. Move out.",
	"MAGE":    "The sigils are unstable tonight. Survive the storm and seal the corruption.",
}

const (
	lineMissingKey = "Command link offline. Proceed with caution."
	lineEmpty      = "Mission parameters downloaded. Cleared to engage."
)

// Fallback returns the fixed line for class.
func Fallback(class string) string {
	if l, ok := fallbackLines[class]; ok {
		return l
	}
	return lineEmpty
}

// Static is a Briefer that always answers with the fallback line.
type Static struct{}

func (Static) Brief(_ context.Context, class string, _ int64) (string, error) {
	return Fallback(class), nil
}

type briefRequest struct {
	Class  string `json:"class"`
	Seed   int64  `json:"seed"`
	Tone   string `json:"tone"`
	Prompt string `json:"prompt"`
}

type briefResponse struct {
	Text string `json:"text"`
}

// HTTPBriefer asks a text-generation endpoint for the briefing.
type HTTPBriefer struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

func NewHTTPBriefer(endpoint, apiKey string, timeout time.Duration, log *zap.Logger) *HTTPBriefer {
	return &HTTPBriefer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

var ErrNoKey = errors.New("narrative api key missing")

func (b *HTTPBriefer) Brief(ctx context.Context, class string, seed int64) (string, error) {
	if b.apiKey == "" {
		return lineMissingKey, ErrNoKey
	}
	tone := tones[class]
	body, err := json.Marshal(briefRequest{
		Class: class,
		Seed:  seed,
		Tone:  tone,
		Prompt: fmt.Sprintf("Write a short immersive mission briefing (max 80 words, plain text) for a %s operative. "+
			"A dark neon-lit wilderness with rivers and mountains (seed %d). Survive the storm and eliminate the corruption. Tone: %s.",
			class, seed, tone),
	})
	if err != nil {
		return Fallback(class), fmt.Errorf("encode briefing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return Fallback(class), fmt.Errorf("build briefing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return Fallback(class), fmt.Errorf("briefing request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Fallback(class), fmt.Errorf("briefing request: status %d", resp.StatusCode)
	}

	var out briefResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBriefingBytes)).Decode(&out); err != nil {
		return Fallback(class), fmt.Errorf("decode briefing: %w", err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return lineEmpty, nil
	}
	return text, nil
}

// Fetch runs b and always returns something to show. Errors are logged.
func Fetch(ctx context.Context, b Briefer, class string, seed int64, log *zap.Logger) string {
	text, err := b.Brief(ctx, class, seed)
	if err != nil {
		log.Warn("briefing unavailable", zap.String("class", class), zap.Error(err))
		if text == "" {
			text = Fallback(class)
		}
	}
	return text
}
