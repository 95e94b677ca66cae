// Package voicevox is a client for the VOICEVOX engine HTTP API.
// Synthesis is a two-call protocol: an audio query is created for the
// text, optionally adjusted, and then rendered to audio bytes.
package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnreachable is returned when the engine does not answer the
// connectivity check.
var ErrUnreachable = errors.New("voicevox engine is unreachable")

// Client talks to a VOICEVOX engine instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the engine at baseURL. The timeout
// bounds each individual request, synthesis included.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// AudioQuery is the synthesis parameter object returned by the engine.
// It is kept as a generic map so fields this client does not know about
// pass through the query/synthesis round trip untouched.
type AudioQuery map[string]any

// ApplyScales sets the speed, pitch, and volume overrides on the query.
func (q AudioQuery) ApplyScales(speed, pitch, volume float64) {
	q["speedScale"] = speed
	q["pitchScale"] = pitch
	q["volumeScale"] = volume
}

// CheckConnection verifies the engine answers its version endpoint.
// Callers treat failure as fatal: a watcher that can never speak should
// fail loudly at startup instead of staying silent forever.
func (c *Client) CheckConnection(ctx context.Context) error {
	if _, err := c.Version(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrUnreachable, c.baseURL)
	}
	return nil
}

// Version returns the engine's version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return "", fmt.Errorf("build version request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request version: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version endpoint returned %s", resp.Status)
	}

	var version string
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", fmt.Errorf("decode version: %w", err)
	}
	return version, nil
}

// CreateAudioQuery asks the engine to build a synthesis query for text
// spoken by the given speaker.
func (c *Client) CreateAudioQuery(ctx context.Context, text string, speaker int) (AudioQuery, error) {
	endpoint := c.baseURL + "/audio_query?" + url.Values{
		"text":    {text},
		"speaker": {strconv.Itoa(speaker)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build audio query request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request audio query: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio query returned %s", resp.Status)
	}

	var query AudioQuery
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("decode audio query: %w", err)
	}
	return query, nil
}

// Synthesize renders the query to audio bytes (WAV) for the given
// speaker.
func (c *Client) Synthesize(ctx context.Context, query AudioQuery, speaker int) ([]byte, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode audio query: %w", err)
	}

	endpoint := c.baseURL + "/synthesis?" + url.Values{
		"speaker": {strconv.Itoa(speaker)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request synthesis: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis returned %s", resp.Status)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	return audio, nil
}

// SpeakerStyle is one voice style offered by a speaker.
type SpeakerStyle struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// Speaker is one voice installed in the engine.
type Speaker struct {
	Name        string         `json:"name"`
	SpeakerUUID string         `json:"speaker_uuid"`
	Styles      []SpeakerStyle `json:"styles"`
}

// Speakers lists the voices installed in the engine.
func (c *Client) Speakers(ctx context.Context) ([]Speaker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/speakers", nil)
	if err != nil {
		return nil, fmt.Errorf("build speakers request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request speakers: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speakers endpoint returned %s", resp.Status)
	}

	var speakers []Speaker
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return nil, fmt.Errorf("decode speakers: %w", err)
	}
	return speakers, nil
}
