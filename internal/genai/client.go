package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client is the HTTP implementation of Service: JSON REST with an API key
// drawn from a KeyStore. A credential rejection marks the active key invalid
// before the error is returned.
type Client struct {
	baseURL    string
	keys       KeyStore
	httpClient *http.Client
}

// NewClient creates a client against the provider's base URL.
func NewClient(baseURL string, keys KeyStore) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keys:       keys,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type splitRequest struct {
	Story      string `json:"story"`
	SceneCount int    `json:"scene_count,omitempty"`
}

type splitResponse struct {
	Scenes []string `json:"scenes"`
}

// SplitStory asks the provider to divide the story into ordered scene
// descriptions.
func (c *Client) SplitStory(ctx context.Context, storyText string, desiredScenes int) ([]string, error) {
	var resp splitResponse
	err := c.post(ctx, "/v1/story:split", splitRequest{Story: storyText, SceneCount: desiredScenes}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Scenes) == 0 {
		return nil, &MalformedResponseError{Err: fmt.Errorf("split returned no scenes")}
	}
	for i, s := range resp.Scenes {
		if strings.TrimSpace(s) == "" {
			return nil, &MalformedResponseError{Err: fmt.Errorf("split scene %d is empty", i+1)}
		}
	}
	return resp.Scenes, nil
}

type imageRequest struct {
	Prompt     string   `json:"prompt"`
	References []string `json:"references,omitempty"` // base64
	Image      string   `json:"image,omitempty"`      // base64, edit only
	MimeType   string   `json:"mime_type,omitempty"`
}

type imageResponse struct {
	Image    string `json:"image"` // base64
	Filtered bool   `json:"filtered,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// GenerateCharacterImage produces a reference character image.
func (c *Client) GenerateCharacterImage(ctx context.Context, prompt string) ([]byte, error) {
	return c.imageCall(ctx, "/v1/images:generate", imageRequest{Prompt: prompt})
}

// GenerateSceneImage produces a scene image consistent with the reference
// images.
func (c *Client) GenerateSceneImage(ctx context.Context, references [][]byte, prompt string) ([]byte, error) {
	req := imageRequest{Prompt: prompt}
	for _, ref := range references {
		req.References = append(req.References, base64.StdEncoding.EncodeToString(ref))
	}
	return c.imageCall(ctx, "/v1/images:compose", req)
}

// EditImage applies a prompt-driven edit to an existing image.
func (c *Client) EditImage(ctx context.Context, src []byte, mimeType, prompt string) ([]byte, error) {
	return c.imageCall(ctx, "/v1/images:edit", imageRequest{
		Prompt:   prompt,
		Image:    base64.StdEncoding.EncodeToString(src),
		MimeType: mimeType,
	})
}

func (c *Client) imageCall(ctx context.Context, path string, req imageRequest) ([]byte, error) {
	var resp imageResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	if resp.Filtered || resp.Image == "" {
		return nil, &ContentFilteredError{Detail: resp.Detail}
	}
	data, err := base64.StdEncoding.DecodeString(resp.Image)
	if err != nil {
		return nil, &MalformedResponseError{Err: fmt.Errorf("decode image payload: %w", err)}
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	key, err := c.keys.Select()
	if err != nil {
		return &CredentialError{Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return &ServiceError{Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The one cross-cutting side effect: flag the key so the user is
		// prompted to pick another.
		_ = c.keys.Invalidate(key)
		return &CredentialError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(raw))}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &QuotaError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(raw))}
	case resp.StatusCode != http.StatusOK:
		return &ServiceError{Status: resp.StatusCode, Err: fmt.Errorf("%s", snippet(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Err: err}
	}
	return nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
