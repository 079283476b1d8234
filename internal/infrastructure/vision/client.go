package vision

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

	apperrors "snapstock/pkg/errors"
)

// promptTemplate fixes the output shape the caption parser expects.
const promptTemplate = "You are listing a product for a small-business catalog. " +
	"Look at the photo and reply with exactly two lines:\n" +
	"Title: <a short product title>\n" +
	"Description: <one or two sentences describing the product>"

var supportedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type OpenAICaptioner struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func NewOpenAICaptioner(baseURL, model, apiKey string) (*OpenAICaptioner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision API key is not configured")
	}

	return &OpenAICaptioner{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (g *OpenAICaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	// Fail before touching the network on types the service won't accept.
	if !supportedMimeTypes[mimeType] {
		return "", apperrors.UnsupportedMediaType(fmt.Sprintf("Mime type %s is not supported for captioning", mimeType))
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := chatRequest{
		Model:     g.model,
		MaxTokens: 300,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: promptTemplate},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", apperrors.ServiceUnavailable("Captioning service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", g.classifyHTTPError(resp)
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", apperrors.EmptyResponse("Captioning service returned an unreadable response")
	}

	if len(response.Choices) == 0 {
		return "", apperrors.EmptyResponse("Captioning service returned no choices")
	}

	choice := response.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", apperrors.SafetyBlocked("The captioning service declined to describe this image due to its content policy")
	}

	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", apperrors.EmptyResponse("Captioning service returned no usable text")
	}

	return text, nil
}

func (g *OpenAICaptioner) classifyHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Code == "content_policy_violation" {
		// Surface the service's refusal message verbatim.
		return apperrors.SafetyBlocked(apiErr.Error.Message)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return apperrors.ServiceUnavailable(
			fmt.Sprintf("Captioning service error %d", resp.StatusCode),
			fmt.Errorf("vision API error %d: %s", resp.StatusCode, string(body)),
		)
	}

	// Bad or revoked credentials are an operator problem, not a bad image.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.PermissionDenied(
			"Captioning service rejected the credentials",
			fmt.Errorf("vision API error %d: %s", resp.StatusCode, string(body)),
		)
	}

	return apperrors.EmptyResponse(fmt.Sprintf("Captioning service rejected the request (%d)", resp.StatusCode))
}

func (g *OpenAICaptioner) Model() string {
	return g.model
}
