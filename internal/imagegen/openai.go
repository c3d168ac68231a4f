package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openaiPromptLimit = 400

// OpenAIProvider calls the OpenAI images endpoint directly.
type OpenAIProvider struct {
	apiKey     string
	model      string
	size       string
	quality    string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates the provider. The chat API key is reused.
func NewOpenAIProvider(apiKey, model, size, quality string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:     apiKey,
		model:      model,
		size:       size,
		quality:    quality,
		baseURL:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name identifies the provider in results and logs.
func (p *OpenAIProvider) Name() string { return "openai" }

// Model returns the configured image model.
func (p *OpenAIProvider) Model() string { return p.model }

// PromptLimit is the character budget before style suffixes are appended.
func (p *OpenAIProvider) PromptLimit() int { return openaiPromptLimit }

type openaiImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type openaiImageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate requests one image and returns its hosted URL.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (*GeneratedImage, *ProviderError) {
	request := openaiImageRequest{
		Model:          p.model,
		Prompt:         prompt,
		N:              1,
		Size:           p.size,
		Quality:        p.quality,
		ResponseFormat: "url",
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, &ProviderError{Kind: KindOther, Provider: p.Name(), Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/images/generations", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, &ProviderError{Kind: KindOther, Provider: p.Name(), Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransient, Provider: p.Name(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransient, Provider: p.Name(), Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var parsed openaiImageResponse
		kind := classifyStatus(resp.StatusCode)
		msg := string(body)
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
			// The API reports policy rejections as 400 with this code.
			if parsed.Error.Code == "content_policy_violation" {
				kind = KindContentPolicy
			}
		}
		return nil, &ProviderError{Kind: kind, Provider: p.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	var parsed openaiImageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Kind: KindOther, Provider: p.Name(), Err: fmt.Errorf("unmarshaling response: %w", err)}
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, &ProviderError{Kind: KindOther, Provider: p.Name(), Err: fmt.Errorf("response contained no image URL")}
	}

	return &GeneratedImage{URL: parsed.Data[0].URL, RevisedPrompt: parsed.Data[0].RevisedPrompt}, nil
}
