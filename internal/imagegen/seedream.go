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

const (
	seedreamPromptLimit = 800
	defaultArkBaseURL   = "https://ark.ap-southeast.bytepluses.com/api/v3"
)

// SeeDreamProvider calls the ByteDance Ark images endpoint.
type SeeDreamProvider struct {
	apiKey     string
	model      string
	size       string
	baseURL    string
	httpClient *http.Client
}

// NewSeeDreamProvider creates the provider with the Ark credential.
func NewSeeDreamProvider(apiKey, baseURL, model, size string) *SeeDreamProvider {
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}
	return &SeeDreamProvider{
		apiKey:     apiKey,
		model:      model,
		size:       size,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name identifies the provider in results and logs.
func (p *SeeDreamProvider) Name() string { return "seedream" }

// Model returns the configured image model.
func (p *SeeDreamProvider) Model() string { return p.model }

// PromptLimit is the character budget before style suffixes are appended.
// SeeDream accepts longer prompts than the OpenAI endpoint.
func (p *SeeDreamProvider) PromptLimit() int { return seedreamPromptLimit }

type seedreamRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	Watermark      bool   `json:"watermark"`
}

type seedreamResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate requests one image and returns its hosted URL.
func (p *SeeDreamProvider) Generate(ctx context.Context, prompt string) (*GeneratedImage, *ProviderError) {
	request := seedreamRequest{
		Model:          p.model,
		Prompt:         prompt,
		Size:           p.size,
		ResponseFormat: "url",
		Watermark:      false,
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
		var parsed seedreamResponse
		kind := classifyStatus(resp.StatusCode)
		msg := string(body)
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &ProviderError{Kind: kind, Provider: p.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	var parsed seedreamResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Kind: KindOther, Provider: p.Name(), Err: fmt.Errorf("unmarshaling response: %w", err)}
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, &ProviderError{Kind: KindOther, Provider: p.Name(), Err: fmt.Errorf("response contained no image URL")}
	}

	return &GeneratedImage{URL: parsed.Data[0].URL}, nil
}
