package imagegen

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
	"draftsmith/internal/logger"
)

const (
	maxAttempts        = 3
	baseBackoff        = 2 * time.Second
	placeholderPattern = "https://picsum.photos/800/600?random=%d"
)

// Provider is one image generation backend.
type Provider interface {
	Name() string
	Model() string
	PromptLimit() int
	Generate(ctx context.Context, prompt string) (*GeneratedImage, *ProviderError)
}

// Engine wraps a provider with retry, placeholder fallback, and best-effort
// local caching. Its Generate methods never return an error.
type Engine struct {
	provider  Provider
	outputDir string
	client    *http.Client
	sleep     func(time.Duration) // Injectable for tests
}

// NewEngine builds the engine for the requested provider name. When SeeDream
// is requested without an Ark credential it falls back to OpenAI; when no
// provider has a credential it returns a configuration error.
func NewEngine(cfg *config.Config, providerName string) (*Engine, error) {
	log := logger.Get()

	if providerName == "" {
		providerName = cfg.Images.Provider
	}

	arkKey := cfg.Images.SeeDream.APIKey
	openaiKey := ""
	if cfg.OpenAIKeyUsable() {
		openaiKey = cfg.AI.OpenAI.APIKey
	}

	var provider Provider
	switch providerName {
	case "seedream":
		if arkKey != "" {
			provider = NewSeeDreamProvider(arkKey, cfg.Images.SeeDream.BaseURL, cfg.Images.SeeDream.Model, cfg.Images.SeeDream.Size)
		} else if openaiKey != "" {
			log.Warn("ARK_API_KEY not set, falling back to openai image provider")
			provider = NewOpenAIProvider(openaiKey, cfg.Images.DALLE.Model, cfg.Images.DALLE.Size, cfg.Images.DALLE.Quality)
		}
	case "openai":
		if openaiKey != "" {
			provider = NewOpenAIProvider(openaiKey, cfg.Images.DALLE.Model, cfg.Images.DALLE.Size, cfg.Images.DALLE.Quality)
		} else if arkKey != "" {
			log.Warn("OPENAI_API_KEY not set, falling back to seedream image provider")
			provider = NewSeeDreamProvider(arkKey, cfg.Images.SeeDream.BaseURL, cfg.Images.SeeDream.Model, cfg.Images.SeeDream.Size)
		}
	default:
		return nil, fmt.Errorf("unknown image provider %q", providerName)
	}
	if provider == nil {
		return nil, fmt.Errorf("no image provider credential configured: set OPENAI_API_KEY or ARK_API_KEY")
	}

	return &Engine{
		provider:  provider,
		outputDir: cfg.Images.OutputDir,
		client:    &http.Client{Timeout: 60 * time.Second},
		sleep:     time.Sleep,
	}, nil
}

// NewEngineWithProvider wires a specific provider. Used by tests.
func NewEngineWithProvider(p Provider, outputDir string) *Engine {
	return &Engine{
		provider:  p,
		outputDir: outputDir,
		client:    &http.Client{Timeout: 60 * time.Second},
		sleep:     time.Sleep,
	}
}

// GenerateCover produces the article cover image. The subject is derived
// from the draft title and primary keyword, styled by the requested tone.
func (e *Engine) GenerateCover(ctx context.Context, draft *core.ArticleDraft, tone string) core.ImageResult {
	subject := fmt.Sprintf("Blog cover illustration for an article titled %q about %s", draft.Title, draft.PrimaryKeyword())
	result := e.Generate(ctx, subject, tone, 0)
	result.Caption = draft.Title
	result.AltText = fmt.Sprintf("Cover image: %s", draft.Title)
	return result
}

// Generate produces one image for the prompt. The index identifies the
// image's slot in the article (0 = cover) and prefixes the cache filename.
// It retries transient failures with exponential backoff, short-circuits on
// rate limits and content policy rejections, and returns a deterministic
// placeholder when the provider could not deliver. It never returns an error.
func (e *Engine) Generate(ctx context.Context, subject, tone string, index int) core.ImageResult {
	log := logger.Get()
	if index < 0 {
		index = 0
	}
	prompt := BuildPrompt(subject, tone, e.provider.PromptLimit())

	var lastErr *ProviderError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		img, perr := e.provider.Generate(ctx, prompt)
		if perr == nil {
			result := core.ImageResult{
				URL:         img.URL,
				LocalPath:   img.URL,
				PromptUsed:  prompt,
				Provider:    e.provider.Name(),
				Model:       e.provider.Model(),
				Tone:        tone,
				GeneratedAt: time.Now(),
			}
			if path, err := e.cacheImage(ctx, img.URL, index); err == nil {
				result.LocalPath = path
			} else {
				log.Debug("image caching failed, keeping remote URL", "error", err)
			}
			return result
		}

		lastErr = perr
		log.Warn("image generation attempt failed",
			"provider", e.provider.Name(), "index", index, "attempt", attempt, "kind", perr.Kind.String(), "error", perr.Err)

		if !perr.Kind.Retryable() {
			break
		}
		if attempt < maxAttempts {
			e.sleep(baseBackoff << (attempt - 1))
		}
	}

	return placeholderResult(prompt, tone, lastErr)
}

// Regenerate produces a fresh image from a caller-supplied prompt, used when
// the first cover is not satisfying. The prompt is still truncated and
// styled for the active provider.
func (e *Engine) Regenerate(ctx context.Context, customPrompt, tone string, index int) core.ImageResult {
	return e.Generate(ctx, customPrompt, tone, index)
}

// ProviderName reports which backend the engine ended up with.
func (e *Engine) ProviderName() string { return e.provider.Name() }

// placeholderResult builds the deterministic fallback image. The same prompt
// always maps to the same placeholder URL.
func placeholderResult(prompt, tone string, perr *ProviderError) core.ImageResult {
	reason := "image generation unavailable"
	if perr != nil {
		reason = failureReason(perr)
	}
	return core.ImageResult{
		URL:           PlaceholderURL(prompt),
		LocalPath:     PlaceholderURL(prompt),
		PromptUsed:    prompt,
		Provider:      "placeholder",
		Tone:          tone,
		IsPlaceholder: true,
		Reason:        reason,
		GeneratedAt:   time.Now(),
	}
}

// failureReason turns the terminal provider error into a sentence the UI can
// show next to the placeholder.
func failureReason(perr *ProviderError) string {
	switch perr.Kind {
	case KindTransient:
		return fmt.Sprintf("The %s image server is experiencing issues. Try regenerating in a few minutes.", perr.Provider)
	case KindRateLimit:
		return fmt.Sprintf("The %s image rate limit was exceeded. Wait a moment and try regenerating.", perr.Provider)
	case KindContentPolicy:
		return fmt.Sprintf("The image prompt was rejected by the %s content policy. Modify the prompt and try again.", perr.Provider)
	case KindAuth:
		return fmt.Sprintf("The %s image credential was rejected. Check the configured API key.", perr.Provider)
	default:
		return fmt.Sprintf("Image generation with %s failed. Try regenerating with a different prompt.", perr.Provider)
	}
}

// PlaceholderURL returns the stable placeholder for a prompt.
func PlaceholderURL(prompt string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return fmt.Sprintf(placeholderPattern, h.Sum32()%1000)
}

// toneStyles maps image tones to prompt style suffixes.
var toneStyles = map[string]string{
	"professional": "clean corporate photography, soft studio lighting, muted colors",
	"warm":         "warm natural light photography, earthy tones, human presence",
	"playful":      "bright flat illustration, bold colors, friendly shapes",
	"dark":         "moody low-key photography, deep shadows, dramatic contrast",
	"elegant":      "refined editorial style, serif-magazine aesthetic, soft neutral palette",
}

// ToneNames lists the supported image tones.
func ToneNames() []string {
	return []string{"professional", "warm", "playful", "dark", "elegant"}
}

// BuildPrompt truncates the subject to the provider's budget and appends the
// tone style. Truncation happens before the suffix so the style always
// survives.
func BuildPrompt(subject, tone string, limit int) string {
	subject = strings.TrimSpace(subject)
	if len(subject) > limit {
		cut := subject[:limit]
		if idx := strings.LastIndex(cut, " "); idx > limit/2 {
			cut = cut[:idx]
		}
		subject = cut
	}
	style, ok := toneStyles[strings.ToLower(tone)]
	if !ok {
		style = toneStyles["professional"]
	}
	return subject + ". Style: " + style + ". No text or lettering in the image."
}

// cacheImage downloads the hosted image to the local output directory.
// Providers expire their URLs, so exports prefer the cached copy.
func (e *Engine) cacheImage(ctx context.Context, imageURL string, index int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading image: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, fmt.Sprintf("%02d_%s.png", index, uuid.New().String()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}
