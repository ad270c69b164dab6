package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/creatorlens/creatorlens-go/internal/constants"
	"github.com/creatorlens/creatorlens-go/internal/domain"
	"github.com/creatorlens/creatorlens-go/internal/service/cache"
	"github.com/creatorlens/creatorlens-go/internal/util"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxNicheQueries = 8

// NicheQueryService translates niche signals (free text, recent titles, tags)
// into a rotating list of search query strings. The LLM output is treated as
// an opaque list; the service only validates shape. Results are cached per
// channel because query generation is not time-sensitive.
type NicheQueryService struct {
	primary        JSONProvider
	fallback       JSONProvider
	cache          *cache.CacheService
	circuitBreaker *util.CircuitBreaker
	logger         *zap.Logger
}

type NicheQueryConfig struct {
	GeminiAPIKey   string
	OpenAIAPIKey   string
	GeminiModel    string
	OpenAIModel    string
	EnableFallback bool
}

func NewNicheQueryService(ctx context.Context, cfg NicheQueryConfig, cacheSvc *cache.CacheService, logger *zap.Logger) (*NicheQueryService, error) {
	svc := &NicheQueryService{
		cache:  cacheSvc,
		logger: logger,
	}

	if cfg.GeminiAPIKey != "" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}

		model := cfg.GeminiModel
		if model == "" {
			model = "gemini-2.5-flash"
		}
		svc.primary = NewGeminiProvider(geminiClient, model, logger)
	}

	if cfg.EnableFallback {
		openaiModel := cfg.OpenAIModel
		if openaiModel == "" {
			openaiModel = "gpt-5-mini"
		}
		if provider := NewOpenAIProvider(cfg.OpenAIAPIKey, openaiModel, logger); provider != nil {
			svc.fallback = provider
			logger.Info("OpenAI fallback enabled", zap.String("model", openaiModel))
		}
	}

	if svc.primary == nil && svc.fallback == nil {
		logger.Warn("No LLM provider configured, niche queries will use keyword extraction only")
	}

	if svc.primary != nil {
		svc.circuitBreaker = util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			constants.CircuitBreakerConfig.HealthCheckInterval,
			svc.healthCheckPing,
			logger,
		)
	}

	return svc, nil
}

// GenerateNicheQueries resolves the rotating query list for a channel. A
// failure here is fatal to the search that requested it (no queries means no
// discovery), so the degradation order is: cache, primary LLM, fallback LLM,
// rule-based keyword extraction.
func (s *NicheQueryService) GenerateNicheQueries(ctx context.Context, channelID string, signals domain.NicheSignals) (*domain.NicheQueries, error) {
	if channelID != "" {
		if cached, found := s.cache.GetNicheQueries(ctx, channelID); found {
			s.logger.Debug("Niche queries cache hit", zap.String("channel", channelID))
			return cached, nil
		}
	}

	queries, err := s.generate(ctx, signals)
	if err != nil {
		return nil, err
	}

	if channelID != "" {
		s.cache.SetNicheQueries(ctx, channelID, queries, constants.CacheTTL.NicheQueries)
	}

	return queries, nil
}

func (s *NicheQueryService) generate(ctx context.Context, signals domain.NicheSignals) (*domain.NicheQueries, error) {
	prompt := buildNichePrompt(signals)

	if s.primary != nil && (s.circuitBreaker == nil || s.circuitBreaker.CanExecute()) {
		result, err := s.primary.Generate(ctx, prompt)
		if err == nil {
			if queries, decodeErr := decodeNicheQueries(result.Text); decodeErr == nil {
				if s.circuitBreaker != nil {
					s.circuitBreaker.RecordSuccess()
				}
				return queries, nil
			}
		}
		if s.circuitBreaker != nil {
			s.circuitBreaker.RecordFailure(0)
		}
		s.logger.Warn("Primary niche generation failed", zap.Error(err))
	}

	if s.fallback != nil {
		result, err := s.fallback.Generate(ctx, prompt)
		if err == nil {
			if queries, decodeErr := decodeNicheQueries(result.Text); decodeErr == nil {
				return queries, nil
			}
		}
		s.logger.Warn("Fallback niche generation failed", zap.Error(err))
	}

	return ruleBasedQueries(signals)
}

func (s *NicheQueryService) healthCheckPing() bool {
	if s.primary == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()
	return s.primary.Ping(ctx)
}

func buildNichePrompt(signals domain.NicheSignals) string {
	var b strings.Builder
	b.WriteString("You are a YouTube growth analyst. Given signals about a channel, ")
	b.WriteString("identify its content niche and produce search queries that would surface ")
	b.WriteString("competing channels in the same niche.\n\n")

	if signals.NicheText != "" {
		fmt.Fprintf(&b, "Niche description: %s\n", util.TruncateString(signals.NicheText, 500))
	}
	if len(signals.VideoTitles) > 0 {
		b.WriteString("Recent video titles:\n")
		for _, title := range signals.VideoTitles {
			fmt.Fprintf(&b, "- %s\n", util.TruncateString(title, 120))
		}
	}
	if len(signals.TopTags) > 0 {
		fmt.Fprintf(&b, "Top tags: %s\n", strings.Join(signals.TopTags, ", "))
	}
	if signals.CategoryName != "" {
		fmt.Fprintf(&b, "Category: %s\n", signals.CategoryName)
	}

	fmt.Fprintf(&b, "\nRespond with JSON: {\"niche\": \"<short niche name>\", \"queries\": [<%d to %d distinct search strings, most specific first>]}\n",
		3, maxNicheQueries)

	return b.String()
}

func decodeNicheQueries(text string) (*domain.NicheQueries, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var queries domain.NicheQueries
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &queries); err != nil {
		return nil, fmt.Errorf("failed to decode niche queries: %w", err)
	}

	cleaned := make([]string, 0, len(queries.Queries))
	seen := make(map[string]struct{})
	for _, q := range queries.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, q)
		if len(cleaned) == maxNicheQueries {
			break
		}
	}

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no usable queries in response")
	}

	queries.Queries = cleaned
	return &queries, nil
}

// ruleBasedQueries is the no-LLM degradation path: split the niche text and
// tags into short keyword queries. Crude, but a search with crude queries
// beats a search with none.
func ruleBasedQueries(signals domain.NicheSignals) (*domain.NicheQueries, error) {
	var candidates []string

	if signals.NicheText != "" {
		candidates = append(candidates, strings.TrimSpace(signals.NicheText))
		words := strings.Fields(signals.NicheText)
		for i := 0; i+1 < len(words) && len(candidates) < maxNicheQueries; i++ {
			candidates = append(candidates, words[i]+" "+words[i+1])
		}
	}
	for _, tag := range signals.TopTags {
		if len(candidates) >= maxNicheQueries {
			break
		}
		if tag = strings.TrimSpace(tag); tag != "" {
			candidates = append(candidates, tag)
		}
	}
	if signals.CategoryName != "" && len(candidates) < maxNicheQueries {
		candidates = append(candidates, signals.CategoryName)
	}

	seen := make(map[string]struct{})
	queries := make([]string, 0, len(candidates))
	for _, q := range candidates {
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("no niche signals to build queries from")
	}

	niche := signals.NicheText
	if niche == "" {
		niche = signals.CategoryName
	}

	return &domain.NicheQueries{Niche: niche, Queries: queries}, nil
}
