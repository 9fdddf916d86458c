package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiClient is the generation provider. All calls go through a circuit
// breaker and a client-side rate limiter; failures surface as
// ErrGenerationUnavailable and are never retried here.
type GeminiClient struct {
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	client      *genai.Client
	model       string
}

func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	// Stay under the free-tier RPM with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(10*0.9/60.0), 2)

	return &GeminiClient{
		breaker:     breaker,
		rateLimiter: rateLimiter,
		client:      client,
		model:       model,
	}, nil
}

// Complete answers a question grounded in the given context blocks. An empty
// context slice is a valid call and produces a "no information found" style
// answer from the model.
func (gc *GeminiClient) Complete(ctx context.Context, question string, contextBlocks []string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.Int("gemini.context_blocks", len(contextBlocks)),
		attribute.String("gemini.model", gc.model),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		fullPrompt := buildPromptWithContext(question, contextBlocks)

		resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
			return nil, err
		}
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	answer := extractText(result.(*genai.GenerateContentResponse))
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationUnavailable)
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return answer, nil
}

// extractText flattens the first candidate's text parts.
func extractText(resp *genai.GenerateContentResponse) string {
	total := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				total += string(text)
			}
		}
		break
	}
	return total
}

// buildPromptWithContext frames the question with numbered context blocks.
func buildPromptWithContext(question string, contextBlocks []string) string {
	if len(contextBlocks) == 0 {
		return fmt.Sprintf("Answer this question about the user's work notes. "+
			"No matching notes were found, so say so if you cannot answer: %s", question)
	}

	contextStr := ""
	for i, block := range contextBlocks {
		contextStr += fmt.Sprintf("Context %d:\n%s\n\n", i+1, block)
	}

	return fmt.Sprintf("Based on the following context:\n\n%s\n\nPlease answer this question: %s", contextStr, question)
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
