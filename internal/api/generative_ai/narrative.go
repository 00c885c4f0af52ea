package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/gezi-ai/app/observability/metrics"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

const destinationPromptTemplate = `%s şehri hakkında turizmle ilgili aşağıdaki bilgileri Türkçe olarak ver:

  1. Tarihçe ve Genel Bilgi (2-3 cümle)
  2. En İyi Ziyaret Zamanı (1 cümle)
  3. Önemli Turistik Yerler (en önemli 3 yer)
  4. Yerel Mutfak (2-3 önemli yemek)
  5. Ulaşım ve Konaklama Tavsiyeleri (2 madde)
  6. Önemli Festivaller veya Etkinlikler (varsa 1-2 tane)

  Lütfen yanıtı düzenli, maddeler halinde ve turistik açıdan ilgi çekici şekilde formatla.
  Her bilgiyi yeni paragrafta ver ve emoji kullan.
  Bilgileri kısa ve öz tut ama ilgi çekici detayları ekle.`

const fallbackTemplate = "%s için şu anda detaylı bilgi sağlanamıyor. Lütfen daha sonra tekrar deneyin."

var errEmptyNarrative = errors.New("model returned no text")

// TextGenerator is the part of AIClient the narrative generator depends on.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ TextGenerator = (*AIClient)(nil)

// Narrator produces a Turkish travel narrative for a place. It never fails.
type Narrator interface {
	DestinationInfo(ctx context.Context, place string) types.Narrative
}

var _ Narrator = (*NarrativeGenerator)(nil)

type NarrativeGenerator struct {
	logger      *slog.Logger
	generator   TextGenerator
	temperature float32
}

func NewNarrativeGenerator(generator TextGenerator, temperature float32, logger *slog.Logger) *NarrativeGenerator {
	return &NarrativeGenerator{
		logger:      logger,
		generator:   generator,
		temperature: temperature,
	}
}

// DestinationPrompt returns the fixed six-part outline prompt for place.
func DestinationPrompt(place string) string {
	return fmt.Sprintf(destinationPromptTemplate, place)
}

// FallbackNarrative returns the apology text used when no narrative could be generated.
func FallbackNarrative(place string) string {
	return fmt.Sprintf(fallbackTemplate, place)
}

// DestinationInfo asks the model for the outline narrative. On any failure, including an empty
// answer, it returns the apology text with Fallback set.
func (g *NarrativeGenerator) DestinationInfo(ctx context.Context, place string) types.Narrative {
	ctx, span := otel.Tracer("NarrativeGenerator").Start(ctx, "DestinationInfo", trace.WithAttributes(
		attribute.String("place", place),
	))
	defer span.End()

	l := g.logger.With(slog.String("method", "DestinationInfo"), slog.String("place", place))
	start := time.Now()

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](g.temperature)}
	text, err := g.generator.GenerateContent(ctx, DestinationPrompt(place), config)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyNarrative
	}
	if err != nil {
		outcome := "error"
		if errors.Is(err, errEmptyNarrative) {
			outcome = "empty"
		}
		metrics.Get().RecordUpstream(ctx, metrics.UpstreamNarrative, outcome, time.Since(start))
		metrics.Get().RecordFallback(ctx, metrics.UpstreamNarrative)
		l.WarnContext(ctx, "Narrative generation failed, using fallback text", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Narrative generation failed")
		return types.Narrative{Text: FallbackNarrative(place), Fallback: true}
	}

	metrics.Get().RecordUpstream(ctx, metrics.UpstreamNarrative, "ok", time.Since(start))
	span.SetAttributes(attribute.Int("narrative.length", len(text)))
	span.SetStatus(codes.Ok, "Narrative generated")
	l.DebugContext(ctx, "Narrative generated", slog.Int("length", len(text)))
	return types.Narrative{Text: text}
}
