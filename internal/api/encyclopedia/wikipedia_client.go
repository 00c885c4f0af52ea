package encyclopedia

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/gezi-ai/app/observability/metrics"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

// maxSummaryBytes caps how much of a summary response is read.
const maxSummaryBytes = 1 << 20

var _ Reader = (*WikipediaClient)(nil)

// Reader returns the encyclopedia summary for a place, or nil when there is none.
type Reader interface {
	Summary(ctx context.Context, place string) *types.EncyclopediaSummary
}

// WikipediaClient reads page summaries from the Wikipedia REST API.
type WikipediaClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
}

func NewWikipediaClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *WikipediaClient {
	return &WikipediaClient{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Summary fetches /page/summary/{place}. Missing articles, failed requests and
// summaries without text all yield nil.
func (c *WikipediaClient) Summary(ctx context.Context, place string) *types.EncyclopediaSummary {
	ctx, span := otel.Tracer("EncyclopediaClient").Start(ctx, "Summary", trace.WithAttributes(
		attribute.String("place", place),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Summary"), slog.String("place", place))
	start := time.Now()

	absent := func(outcome string, err error) *types.EncyclopediaSummary {
		metrics.Get().RecordUpstream(ctx, metrics.UpstreamEncyclopedia, outcome, time.Since(start))
		metrics.Get().RecordFallback(ctx, metrics.UpstreamEncyclopedia)
		if err != nil {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, outcome)
		l.WarnContext(ctx, "No encyclopedia summary", slog.String("outcome", outcome), slog.Any("error", err))
		return nil
	}

	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(place)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return absent("request_error", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return absent("transport_error", &types.NetworkError{Op: "encyclopedia: summary", URL: endpoint, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return absent("bad_status", &types.NetworkError{Op: "encyclopedia: summary", URL: endpoint, StatusCode: resp.StatusCode})
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSummaryBytes))
	if err != nil {
		return absent("read_error", err)
	}
	if !gjson.ValidBytes(raw) {
		return absent("decode_error", &types.EmptyResultError{Op: "encyclopedia: summary", Reason: "invalid JSON"})
	}

	doc := gjson.ParseBytes(raw)
	extract := strings.TrimSpace(doc.Get("extract").String())
	if extract == "" {
		extract = htmlText(doc.Get("extract_html").String())
	}
	if extract == "" {
		return absent("empty_extract", &types.EmptyResultError{Op: "encyclopedia: summary", Reason: "no extract"})
	}

	summary := &types.EncyclopediaSummary{
		Extract:   extract,
		Thumbnail: doc.Get("thumbnail.source").String(),
		URL:       doc.Get("content_urls.desktop.page").String(),
	}

	metrics.Get().RecordUpstream(ctx, metrics.UpstreamEncyclopedia, "ok", time.Since(start))
	span.SetAttributes(attribute.Bool("summary.has_thumbnail", summary.Thumbnail != ""))
	span.SetStatus(codes.Ok, "Summary found")
	l.DebugContext(ctx, "Encyclopedia summary found", slog.String("url", summary.URL))
	return summary
}

// htmlText returns the whitespace-normalized text content of an HTML fragment.
func htmlText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
