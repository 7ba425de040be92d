// Package gateway is the typed client for the local translation service
// and the local model registry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/KazKozDev/ConText/internal/domain"
)

const instrumentationName = "github.com/KazKozDev/ConText/internal/gateway"

// Operation names used in errors, spans, and metrics.
const (
	OpListModels      = "list_models"
	OpTranslate       = "translate"
	OpSpeech          = "synthesize_speech"
	OpSummarize       = "summarize"
	OpScrapeURL       = "scrape_url"
	OpFetchTranscript = "fetch_transcript"
	OpDetectLanguage  = "detect_language"
	OpHealth          = "health"
)

// Client issues exactly one HTTP request per call. It never retries.
type Client struct {
	backendURL  string
	registryURL string
	httpClient  *http.Client
	logger      *slog.Logger
	tracer      trace.Tracer
	duration    metric.Float64Histogram
}

// New creates a client for the given service and registry base addresses.
func New(backendURL, registryURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		backendURL:  strings.TrimRight(backendURL, "/"),
		registryURL: strings.TrimRight(registryURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
		tracer:      otel.Tracer(instrumentationName),
	}

	histogram, err := otel.Meter(instrumentationName).Float64Histogram(
		"gateway.request.duration",
		metric.WithDescription("Backend request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err == nil {
		c.duration = histogram
	}
	return c
}

// BackendURL returns the translation service base address.
func (c *Client) BackendURL() string { return c.backendURL }

// RegistryURL returns the model registry base address.
func (c *Client) RegistryURL() string { return c.registryURL }

// ListModels fetches the registry catalog in registry order.
func (c *Client) ListModels(ctx context.Context) ([]domain.Model, error) {
	var resp TagsResponse
	if err := c.doJSON(ctx, OpListModels, http.MethodGet, c.registryURL+"/api/tags", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Models == nil {
		return nil, malformed(OpListModels, "response has no models field", nil)
	}

	models := make([]domain.Model, 0, len(*resp.Models))
	for _, m := range *resp.Models {
		if strings.TrimSpace(m.Name) == "" {
			return nil, malformed(OpListModels, "model entry has no name", nil)
		}
		models = append(models, domain.Model{
			Name:        m.Name,
			SizeBytes:   m.Size,
			ContentHash: m.Digest,
		})
	}
	return models, nil
}

// Translate translates text between two language codes with the given model.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang, model string) (string, error) {
	req := TranslateRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang, Model: model}
	var resp TranslateResponse
	if err := c.doJSON(ctx, OpTranslate, http.MethodPost, c.backendURL+"/translate", req, &resp); err != nil {
		return "", err
	}
	if resp.TranslatedText == nil {
		return "", malformed(OpTranslate, "response has no translated_text field", nil)
	}
	return *resp.TranslatedText, nil
}

// SynthesizeSpeech returns the audio payload for text. Blank text is
// rejected without a request.
func (c *Client) SynthesizeSpeech(ctx context.Context, text, lang string) ([]byte, error) {
	if domain.IsBlank(text) {
		return nil, &Error{Op: OpSpeech, Kind: KindEmptyInput, Message: "Nothing to speak"}
	}

	body, err := c.do(ctx, OpSpeech, http.MethodPost, c.backendURL+"/tts", SpeechRequest{Text: text, Lang: lang})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, malformed(OpSpeech, "empty audio payload", nil)
	}
	return body, nil
}

// Summarize summarizes text. A structured backend error is surfaced verbatim.
func (c *Client) Summarize(ctx context.Context, text, lang, model string) (string, error) {
	req := SummarizeRequest{Text: text, Lang: lang, Model: model}
	var resp SummarizeResponse
	if err := c.doJSON(ctx, OpSummarize, http.MethodPost, c.backendURL+"/summarize", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", &Error{Op: OpSummarize, Kind: KindBackendRejected, Status: http.StatusOK, Message: resp.Error}
	}
	if resp.Summary == nil {
		return "", malformed(OpSummarize, "response has no summary field", nil)
	}
	return *resp.Summary, nil
}

// ScrapeURL extracts the readable content of a web page.
func (c *Client) ScrapeURL(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateURL(OpScrapeURL, rawURL)
	if err != nil {
		return "", err
	}
	return c.fetchContent(ctx, OpScrapeURL, "/scrape-url", target)
}

// FetchTranscript returns the trimmed transcript of a video. A blank
// transcript is an EmptyResult failure.
func (c *Client) FetchTranscript(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateURL(OpFetchTranscript, rawURL)
	if err != nil {
		return "", err
	}

	content, err := c.fetchContent(ctx, OpFetchTranscript, "/youtube-transcript", target)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", &Error{Op: OpFetchTranscript, Kind: KindEmptyResult, Message: "No transcript content available"}
	}
	return content, nil
}

// DetectLanguage asks the service for the language code of text.
func (c *Client) DetectLanguage(ctx context.Context, text string) (string, error) {
	if domain.IsBlank(text) {
		return "", &Error{Op: OpDetectLanguage, Kind: KindEmptyInput, Message: "No text provided"}
	}

	var resp DetectResponse
	if err := c.doJSON(ctx, OpDetectLanguage, http.MethodPost, c.backendURL+"/detect-language", DetectRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	if resp.DetectedLanguage == nil {
		return "", malformed(OpDetectLanguage, "response has no detected_language field", nil)
	}
	return strings.ToLower(strings.TrimSpace(*resp.DetectedLanguage)), nil
}

// Health returns the status string reported by the service.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, OpHealth, http.MethodGet, c.backendURL+"/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(op, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &Error{Op: op, Kind: KindInvalidURL, Message: "Please enter a URL"}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", &Error{Op: op, Kind: KindInvalidURL, Message: fmt.Sprintf("Invalid URL: %s", trimmed), Err: err}
	}
	return trimmed, nil
}

// fetchContent posts a URL and returns the content field.
func (c *Client) fetchContent(ctx context.Context, op, path, target string) (string, error) {
	var resp ContentResponse
	if err := c.doJSON(ctx, op, http.MethodPost, c.backendURL+path, URLRequest{URL: target}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", &Error{Op: op, Kind: KindBackendRejected, Status: http.StatusOK, Message: resp.Error}
	}
	if resp.Content == nil {
		return "", malformed(op, "response has no content field", nil)
	}
	return *resp.Content, nil
}

// doJSON performs one request and decodes a JSON success body into out.
func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, in, out any) error {
	body, err := c.do(ctx, op, method, endpoint, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return malformed(op, "response is not valid JSON", err)
	}
	return nil
}

// do performs one request and returns the raw success body.
func (c *Client) do(ctx context.Context, op, method, endpoint string, in any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", endpoint),
	))
	defer span.End()

	start := time.Now()
	body, status, err := c.roundTrip(ctx, op, method, endpoint, in)
	elapsed := time.Since(start)

	attrs := []attribute.KeyValue{attribute.String("operation", op), attribute.Int("http.status_code", status)}
	span.SetAttributes(attrs...)
	if c.duration != nil {
		c.duration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Message(err))
		c.logger.Warn("backend request failed", "op", op, "status", status, "duration", elapsed, "error", err)
		return nil, err
	}
	c.logger.Debug("backend request", "op", op, "status", status, "duration", elapsed)
	return body, nil
}

// roundTrip sends the request and normalizes transport and status failures.
func (c *Client) roundTrip(ctx context.Context, op, method, endpoint string, in any) ([]byte, int, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: create request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Op: op, Kind: KindUnreachable, Message: "Backend is unreachable at " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Op: op, Kind: KindUnreachable, Status: resp.StatusCode, Message: "Connection dropped while reading response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, rejected(op, resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

// rejected builds a BackendRejected error, preferring the structured error message.
func rejected(op string, status int, body []byte) *Error {
	message := fmt.Sprintf("%s failed: %d %s", op, status, http.StatusText(status))
	var structured errorBody
	if json.Unmarshal(body, &structured) == nil && strings.TrimSpace(structured.Error) != "" {
		message = structured.Error
	}
	return &Error{Op: op, Kind: KindBackendRejected, Status: status, Body: string(body), Message: message}
}

func malformed(op, message string, err error) *Error {
	return &Error{Op: op, Kind: KindMalformed, Message: "Unexpected response from backend: " + message, Err: err}
}
