package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/models/dtos"
)

// CollaboratorProvider is the HTTP client for the suggestion service. It
// implements SuggestionProvider, FormatDetector and AttributeInferrer.
type CollaboratorProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
	Timeout time.Duration
}

// NewCollaboratorProvider creates a client from the collaborator config
func NewCollaboratorProvider(cfg config.CollaboratorConfig) *CollaboratorProvider {
	return &CollaboratorProvider{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:  cfg.APIKey,
		Client:  &http.Client{Timeout: cfg.Timeout},
		Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		Timeout: cfg.Timeout,
	}
}

// SuggestColumns asks for registry keys for the given headers
func (p *CollaboratorProvider) SuggestColumns(ctx context.Context, req dtos.SuggestColumnsRequest) (*dtos.ColumnSuggestions, error) {
	if len(req.Headers) == 0 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: "headers cannot be empty",
		}
	}

	var result dtos.ColumnSuggestions
	if _, err := p.doPost(ctx, "/suggest-columns", req, &result); err != nil {
		return nil, err
	}

	for _, s := range result.RenameSuggestions {
		if s.OriginalHeader == "" {
			return nil, &ProviderError{
				Code:    constants.ErrCodeMalformedResponse,
				Message: "rename suggestion without original_header",
			}
		}
	}

	return &result, nil
}

// DetectFormat asks for the date/aircraft column indexes and the timestamp format
func (p *CollaboratorProvider) DetectFormat(ctx context.Context, req dtos.DetectFormatRequest) (*dtos.FormatDetection, error) {
	if len(req.Headers) == 0 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: "headers cannot be empty",
		}
	}

	var result dtos.FormatDetection
	if _, err := p.doPost(ctx, "/detect-format", req, &result); err != nil {
		return nil, err
	}

	if outOfRange(result.DateTimeColumnIndex, len(req.Headers)) || outOfRange(result.AircraftColumnIndex, len(req.Headers)) {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedResponse,
			Message: "column index out of range",
		}
	}

	return &result, nil
}

// InferAircraft asks for the canonical name and attributes of an aircraft
func (p *CollaboratorProvider) InferAircraft(ctx context.Context, rawIdentifier string, fromImageSource bool) (*dtos.AircraftAttributes, error) {
	if strings.TrimSpace(rawIdentifier) == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: "aircraft identifier cannot be empty",
		}
	}

	req := dtos.InferAircraftRequest{
		RawIdentifier:   rawIdentifier,
		FromImageSource: fromImageSource,
	}

	var result dtos.AircraftAttributes
	if _, err := p.doPost(ctx, "/infer-aircraft", req, &result); err != nil {
		return nil, err
	}
	result.CanonicalName = strings.TrimSpace(result.CanonicalName)

	return &result, nil
}

func outOfRange(idx *int, n int) bool {
	return idx != nil && (*idx < 0 || *idx >= n)
}

// doPost performs a rate-limited POST with a JSON body, bounded by p.Timeout
func (p *CollaboratorProvider) doPost(ctx context.Context, endpoint string, payload interface{}, result interface{}) (int, error) {
	if p.APIKey == "" {
		return 0, &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: "collaborator api key is not set",
		}
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return 0, &ProviderError{
				Code:    constants.ErrCodeRateLimited,
				Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
				Err:     err,
			}
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	url := p.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Err:     readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, p.buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeMalformedResponse,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Err:     err,
		}
	}

	return resp.StatusCode, nil
}

// buildHTTPError creates appropriate error based on status code
func (p *CollaboratorProvider) buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: fmt.Sprintf("Authentication failed for endpoint %s", endpoint),
			Details: body,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: body,
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: fmt.Sprintf("Bad request to %s", endpoint),
			Details: body,
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeCollaboratorUnavailable,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details: body,
		}
	}
}
