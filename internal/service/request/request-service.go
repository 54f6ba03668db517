package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"ServiceSaathi/entity"
	"ServiceSaathi/internal/config"
	"ServiceSaathi/internal/lib/sl"
	"ServiceSaathi/internal/service/gateway"
)

// CreateResult is the gateway's answer to a successful request creation.
type CreateResult struct {
	RequestID         string                    `json:"serviceRequestId"`
	Message           string                    `json:"message"`
	RequiredDocuments []entity.RequiredDocument `json:"requiredDocuments"`
	UploadLink        string                    `json:"uploadLink"`
}

// Summary is one row of a user's request listing.
type Summary struct {
	RequestID    string               `json:"serviceRequestId"`
	DocumentType string               `json:"documentType"`
	DocumentName string               `json:"documentName"`
	CentreID     string               `json:"centreId"`
	Status       entity.RequestStatus `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// Service is the client to the external request-processing gateway. Calls
// carry a bounded timeout and are never retried; failures surface as the
// typed gateway errors.
type Service struct {
	BaseURL string
	Log     *slog.Logger
	client  *http.Client
}

func NewRequestService(conf *config.Config, logger *slog.Logger) *Service {
	return &Service{
		BaseURL: conf.Requests.BaseURL,
		Log:     logger.With(sl.Module("request service")),
		client: &http.Client{
			Timeout: time.Duration(conf.Requests.TimeoutSeconds) * time.Second,
		},
	}
}

// Create submits a new service request for the given document type at the
// given centre on behalf of the user.
func (s *Service) Create(ctx context.Context, documentTypeKey, centreID, userID string) (*CreateResult, error) {
	payload, err := json.Marshal(map[string]string{
		"document-type": documentTypeKey,
		"centre-id":     centreID,
		"mobile-number": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/service-request", s.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, gateway.FromStatusCode(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result CreateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	s.Log.With(
		slog.String("request_id", result.RequestID),
		slog.String("document_type", documentTypeKey),
		slog.String("centre_id", centreID),
	).Info("service request created")

	return &result, nil
}

// Cancel asks the gateway to cancel a request. A 400/404 answer means the
// request is already terminal on the gateway side and maps to the
// corresponding typed error.
func (s *Service) Cancel(ctx context.Context, requestID string) error {
	endpoint := fmt.Sprintf("%s/service-request/%s", s.BaseURL, url.PathEscape(requestID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return gateway.FromStatusCode(resp.StatusCode)
	}

	s.Log.With(slog.String("request_id", requestID)).Info("service request cancelled")
	return nil
}

// Status returns the current processing status of a request.
func (s *Service) Status(ctx context.Context, requestID string) (entity.RequestStatus, error) {
	endpoint := fmt.Sprintf("%s/service-request/%s", s.BaseURL, url.PathEscape(requestID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", gateway.FromStatusCode(resp.StatusCode)
	}

	var result struct {
		Status entity.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Status, nil
}

// ListByUser returns every request the gateway has on record for the user,
// newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	endpoint := fmt.Sprintf("%s/service-request/phone/%s", s.BaseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, gateway.FromStatusCode(resp.StatusCode)
	}

	var summaries []Summary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return summaries, nil
}
