package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ServiceSaathi/entity"
	"ServiceSaathi/internal/config"
	"ServiceSaathi/internal/lib/sl"
	"ServiceSaathi/internal/service/gateway"
)

// Districts is the fixed list of districts offered at the first wizard stage.
var Districts = []string{
	"Thiruvananthapuram", "Kollam", "Pathanamthitta", "Alappuzha",
	"Kottayam", "Idukki", "Ernakulam", "Thrissur",
	"Palakkad", "Malappuram", "Kozhikode", "Wayanad",
	"Kannur", "Kasaragod",
}

// Service is a read-only client to the centre/document directory.
type Service struct {
	BaseURL string
	Log     *slog.Logger
	client  *http.Client
}

func NewDirectoryService(conf *config.Config, logger *slog.Logger) *Service {
	return &Service{
		BaseURL: conf.Directory.BaseURL,
		Log:     logger.With(sl.Module("directory service")),
		client: &http.Client{
			Timeout: time.Duration(conf.Directory.TimeoutSeconds) * time.Second,
		},
	}
}

// ListDistricts returns the fixed district list. No network call is made;
// districts are reference data.
func (s *Service) ListDistricts() []string {
	return Districts
}

// ListSubdistricts returns the subdistricts that have at least one centre in
// the given district.
func (s *Service) ListSubdistricts(ctx context.Context, district string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/subdistricts?district=%s", s.BaseURL, url.QueryEscape(district))

	var subdistricts []string
	if err := s.getJSON(ctx, endpoint, &subdistricts); err != nil {
		return nil, err
	}

	s.Log.With(
		slog.String("district", district),
		slog.Int("count", len(subdistricts)),
	).Debug("listed subdistricts")

	return subdistricts, nil
}

// ListDocumentTypes returns the global document catalog. The catalog is not
// location-scoped.
func (s *Service) ListDocumentTypes(ctx context.Context) ([]entity.DocumentType, error) {
	endpoint := fmt.Sprintf("%s/document-types", s.BaseURL)

	var documents []entity.DocumentType
	if err := s.getJSON(ctx, endpoint, &documents); err != nil {
		return nil, err
	}

	return documents, nil
}

// ListCentres returns at most limit centres in district/subdistrict that are
// capable of processing the given document type.
func (s *Service) ListCentres(ctx context.Context, district, subdistrict, documentTypeKey string, limit int) ([]entity.Centre, error) {
	query := url.Values{}
	query.Set("district", district)
	query.Set("subdistrict", subdistrict)
	query.Set("service", documentTypeKey)
	query.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/centres?%s", s.BaseURL, query.Encode())

	var centres []entity.Centre
	if err := s.getJSON(ctx, endpoint, &centres); err != nil {
		return nil, err
	}

	s.Log.With(
		slog.String("district", district),
		slog.String("subdistrict", subdistrict),
		slog.String("service", documentTypeKey),
		slog.Int("count", len(centres)),
	).Debug("listed centres")

	return centres, nil
}

func (s *Service) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
