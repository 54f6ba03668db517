package directory

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ServiceSaathi/internal/service/gateway"
)

func testService(baseURL string) *Service {
	return &Service{
		BaseURL: baseURL,
		Log:     slog.New(slog.DiscardHandler),
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func TestListDistrictsIsStatic(t *testing.T) {
	// no server at all: districts must not hit the network
	s := testService("http://127.0.0.1:1")
	districts := s.ListDistricts()
	assert.Len(t, districts, 14)
	assert.Contains(t, districts, "Ernakulam")
	assert.Contains(t, districts, "Kasaragod")
}

func TestListSubdistricts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subdistricts", r.URL.Path)
		require.Equal(t, "Ernakulam", r.URL.Query().Get("district"))
		json.NewEncoder(w).Encode([]string{"Aluva", "Kochi"})
	}))
	defer srv.Close()

	subs, err := testService(srv.URL).ListSubdistricts(context.Background(), "Ernakulam")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aluva", "Kochi"}, subs)
}

func TestListDocumentTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/document-types", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]string{
			{"key": "income-cert", "name": "Income Certificate"},
		})
	}))
	defer srv.Close()

	docs, err := testService(srv.URL).ListDocumentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "income-cert", docs[0].Key)
	assert.Equal(t, "Income Certificate", docs[0].Name)
}

func TestListCentresQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/centres", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "Ernakulam", q.Get("district"))
		require.Equal(t, "Aluva", q.Get("subdistrict"))
		require.Equal(t, "income-cert", q.Get("service"))
		require.Equal(t, "5", q.Get("limit"))
		json.NewEncoder(w).Encode([]map[string]string{
			{"centreId": "AKC-1", "centreName": "Akshaya Aluva", "contact": "0484", "address": "Market Rd"},
		})
	}))
	defer srv.Close()

	centres, err := testService(srv.URL).ListCentres(context.Background(), "Ernakulam", "Aluva", "income-cert", 5)
	require.NoError(t, err)
	require.Len(t, centres, 1)
	assert.Equal(t, "AKC-1", centres[0].CentreID)
}

func TestErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testService(srv.URL).ListSubdistricts(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}
