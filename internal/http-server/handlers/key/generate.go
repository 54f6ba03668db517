package key

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ServiceSaathi/internal/lib/api/response"
	"ServiceSaathi/internal/lib/sl"
)

// Core issues API keys.
type Core interface {
	GenerateApiKey(username string) (string, error)
}

type GenerateRequest struct {
	Username string `json:"username"`
}

type GenerateResponse struct {
	response.Response
	Key string `json:"key"`
}

// Generate issues (or returns the existing) API key for a username.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(sl.Module("handlers.key"))

		var req GenerateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil || req.Username == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("username is required"))
			return
		}

		key, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			logger.Error("generating api key", slog.String("username", req.Username), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to generate key"))
			return
		}

		render.JSON(w, r, GenerateResponse{
			Response: response.OK(),
			Key:      key,
		})
	}
}
