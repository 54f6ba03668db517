package transcript

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ServiceSaathi/entity"
	"ServiceSaathi/internal/lib/api/response"
	"ServiceSaathi/internal/lib/sl"
)

const defaultLimit = 50

// Core reads stored transcript entries.
type Core interface {
	GetChatMessages(ctx context.Context, userID string, limit, offset int) ([]entity.ChatMessage, error)
}

type ListResponse struct {
	response.Response
	Messages []entity.ChatMessage `json:"messages"`
}

// List returns a user's conversation transcript, newest first.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(sl.Module("handlers.transcript"))

		userID := chi.URLParam(r, "userID")
		if userID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("user id is required"))
			return
		}

		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		offset := 0
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		messages, err := handler.GetChatMessages(r.Context(), userID, limit, offset)
		if err != nil {
			logger.Error("loading transcript", slog.String("user_id", userID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load transcript"))
			return
		}

		render.JSON(w, r, ListResponse{
			Response: response.OK(),
			Messages: messages,
		})
	}
}
