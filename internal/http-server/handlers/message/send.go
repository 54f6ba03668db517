package message

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ServiceSaathi/internal/lib/api/response"
	"ServiceSaathi/internal/lib/sl"
)

// Dispatcher runs one inbound message through the conversation engine.
type Dispatcher interface {
	Handle(ctx context.Context, userID, text string) []string
}

type SendRequest struct {
	UserID string `json:"user_id" validate:"required,min=5,max=20"`
	Text   string `json:"text" validate:"required,max=4096"`
}

type SendResponse struct {
	response.Response
	Replies []string `json:"replies"`
}

var validate = validator.New()

// Send injects a message into the conversation engine on behalf of a user
// and returns the replies. Lets operators drive the dialogue without going
// through the WhatsApp webhook.
func Send(log *slog.Logger, dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(sl.Module("handlers.message"))

		var req SendRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			logger.Warn("decoding request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Warn("validating request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("user_id and text are required"))
			return
		}

		replies := dispatcher.Handle(r.Context(), req.UserID, req.Text)

		render.JSON(w, r, SendResponse{
			Response: response.OK(),
			Replies:  replies,
		})
	}
}
