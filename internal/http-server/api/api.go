package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ServiceSaathi/bot/whatsapp"
	"ServiceSaathi/internal/config"
	"ServiceSaathi/internal/http-server/handlers/errors"
	"ServiceSaathi/internal/http-server/handlers/key"
	"ServiceSaathi/internal/http-server/handlers/message"
	"ServiceSaathi/internal/http-server/handlers/transcript"
	whatsapphandler "ServiceSaathi/internal/http-server/handlers/whatsapp"
	"ServiceSaathi/internal/http-server/middleware/authenticate"
	"ServiceSaathi/internal/http-server/middleware/timeout"
	"ServiceSaathi/internal/lib/api/response"
	"ServiceSaathi/internal/lib/sl"
	"ServiceSaathi/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Store bundles the repository capabilities the API needs. Nil when Mongo is
// disabled; the key and transcript routes respond 503 in that case.
type Store interface {
	authenticate.KeyChecker
	transcript.Core
	key.Core
}

// Deps is everything the router serves.
type Deps struct {
	Bot        *whatsapp.WhatsAppBot
	Dispatcher message.Dispatcher
	Hub        *ws.Hub
	Store      Store
}

func New(conf *config.Config, log *slog.Logger, deps Deps) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// Meta calls these; they authenticate themselves via the verify token
	// and the payload signature, not the API key.
	router.Route("/webhook/whatsapp", func(r chi.Router) {
		r.Get("/", whatsapphandler.WebhookVerify(log, deps.Bot))
		r.Post("/", whatsapphandler.WebhookHandler(log, deps.Bot))
	})

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		if conf.Listen.ApiKey != "" && r.URL.Query().Get("key") != conf.Listen.ApiKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ws.ServeWs(deps.Hub, log, w, r)
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(30))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, deps.Store, conf.Listen.ApiKey))

		v1.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, response.OK())
		})
		v1.Post("/message", message.Send(log, deps.Dispatcher))

		if deps.Store != nil {
			v1.Get("/transcript/{userID}", transcript.List(log, deps.Store))
			v1.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, deps.Store))
			})
		}
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
