package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"ServiceSaathi/bot"
	"ServiceSaathi/bot/chat"
	"ServiceSaathi/bot/chat/apply"
	"ServiceSaathi/bot/chat/langmenu"
	"ServiceSaathi/bot/chat/status"
	chatwhatsapp "ServiceSaathi/bot/chat/whatsapp"
	"ServiceSaathi/bot/whatsapp"
	"ServiceSaathi/internal/config"
	repository "ServiceSaathi/internal/database"
	"ServiceSaathi/internal/http-server/api"
	"ServiceSaathi/internal/lib/logger"
	"ServiceSaathi/internal/lib/sl"
	"ServiceSaathi/internal/service/assist"
	"ServiceSaathi/internal/service/directory"
	"ServiceSaathi/internal/service/poller"
	"ServiceSaathi/internal/service/request"
	"ServiceSaathi/internal/service/transcript"
	"ServiceSaathi/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			// Forward warnings and errors to the admin chat
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting service saathi", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}

	var storage chat.StateStorage
	var pollerStore poller.ApplicationStore
	if db != nil {
		storage = chat.NewMongoStateStorage(db)
		pollerStore = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		mem := chat.NewMemoryStateStorage()
		storage = mem
		pollerStore = mem
		lg.Warn("mongo disabled, conversation state is in memory only")
	}

	waBot := whatsapp.NewWhatsAppBot(
		conf.WhatsApp.AccessToken,
		conf.WhatsApp.VerifyToken,
		conf.WhatsApp.AppSecret,
		conf.WhatsApp.PhoneNumberID,
		lg,
	)
	sender := chatwhatsapp.NewMessenger(waBot)

	directoryService := directory.NewDirectoryService(conf, lg)
	requestService := request.NewRequestService(conf, lg)

	registry := poller.NewRegistry(
		time.Duration(conf.Poller.IntervalSeconds)*time.Second,
		conf.Poller.MaxAttempts,
		requestService,
		sender,
		pollerStore,
		lg,
	)

	engine := chat.NewEngine(storage, lg)

	assistService := assist.NewAssistService(conf, lg)
	var prober langmenu.Prober
	if assistService != nil {
		prober = assistService
		engine.SetResponder(assistService)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("assist service initialized")
	}

	langMenu := langmenu.NewController(prober, lg)
	wizard := apply.NewWorkflow(directoryService, requestService, registry, langMenu, lg)
	langMenu.SetWizard(wizard)
	reporter := status.NewReporter(requestService, lg)
	engine.SetControllers(langMenu, wizard, reporter)

	hub := ws.NewHub(lg)
	go hub.Run()

	var messageStore transcript.MessageStore
	if db != nil {
		messageStore = db
	}
	engine.SetMessageListener(transcript.NewRecorder(messageStore, hub, lg))

	waBot.SetDispatcher(engine)

	// Bring pollers for unfinished applications back before accepting
	// traffic.
	if err := registry.Rehydrate(context.Background()); err != nil {
		lg.With(sl.Err(err)).Error("rehydrating pollers")
	}

	deps := api.Deps{
		Bot:        waBot,
		Dispatcher: engine,
		Hub:        hub,
	}
	if db != nil {
		deps.Store = db
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, deps)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
