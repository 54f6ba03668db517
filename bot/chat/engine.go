package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ServiceSaathi/entity"
	"ServiceSaathi/internal/lib/sl"
)

// Global commands, matched against the trimmed, case-folded input ahead of
// any state-local handling.
const (
	CmdLanguage = "/lang"
	CmdService  = "/service"
	CmdCancel   = "/cancel"
)

// greetings reset the dialogue to the language gate or the main menu.
var greetings = map[string]bool{
	"hi":       true,
	"hello":    true,
	"ഹലോ":      true,
	"നമസ്കാരം": true,
}

// Engine is the top-level dispatcher: one inbound message in, zero or more
// outbound texts out. Handling is serialized per user and fully parallel
// across users.
type Engine struct {
	storage   StateStorage
	langMenu  LanguageMenu
	wizard    Wizard
	status    StatusReporter
	responder Responder
	listener  MessageListener
	log       *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a new dispatcher over the given state storage.
func NewEngine(storage StateStorage, log *slog.Logger) *Engine {
	return &Engine{
		storage: storage,
		log:     log.With(sl.Module("chat engine")),
		locks:   make(map[string]*sync.Mutex),
	}
}

// SetControllers wires the state-local controllers.
func (e *Engine) SetControllers(langMenu LanguageMenu, wizard Wizard, status StatusReporter) {
	e.langMenu = langMenu
	e.wizard = wizard
	e.status = status
}

// SetResponder sets the free-text chat collaborator (may be nil).
func (e *Engine) SetResponder(r Responder) {
	e.responder = r
}

// SetMessageListener sets the transcript listener (may be nil).
func (e *Engine) SetMessageListener(l MessageListener) {
	e.listener = l
}

// Handle processes one inbound message and returns the replies to deliver.
// The read-modify-write cycle over the user's state is guarded by a
// per-user lock; the state is saved best-effort even when dispatch fails.
func (e *Engine) Handle(ctx context.Context, userID, text string) []string {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	r := &Replies{}
	e.record(userID, text, "inbound")

	state, err := e.storage.Load(ctx, userID)
	if err != nil {
		e.log.With(slog.String("user_id", userID), sl.Err(err)).Error("loading conversation state")
		r.Add(TextCriticalError(LangNone))
		e.recordReplies(userID, r)
		return r.Messages()
	}
	if state == nil {
		state = NewConversationState(userID)
		e.log.With(slog.String("user_id", userID)).Info("new conversation")
	}

	e.dispatchSafe(ctx, state, text, r)

	state.UpdatedAt = time.Now()
	if err := e.storage.Save(ctx, state); err != nil {
		e.log.With(slog.String("user_id", userID), sl.Err(err)).Error("saving conversation state")
	}

	e.recordReplies(userID, r)
	return r.Messages()
}

// dispatchSafe runs dispatch under a recover so an unexpected fault never
// leaves the user without an answer.
func (e *Engine) dispatchSafe(ctx context.Context, state *ConversationState, text string, r *Replies) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.With(
				slog.String("user_id", state.UserID),
				slog.Any("panic", rec),
			).Error("dispatch panic")
			r.Add(TextCriticalError(state.Language))
		}
	}()
	e.dispatch(ctx, state, text, r)
}

func (e *Engine) dispatch(ctx context.Context, state *ConversationState, text string, r *Replies) {
	input := strings.TrimSpace(text)
	lower := strings.ToLower(input)

	// Command precedence, fixed order.
	switch {
	case lower == CmdLanguage:
		state.ResetLanguage()
		e.langMenu.PromptLanguage(state, r)
		return

	case lower == CmdService:
		if state.Language == LangNone {
			e.langMenu.PromptLanguage(state, r)
			return
		}
		e.status.Report(ctx, state, r)
		e.langMenu.PromptMenu(state, r)
		return

	case lower == CmdCancel:
		e.wizard.CancelLatest(ctx, state, r)
		return

	case greetings[lower]:
		state.MenuChoice = MenuNone
		state.WizardStage = StageNone
		state.Scratch = WizardScratch{}
		if state.Language == LangNone {
			e.langMenu.PromptLanguage(state, r)
		} else {
			e.langMenu.PromptMenu(state, r)
		}
		return
	}

	// State-local delegation.
	switch {
	case state.Language == LangNone:
		e.langMenu.ChooseLanguage(ctx, state, input, r)

	case state.MenuChoice == MenuNone:
		e.langMenu.ChooseMenu(ctx, state, input, r)

	case state.WizardStage != StageNone || state.MenuChoice == MenuApply:
		e.wizard.Process(ctx, state, input, r)

	case state.MenuChoice == MenuChat:
		if lower == "back" || lower == "0" {
			state.MenuChoice = MenuNone
			e.langMenu.PromptMenu(state, r)
			return
		}
		e.respondChat(ctx, state, input, r)

	default:
		e.langMenu.PromptMenu(state, r)
	}
}

func (e *Engine) respondChat(ctx context.Context, state *ConversationState, input string, r *Replies) {
	if e.responder == nil {
		r.Add(TextChatUnavailable(state.Language))
		return
	}
	answer, err := e.responder.Respond(ctx, input, state.Language.Malayalam())
	if err != nil || answer == "" {
		if err != nil {
			e.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("chat responder")
		}
		r.Add(TextChatError(state.Language))
		return
	}
	r.Add(answer)
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

func (e *Engine) record(userID, text, direction string) {
	if e.listener == nil || text == "" {
		return
	}
	e.listener.OnChatMessage(entity.ChatMessage{
		UserID:    userID,
		Direction: direction,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

func (e *Engine) recordReplies(userID string, r *Replies) {
	for _, msg := range r.Messages() {
		e.record(userID, msg, "outbound")
	}
}
