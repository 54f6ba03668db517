package langmenu

import (
	"context"
	"log/slog"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/internal/lib/sl"
)

// Prober checks that the chat collaborator is reachable before a user is
// switched into chat mode.
type Prober interface {
	Ping(ctx context.Context) error
}

// WizardStarter hands control to the application wizard; the empty input
// triggers its first prompt.
type WizardStarter interface {
	Process(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies)
}

// Controller implements the two small state machines in front of the wizard:
// language choice and main-menu choice. Invalid input never advances state.
type Controller struct {
	prober Prober
	wizard WizardStarter
	log    *slog.Logger
}

func NewController(prober Prober, log *slog.Logger) *Controller {
	return &Controller{
		prober: prober,
		log:    log.With(sl.Module("langmenu")),
	}
}

// SetWizard wires the wizard hand-off for menu option 2.
func (c *Controller) SetWizard(w WizardStarter) {
	c.wizard = w
}

// PromptLanguage re-emits the two-option language prompt. Never mutates
// state.
func (c *Controller) PromptLanguage(_ *chat.ConversationState, r *chat.Replies) {
	r.Add(chat.TextLanguagePrompt())
}

// ChooseLanguage handles the answer to the language prompt. On success the
// main menu follows directly.
func (c *Controller) ChooseLanguage(_ context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	switch input {
	case "1":
		state.Language = chat.LangEnglish
	case "2":
		state.Language = chat.LangMalayalam
	default:
		r.Add(chat.TextLanguageInvalid())
		return
	}

	c.log.With(
		slog.String("user_id", state.UserID),
		slog.String("language", string(state.Language)),
	).Info("language selected")

	r.Add(chat.TextLanguageSet(state.Language))
	c.PromptMenu(state, r)
}

// PromptMenu re-emits the main menu. Never mutates state.
func (c *Controller) PromptMenu(state *chat.ConversationState, r *chat.Replies) {
	r.Add(chat.TextMainMenu(state.Language))
}

// ChooseMenu handles the answer to the main menu. Option 1 requires the chat
// collaborator to pass a liveness probe; option 2 hands off to the wizard.
func (c *Controller) ChooseMenu(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	switch input {
	case "1":
		if c.prober == nil {
			r.Add(chat.TextChatUnavailable(state.Language))
			c.PromptMenu(state, r)
			return
		}
		if err := c.prober.Ping(ctx); err != nil {
			c.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("chat liveness probe failed")
			r.Add(chat.TextChatUnavailable(state.Language))
			c.PromptMenu(state, r)
			return
		}
		state.MenuChoice = chat.MenuChat
		r.Add(chat.TextChatActivated(state.Language))

	case "2":
		state.MenuChoice = chat.MenuApply
		c.wizard.Process(ctx, state, "", r)

	default:
		r.Add(chat.TextMenuInvalid(state.Language))
		c.PromptMenu(state, r)
	}
}
