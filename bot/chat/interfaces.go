package chat

import (
	"context"

	"ServiceSaathi/entity"
)

// Replies collects the outbound messages produced by one dispatch turn. It
// is threaded through the controllers explicitly and returned to the
// transport, which owns delivery.
type Replies struct {
	messages []string
}

// Add appends one outbound message.
func (r *Replies) Add(text string) {
	if text != "" {
		r.messages = append(r.messages, text)
	}
}

// Messages returns the collected messages in send order.
func (r *Replies) Messages() []string { return r.messages }

// Empty reports whether nothing has been collected yet.
func (r *Replies) Empty() bool { return len(r.messages) == 0 }

// Sender delivers a text message to a user outside a dispatch turn (used by
// the status poller). Delivery failures are the transport's concern.
type Sender interface {
	Send(userID, text string) error
}

// StateStorage handles persistence of conversation states.
type StateStorage interface {
	Save(ctx context.Context, state *ConversationState) error
	Load(ctx context.Context, userID string) (*ConversationState, error)
}

// MessageListener is notified of every inbound and outbound message so the
// transcript can be stored and broadcast without coupling the engine to the
// log store.
type MessageListener interface {
	OnChatMessage(msg entity.ChatMessage)
}

// LanguageMenu is the controller gating entry into chat mode or the wizard.
type LanguageMenu interface {
	PromptLanguage(state *ConversationState, r *Replies)
	ChooseLanguage(ctx context.Context, state *ConversationState, input string, r *Replies)
	MenuPrompter
	ChooseMenu(ctx context.Context, state *ConversationState, input string, r *Replies)
}

// MenuPrompter re-emits the main menu. The wizard receives this capability
// at construction time instead of reaching back into the menu controller.
type MenuPrompter interface {
	PromptMenu(state *ConversationState, r *Replies)
}

// Wizard drives the document-application dialogue and owns request-level
// cancellation.
type Wizard interface {
	Process(ctx context.Context, state *ConversationState, input string, r *Replies)
	CancelLatest(ctx context.Context, state *ConversationState, r *Replies)
}

// StatusReporter answers the /service command.
type StatusReporter interface {
	Report(ctx context.Context, state *ConversationState, r *Replies)
}

// Responder is the free-text chat collaborator contract.
type Responder interface {
	Respond(ctx context.Context, query string, malayalam bool) (string, error)
}
