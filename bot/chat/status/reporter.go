package status

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/internal/lib/sl"
	"ServiceSaathi/internal/service/request"
)

// batchSize limits how many request summaries go into one message.
const batchSize = 3

// Requests lists a user's service requests on the external gateway.
type Requests interface {
	ListByUser(ctx context.Context, userID string) ([]request.Summary, error)
}

// Reporter answers the /service command with one summary block per request,
// newest first, batched into WhatsApp-sized messages.
type Reporter struct {
	requests Requests
	log      *slog.Logger
}

func NewReporter(requests Requests, log *slog.Logger) *Reporter {
	return &Reporter{
		requests: requests,
		log:      log.With(sl.Module("status reporter")),
	}
}

func (rep *Reporter) Report(ctx context.Context, state *chat.ConversationState, r *chat.Replies) {
	summaries, err := rep.requests.ListByUser(ctx, state.UserID)
	if err != nil {
		rep.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("fetching request list")
		r.Add(chat.TextStatusFetchFailed(state.Language))
		return
	}
	if len(summaries) == 0 {
		r.Add(chat.TextNoRequests(state.Language))
		return
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	r.Add(chat.TextStatusHeader(state.Language, len(summaries)))

	var batch []string
	for i, s := range summaries {
		document := s.DocumentName
		if document == "" {
			document = s.DocumentType
		}
		batch = append(batch, chat.TextStatusLine(state.Language, s.RequestID, document, s.CentreID, s.Status, s.CreatedAt))

		if len(batch) == batchSize || i == len(summaries)-1 {
			r.Add(strings.Join(batch, "\n\n---\n\n"))
			batch = nil
		}
	}
}
