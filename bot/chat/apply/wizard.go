package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/entity"
	"ServiceSaathi/internal/lib/sl"
	"ServiceSaathi/internal/service/gateway"
	"ServiceSaathi/internal/service/request"
)

// centreLimit bounds the candidate centre list offered at the centre stage.
const centreLimit = 5

// Directory lists the reference data the wizard walks through.
type Directory interface {
	ListDistricts() []string
	ListSubdistricts(ctx context.Context, district string) ([]string, error)
	ListDocumentTypes(ctx context.Context) ([]entity.DocumentType, error)
	ListCentres(ctx context.Context, district, subdistrict, documentTypeKey string, limit int) ([]entity.Centre, error)
}

// Requests creates and cancels service requests on the external gateway.
type Requests interface {
	Create(ctx context.Context, documentTypeKey, centreID, userID string) (*request.CreateResult, error)
	Cancel(ctx context.Context, requestID string) error
}

// Poller tracks submitted requests in the background.
type Poller interface {
	Start(requestID, userID string, lang chat.Language)
	Stop(requestID string)
}

// Workflow is the five-stage application wizard. Every offered list is
// snapshotted into the wizard scratch at prompt time, so selections always
// resolve against what the user was shown; "back" re-fetches and
// re-snapshots.
type Workflow struct {
	directory Directory
	requests  Requests
	poller    Poller
	menu      chat.MenuPrompter
	log       *slog.Logger
}

func NewWorkflow(directory Directory, requests Requests, poller Poller, menu chat.MenuPrompter, log *slog.Logger) *Workflow {
	return &Workflow{
		directory: directory,
		requests:  requests,
		poller:    poller,
		menu:      menu,
		log:       log.With(sl.Module("apply wizard")),
	}
}

// Process handles one wizard input. "0" and "back" take precedence over
// numeric parsing at every stage.
func (w *Workflow) Process(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	lower := strings.ToLower(strings.TrimSpace(input))

	if lower == "0" {
		w.abort(state, r)
		return
	}
	if lower == "back" {
		w.goBack(ctx, state, r)
		return
	}

	switch state.WizardStage {
	case chat.StageNone:
		w.enterDistrict(state, r)
	case chat.StageDistrict:
		w.chooseDistrict(ctx, state, input, r)
	case chat.StageSubdistrict:
		w.chooseSubdistrict(ctx, state, input, r)
	case chat.StageDocument:
		w.chooseDocument(ctx, state, input, r)
	case chat.StageCentre:
		w.chooseCentre(ctx, state, input, r)
	}
}

// abort discards all wizard scratch and returns the user to the main menu.
// Submitted applications and their pollers are untouched.
func (w *Workflow) abort(state *chat.ConversationState, r *chat.Replies) {
	state.ResetWizard()
	r.Add(chat.TextWizardCancelled(state.Language))
	w.menu.PromptMenu(state, r)
}

// goBack reverts one stage, discarding the scratch belonging to the stage
// being left and everything beyond it. At the first stage there is nothing
// to return to, so "back" aborts.
func (w *Workflow) goBack(ctx context.Context, state *chat.ConversationState, r *chat.Replies) {
	switch state.WizardStage {
	case chat.StageSubdistrict:
		w.enterDistrict(state, r)

	case chat.StageDocument:
		subs, err := w.directory.ListSubdistricts(ctx, state.Scratch.District)
		if err != nil {
			w.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("listing subdistricts")
			r.Add(chat.TextDirectoryUnavailable(state.Language))
			return
		}
		if len(subs) == 0 {
			r.Add(chat.TextNoSubdistricts(state.Language, state.Scratch.District))
			w.enterDistrict(state, r)
			return
		}
		state.Scratch.Subdistrict = ""
		state.Scratch.DocumentType, state.Scratch.DocumentName = "", ""
		state.Scratch.Documents, state.Scratch.Centres = nil, nil
		state.Scratch.Subdistricts = subs
		state.WizardStage = chat.StageSubdistrict
		w.promptSubdistricts(state, r)

	case chat.StageCentre:
		docs, err := w.directory.ListDocumentTypes(ctx)
		if err != nil {
			w.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("listing document types")
			r.Add(chat.TextDirectoryUnavailable(state.Language))
			return
		}
		if len(docs) == 0 {
			w.log.Error("document catalog is empty")
			r.Add(chat.TextCatalogEmpty(state.Language))
			w.abort(state, r)
			return
		}
		state.Scratch.DocumentType, state.Scratch.DocumentName = "", ""
		state.Scratch.Centres = nil
		state.Scratch.Documents = docs
		state.WizardStage = chat.StageDocument
		w.promptDocuments(state, r)

	default:
		w.abort(state, r)
	}
}

// enterDistrict starts (or restarts) the wizard at the district stage.
func (w *Workflow) enterDistrict(state *chat.ConversationState, r *chat.Replies) {
	state.Scratch = chat.WizardScratch{Districts: w.directory.ListDistricts()}
	state.WizardStage = chat.StageDistrict
	r.Add(chat.FormatNumberedList(chat.TextDistrictHeader(state.Language), state.Scratch.Districts, ""))
}

func (w *Workflow) chooseDistrict(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	num, ok := chat.ParseChoice(input, len(state.Scratch.Districts))
	if !ok {
		r.Add(chat.TextInvalidRange(state.Language, len(state.Scratch.Districts)))
		return
	}
	district := state.Scratch.Districts[num-1]

	subs, err := w.directory.ListSubdistricts(ctx, district)
	if err != nil {
		w.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("listing subdistricts")
		r.Add(chat.TextDirectoryUnavailable(state.Language))
		return
	}
	if len(subs) == 0 {
		r.Add(chat.TextNoSubdistricts(state.Language, district))
		r.Add(chat.FormatNumberedList(chat.TextDistrictHeader(state.Language), state.Scratch.Districts, ""))
		return
	}

	state.Scratch.District = district
	state.Scratch.Subdistricts = subs
	state.WizardStage = chat.StageSubdistrict
	w.promptSubdistricts(state, r)
}

func (w *Workflow) promptSubdistricts(state *chat.ConversationState, r *chat.Replies) {
	r.Add(chat.FormatNumberedList(
		chat.TextSubdistrictHeader(state.Language, state.Scratch.District),
		state.Scratch.Subdistricts, ""))
}

func (w *Workflow) chooseSubdistrict(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	num, ok := chat.ParseChoice(input, len(state.Scratch.Subdistricts))
	if !ok {
		r.Add(chat.TextInvalidRange(state.Language, len(state.Scratch.Subdistricts)))
		return
	}
	subdistrict := state.Scratch.Subdistricts[num-1]

	docs, err := w.directory.ListDocumentTypes(ctx)
	if err != nil {
		w.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("listing document types")
		r.Add(chat.TextDirectoryUnavailable(state.Language))
		return
	}
	if len(docs) == 0 {
		// An empty catalog is a system misconfiguration, not a user error.
		w.log.Error("document catalog is empty")
		r.Add(chat.TextCatalogEmpty(state.Language))
		w.abort(state, r)
		return
	}

	state.Scratch.Subdistrict = subdistrict
	state.Scratch.Documents = docs
	state.WizardStage = chat.StageDocument
	w.promptDocuments(state, r)
}

func (w *Workflow) promptDocuments(state *chat.ConversationState, r *chat.Replies) {
	names := make([]string, len(state.Scratch.Documents))
	for i, doc := range state.Scratch.Documents {
		names[i] = doc.Name
	}
	r.Add(chat.FormatNumberedList(chat.TextDocumentHeader(state.Language), names, ""))
}

func (w *Workflow) chooseDocument(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	num, ok := chat.ParseChoice(input, len(state.Scratch.Documents))
	if !ok {
		r.Add(chat.TextInvalidRange(state.Language, len(state.Scratch.Documents)))
		return
	}
	doc := state.Scratch.Documents[num-1]

	centres, err := w.directory.ListCentres(ctx, state.Scratch.District, state.Scratch.Subdistrict, doc.Key, centreLimit)
	if err != nil {
		w.log.With(slog.String("user_id", state.UserID), sl.Err(err)).Error("listing centres")
		r.Add(chat.TextDirectoryUnavailable(state.Language))
		return
	}
	if len(centres) == 0 {
		r.Add(chat.TextNoCentres(state.Language))
		w.promptDocuments(state, r)
		return
	}

	state.Scratch.DocumentType = doc.Key
	state.Scratch.DocumentName = doc.Name
	state.Scratch.Centres = centres
	state.WizardStage = chat.StageCentre
	w.promptCentres(state, r)
}

func (w *Workflow) promptCentres(state *chat.ConversationState, r *chat.Replies) {
	var sb strings.Builder
	sb.WriteString(chat.TextCentreHeader(state.Language))
	for i, c := range state.Scratch.Centres {
		sb.WriteString(fmt.Sprintf("\n\n%d. *%s*\n📍 %s\n📞 %s\n🆔 %s",
			i+1, c.CentreName, c.Address, c.Contact, c.CentreID))
	}
	r.Add(sb.String())
}

func (w *Workflow) chooseCentre(ctx context.Context, state *chat.ConversationState, input string, r *chat.Replies) {
	num, ok := chat.ParseChoice(input, len(state.Scratch.Centres))
	if !ok {
		r.Add(chat.TextInvalidRange(state.Language, len(state.Scratch.Centres)))
		return
	}
	centre := state.Scratch.Centres[num-1]

	result, err := w.requests.Create(ctx, state.Scratch.DocumentType, centre.CentreID, state.UserID)
	if err != nil {
		w.log.With(
			slog.String("user_id", state.UserID),
			slog.String("centre_id", centre.CentreID),
			sl.Err(err),
		).Error("creating service request")
		r.Add(chat.TextCreateFailed(state.Language))
		return
	}

	state.Applications = append(state.Applications, entity.Application{
		RequestID:         result.RequestID,
		District:          state.Scratch.District,
		Subdistrict:       state.Scratch.Subdistrict,
		CentreID:          centre.CentreID,
		CentreName:        centre.CentreName,
		DocumentType:      state.Scratch.DocumentType,
		DocumentName:      state.Scratch.DocumentName,
		RequiredDocuments: result.RequiredDocuments,
		UploadLink:        result.UploadLink,
		Status:            entity.StatusDocumentsUploading,
		CreatedAt:         time.Now(),
	})

	lang := state.Language
	state.ResetWizard()
	r.Add(chat.TextConfirmation(lang, result.Message, result.RequestID, result.RequiredDocuments, result.UploadLink))

	w.poller.Start(result.RequestID, state.UserID, lang)
}

// CancelLatest cancels the most recently created application regardless of
// the current wizard stage. Whatever the outcome, the wizard state is reset
// and the main menu is shown.
func (w *Workflow) CancelLatest(ctx context.Context, state *chat.ConversationState, r *chat.Replies) {
	app := state.LatestApplication()
	if app == nil {
		r.Add(chat.TextCancelNothing(state.Language))
		state.ResetWizard()
		w.menu.PromptMenu(state, r)
		return
	}

	err := w.requests.Cancel(ctx, app.RequestID)
	switch {
	case err == nil:
		w.poller.Stop(app.RequestID)
		state.RemoveApplication(app.RequestID)
		r.Add(chat.TextCancelSuccess(state.Language, app.RequestID))

	case errors.Is(err, gateway.ErrNotFound) || errors.Is(err, gateway.ErrBadRequest):
		// The gateway considers the request already terminal.
		r.Add(chat.TextCancelAlreadyDone(state.Language, app.RequestID))

	default:
		w.log.With(
			slog.String("user_id", state.UserID),
			slog.String("request_id", app.RequestID),
			sl.Err(err),
		).Error("cancelling service request")
		r.Add(chat.TextCancelFailed(state.Language))
	}

	state.ResetWizard()
	w.menu.PromptMenu(state, r)
}
