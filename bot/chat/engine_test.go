package chat_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/bot/chat/apply"
	"ServiceSaathi/bot/chat/langmenu"
	"ServiceSaathi/bot/chat/status"
	"ServiceSaathi/entity"
	"ServiceSaathi/internal/service/gateway"
	"ServiceSaathi/internal/service/request"
)

type fakeDirectory struct {
	subdistricts map[string][]string
	subsErr      error
	docs         []entity.DocumentType
	docsErr      error
	centres      []entity.Centre
	centresErr   error
}

func (f *fakeDirectory) ListDistricts() []string {
	return []string{"Ernakulam", "Kollam", "Thrissur"}
}

func (f *fakeDirectory) ListSubdistricts(_ context.Context, district string) ([]string, error) {
	if f.subsErr != nil {
		return nil, f.subsErr
	}
	return f.subdistricts[district], nil
}

func (f *fakeDirectory) ListDocumentTypes(_ context.Context) ([]entity.DocumentType, error) {
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return f.docs, nil
}

func (f *fakeDirectory) ListCentres(_ context.Context, _, _, _ string, limit int) ([]entity.Centre, error) {
	if f.centresErr != nil {
		return nil, f.centresErr
	}
	if len(f.centres) > limit {
		return f.centres[:limit], nil
	}
	return f.centres, nil
}

type fakeRequests struct {
	createResult *request.CreateResult
	createErr    error
	cancelErr    error
	cancelled    []string
	summaries    []request.Summary
	listErr      error
}

func (f *fakeRequests) Create(_ context.Context, _, _, _ string) (*request.CreateResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeRequests) Cancel(_ context.Context, requestID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, requestID)
	return nil
}

func (f *fakeRequests) ListByUser(_ context.Context, _ string) ([]request.Summary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.summaries, nil
}

type fakePoller struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (f *fakePoller) Start(requestID, _ string, _ chat.Language) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, requestID)
}

func (f *fakePoller) Stop(requestID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, requestID)
}

type fakeProber struct{ err error }

func (f *fakeProber) Ping(_ context.Context) error { return f.err }

type fakeResponder struct {
	answer string
	err    error
}

func (f *fakeResponder) Respond(_ context.Context, _ string, _ bool) (string, error) {
	return f.answer, f.err
}

type harness struct {
	engine    *chat.Engine
	storage   *chat.MemoryStateStorage
	directory *fakeDirectory
	requests  *fakeRequests
	poller    *fakePoller
}

func newHarness() *harness {
	lg := slog.New(slog.DiscardHandler)

	directory := &fakeDirectory{
		subdistricts: map[string][]string{
			"Ernakulam": {"Aluva", "Kochi"},
			"Kollam":    {"Karunagappally"},
		},
		docs: []entity.DocumentType{
			{Key: "income-cert", Name: "Income Certificate"},
			{Key: "ration-card", Name: "Ration Card"},
		},
		centres: []entity.Centre{
			{CentreID: "AKC-1", CentreName: "Akshaya Aluva", Contact: "04842621111", Address: "Aluva Market Rd"},
			{CentreID: "AKC-2", CentreName: "Akshaya Kochi", Contact: "04842622222", Address: "MG Road"},
		},
	}
	requests := &fakeRequests{
		createResult: &request.CreateResult{
			RequestID: "SR-1001",
			Message:   "Request created",
			RequiredDocuments: []entity.RequiredDocument{
				{Name: "Aadhaar Card"},
				{Name: "Salary Slip"},
			},
			UploadLink: "https://upload.example/SR-1001",
		},
	}
	poller := &fakePoller{}

	storage := chat.NewMemoryStateStorage()
	engine := chat.NewEngine(storage, lg)

	langMenu := langmenu.NewController(&fakeProber{}, lg)
	wizard := apply.NewWorkflow(directory, requests, poller, langMenu, lg)
	langMenu.SetWizard(wizard)
	reporter := status.NewReporter(requests, lg)
	engine.SetControllers(langMenu, wizard, reporter)

	return &harness{
		engine:    engine,
		storage:   storage,
		directory: directory,
		requests:  requests,
		poller:    poller,
	}
}

func (h *harness) send(t *testing.T, userID, text string) []string {
	t.Helper()
	return h.engine.Handle(context.Background(), userID, text)
}

func (h *harness) state(t *testing.T, userID string) *chat.ConversationState {
	t.Helper()
	state, err := h.storage.Load(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, state)
	return state
}

const user = "+919876543210"

func TestGreetingPromptsLanguageForNewUser(t *testing.T) {
	h := newHarness()

	replies := h.send(t, user, "hi")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextLanguagePrompt(), replies[0])

	state := h.state(t, user)
	assert.Equal(t, chat.LangNone, state.Language)
}

func TestLanguageSelection(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")

	replies := h.send(t, user, "1")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextLanguageSet(chat.LangEnglish), replies[0])
	assert.Equal(t, chat.TextMainMenu(chat.LangEnglish), replies[1])

	assert.Equal(t, chat.LangEnglish, h.state(t, user).Language)
}

func TestLanguageInvalidInputDoesNotAdvance(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")

	replies := h.send(t, user, "7")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextLanguageInvalid(), replies[0])
	assert.Equal(t, chat.LangNone, h.state(t, user).Language)
}

func TestGreetingAfterLanguageShowsMenu(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "2")

	replies := h.send(t, user, "നമസ്കാരം")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextMainMenu(chat.LangMalayalam), replies[0])
}

func applyUpToCentres(t *testing.T, h *harness) {
	t.Helper()
	h.send(t, user, "hi")
	h.send(t, user, "1") // english
	h.send(t, user, "2") // apply -> district list
	h.send(t, user, "1") // Ernakulam -> subdistricts
	h.send(t, user, "1") // Aluva -> documents
	h.send(t, user, "1") // Income Certificate -> centres
}

func TestApplicationRoundTrip(t *testing.T) {
	h := newHarness()
	applyUpToCentres(t, h)

	replies := h.send(t, user, "2") // Akshaya Kochi
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "SR-1001")
	assert.Contains(t, replies[0], "Aadhaar Card")
	assert.Contains(t, replies[0], "https://upload.example/SR-1001")

	state := h.state(t, user)
	require.Len(t, state.Applications, 1)
	app := state.Applications[0]
	assert.Equal(t, "SR-1001", app.RequestID)
	assert.Equal(t, "Ernakulam", app.District)
	assert.Equal(t, "AKC-2", app.CentreID)
	assert.Equal(t, entity.StatusDocumentsUploading, app.Status)

	// wizard is fully reset after submission
	assert.Equal(t, chat.StageNone, state.WizardStage)
	assert.Equal(t, chat.MenuNone, state.MenuChoice)
	assert.Empty(t, state.Scratch.Districts)

	assert.Equal(t, []string{"SR-1001"}, h.poller.started)
}

func TestWizardInvalidChoiceStaysOnStage(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2") // district list shown

	replies := h.send(t, user, "99")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextInvalidRange(chat.LangEnglish, 3), replies[0])
	assert.Equal(t, chat.StageDistrict, h.state(t, user).WizardStage)
}

func TestWizardCentreChoiceOutOfRange(t *testing.T) {
	h := newHarness()
	applyUpToCentres(t, h)

	// two centres were offered, so the error cites that bound
	replies := h.send(t, user, "3")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextInvalidRange(chat.LangEnglish, 2), replies[0])
	assert.Equal(t, chat.StageCentre, h.state(t, user).WizardStage)
	assert.Empty(t, h.state(t, user).Applications)
}

func TestWizardZeroAbortsToMenu(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2")
	h.send(t, user, "1") // at subdistrict stage

	replies := h.send(t, user, "0")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextWizardCancelled(chat.LangEnglish), replies[0])
	assert.Equal(t, chat.TextMainMenu(chat.LangEnglish), replies[1])

	state := h.state(t, user)
	assert.Equal(t, chat.StageNone, state.WizardStage)
	assert.Equal(t, chat.MenuNone, state.MenuChoice)
}

func TestWizardBackRevertsOneStage(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2")
	h.send(t, user, "1")
	h.send(t, user, "1") // at document stage

	replies := h.send(t, user, "back")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Aluva")

	state := h.state(t, user)
	assert.Equal(t, chat.StageSubdistrict, state.WizardStage)
	assert.Empty(t, state.Scratch.Subdistrict)
	assert.Empty(t, state.Scratch.Documents)
	// district selection survives
	assert.Equal(t, "Ernakulam", state.Scratch.District)
}

func TestWizardBackAtDistrictAborts(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2") // district stage

	replies := h.send(t, user, "back")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextWizardCancelled(chat.LangEnglish), replies[0])
}

func TestWizardDirectoryFailureRollsBack(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2")

	h.directory.subsErr = gateway.ErrUnavailable
	replies := h.send(t, user, "1")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextDirectoryUnavailable(chat.LangEnglish), replies[0])

	// still at district stage, selection not committed
	state := h.state(t, user)
	assert.Equal(t, chat.StageDistrict, state.WizardStage)
	assert.Empty(t, state.Scratch.District)

	// retry works once the directory recovers
	h.directory.subsErr = nil
	replies = h.send(t, user, "1")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Aluva")
	assert.Equal(t, chat.StageSubdistrict, h.state(t, user).WizardStage)
}

func TestWizardCreateFailureStaysAtCentre(t *testing.T) {
	h := newHarness()
	applyUpToCentres(t, h)

	h.requests.createErr = gateway.ErrUnavailable
	replies := h.send(t, user, "1")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextCreateFailed(chat.LangEnglish), replies[0])

	state := h.state(t, user)
	assert.Equal(t, chat.StageCentre, state.WizardStage)
	assert.Empty(t, state.Applications)
	assert.Empty(t, h.poller.started)
}

func TestCancelLatestApplication(t *testing.T) {
	h := newHarness()
	applyUpToCentres(t, h)
	h.send(t, user, "1") // submit SR-1001

	replies := h.send(t, user, "/cancel")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextCancelSuccess(chat.LangEnglish, "SR-1001"), replies[0])
	assert.Equal(t, chat.TextMainMenu(chat.LangEnglish), replies[1])

	state := h.state(t, user)
	assert.Empty(t, state.Applications)
	assert.Equal(t, []string{"SR-1001"}, h.poller.stopped)

	// a second cancel finds nothing
	replies = h.send(t, user, "/cancel")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextCancelNothing(chat.LangEnglish), replies[0])
}

func TestCancelAlreadyFinished(t *testing.T) {
	h := newHarness()
	applyUpToCentres(t, h)
	h.send(t, user, "1")

	h.requests.cancelErr = gateway.ErrNotFound
	replies := h.send(t, user, "/cancel")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextCancelAlreadyDone(chat.LangEnglish, "SR-1001"), replies[0])

	// the application record stays; the gateway already closed it
	assert.Len(t, h.state(t, user).Applications, 1)
	assert.Empty(t, h.poller.stopped)
}

func TestCancelMidWizardAbandonsWizard(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2")
	h.send(t, user, "1") // subdistrict stage, nothing submitted yet

	replies := h.send(t, user, "/cancel")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextCancelNothing(chat.LangEnglish), replies[0])
	assert.Equal(t, chat.StageNone, h.state(t, user).WizardStage)
}

func TestLangCommandKeepsApplications(t *testing.T) {
	h := newHarness()
	applyUpToCentres(t, h)
	h.send(t, user, "1") // submit

	replies := h.send(t, user, "/lang")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextLanguagePrompt(), replies[0])

	state := h.state(t, user)
	assert.Equal(t, chat.LangNone, state.Language)
	assert.Len(t, state.Applications, 1)

	// switching to Malayalam keeps the record too
	h.send(t, user, "2")
	state = h.state(t, user)
	assert.Equal(t, chat.LangMalayalam, state.Language)
	assert.Len(t, state.Applications, 1)
}

func TestServiceCommandBeforeLanguage(t *testing.T) {
	h := newHarness()

	replies := h.send(t, user, "/service")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextLanguagePrompt(), replies[0])
}

func TestServiceCommandReportsStatuses(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")

	h.requests.summaries = []request.Summary{
		{RequestID: "SR-1", DocumentType: "Income Certificate", CentreID: "AKC-1", Status: entity.StatusProcessing, CreatedAt: time.Now().Add(-time.Hour)},
		{RequestID: "SR-2", DocumentType: "Ration Card", CentreID: "AKC-2", Status: entity.StatusSubmitted, CreatedAt: time.Now()},
	}

	replies := h.send(t, user, "/service")
	require.Len(t, replies, 3)
	assert.Equal(t, chat.TextStatusHeader(chat.LangEnglish, 2), replies[0])
	assert.Contains(t, replies[1], "SR-2") // newest first
	assert.Contains(t, replies[1], "SR-1")
	assert.Contains(t, replies[1], "*Centre:* AKC-2")
	assert.Contains(t, replies[1], "*Centre:* AKC-1")
	assert.Equal(t, chat.TextMainMenu(chat.LangEnglish), replies[2])
}

func TestServiceCommandNoRequests(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")

	replies := h.send(t, user, "/service")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextNoRequests(chat.LangEnglish), replies[0])
	assert.Equal(t, chat.TextMainMenu(chat.LangEnglish), replies[1])
}

func TestServiceCommandFetchFailure(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")

	h.requests.listErr = gateway.ErrUnavailable
	replies := h.send(t, user, "/service")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextStatusFetchFailed(chat.LangEnglish), replies[0])
}

func TestCommandsWorkMidWizard(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "2")
	h.send(t, user, "1") // subdistrict stage

	// "/service" wins over the stage handler even though "1" would be a
	// valid choice here
	replies := h.send(t, user, "/service")
	assert.Equal(t, chat.TextNoRequests(chat.LangEnglish), replies[0])
}

func TestChatModeRoundTrip(t *testing.T) {
	h := newHarness()
	h.engine.SetResponder(&fakeResponder{answer: "An Akshaya centre is a citizen service point."})
	h.send(t, user, "hi")
	h.send(t, user, "1")

	replies := h.send(t, user, "1") // chat mode
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextChatActivated(chat.LangEnglish), replies[0])

	replies = h.send(t, user, "what is an akshaya centre?")
	require.Len(t, replies, 1)
	assert.Equal(t, "An Akshaya centre is a citizen service point.", replies[0])

	replies = h.send(t, user, "back")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextMainMenu(chat.LangEnglish), replies[0])
	assert.Equal(t, chat.MenuNone, h.state(t, user).MenuChoice)
}

func TestChatModeResponderError(t *testing.T) {
	h := newHarness()
	h.engine.SetResponder(&fakeResponder{err: gateway.ErrUnavailable})
	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, user, "1")

	replies := h.send(t, user, "hello there assistant")
	require.Len(t, replies, 1)
	assert.Equal(t, chat.TextChatError(chat.LangEnglish), replies[0])
}

func TestMalayalamFlow(t *testing.T) {
	h := newHarness()
	h.send(t, user, "hi")

	replies := h.send(t, user, "2")
	require.Len(t, replies, 2)
	assert.Equal(t, chat.TextLanguageSet(chat.LangMalayalam), replies[0])
	assert.Equal(t, chat.TextMainMenu(chat.LangMalayalam), replies[1])

	replies = h.send(t, user, "2")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], chat.TextDistrictHeader(chat.LangMalayalam))
}

func TestUsersAreIsolated(t *testing.T) {
	h := newHarness()
	other := "+914712345678"

	h.send(t, user, "hi")
	h.send(t, user, "1")
	h.send(t, other, "hi")

	assert.Equal(t, chat.LangEnglish, h.state(t, user).Language)
	assert.Equal(t, chat.LangNone, h.state(t, other).Language)
}
