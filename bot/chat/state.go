package chat

import (
	"time"

	"ServiceSaathi/entity"
)

// Language is the user's chosen dialogue language.
type Language string

const (
	LangNone      Language = ""
	LangEnglish   Language = "english"
	LangMalayalam Language = "malayalam"
)

// Malayalam reports whether replies should be in Malayalam.
func (l Language) Malayalam() bool { return l == LangMalayalam }

// MenuChoice is the main-menu mode that owns subsequent input once the
// language is set.
type MenuChoice string

const (
	MenuNone  MenuChoice = ""
	MenuChat  MenuChoice = "chat"
	MenuApply MenuChoice = "apply"
)

// WizardStage is the current step of the document-application wizard.
type WizardStage string

const (
	StageNone        WizardStage = ""
	StageDistrict    WizardStage = "district"
	StageSubdistrict WizardStage = "subdistrict"
	StageDocument    WizardStage = "document"
	StageCentre      WizardStage = "centre"
)

// WizardScratch holds the ephemeral working data of an in-progress wizard.
// Every offered list is snapshotted at prompt time so that a numeric answer
// always resolves against exactly what the user was shown.
type WizardScratch struct {
	District     string                `json:"district,omitempty" bson:"district,omitempty"`
	Subdistrict  string                `json:"subdistrict,omitempty" bson:"subdistrict,omitempty"`
	DocumentType string                `json:"document_type,omitempty" bson:"document_type,omitempty"`
	DocumentName string                `json:"document_name,omitempty" bson:"document_name,omitempty"`
	Districts    []string              `json:"districts,omitempty" bson:"districts,omitempty"`
	Subdistricts []string              `json:"subdistricts,omitempty" bson:"subdistricts,omitempty"`
	Documents    []entity.DocumentType `json:"documents,omitempty" bson:"documents,omitempty"`
	Centres      []entity.Centre       `json:"centres,omitempty" bson:"centres,omitempty"`
}

// ConversationState is the per-user dialogue record, keyed by phone number.
// It is created lazily on first contact and never deleted by the engine.
type ConversationState struct {
	UserID       string               `json:"user_id" bson:"user_id"`
	Language     Language             `json:"language" bson:"language"`
	MenuChoice   MenuChoice           `json:"menu_choice" bson:"menu_choice"`
	WizardStage  WizardStage          `json:"wizard_stage" bson:"wizard_stage"`
	Scratch      WizardScratch        `json:"scratch" bson:"scratch"`
	Applications []entity.Application `json:"applications" bson:"applications"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}

// NewConversationState creates a fresh record for a first-contact user.
func NewConversationState(userID string) *ConversationState {
	now := time.Now()
	return &ConversationState{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResetWizard aborts any in-progress wizard and returns the user to the
// main-menu decision point. Submitted applications are untouched.
func (s *ConversationState) ResetWizard() {
	s.MenuChoice = MenuNone
	s.WizardStage = StageNone
	s.Scratch = WizardScratch{}
}

// ResetLanguage clears everything the language gate controls, including the
// wizard.
func (s *ConversationState) ResetLanguage() {
	s.Language = LangNone
	s.ResetWizard()
}

// LatestApplication returns the most recently created application, or nil.
func (s *ConversationState) LatestApplication() *entity.Application {
	if len(s.Applications) == 0 {
		return nil
	}
	return &s.Applications[len(s.Applications)-1]
}

// Clone returns a deep copy that shares no backing arrays with the
// original, so concurrent holders can read and mutate independently.
func (s *ConversationState) Clone() *ConversationState {
	c := *s
	c.Scratch.Districts = append([]string(nil), s.Scratch.Districts...)
	c.Scratch.Subdistricts = append([]string(nil), s.Scratch.Subdistricts...)
	c.Scratch.Documents = append([]entity.DocumentType(nil), s.Scratch.Documents...)
	c.Scratch.Centres = append([]entity.Centre(nil), s.Scratch.Centres...)
	if s.Applications != nil {
		c.Applications = make([]entity.Application, len(s.Applications))
		for i, app := range s.Applications {
			app.RequiredDocuments = append([]entity.RequiredDocument(nil), app.RequiredDocuments...)
			c.Applications[i] = app
		}
	}
	return &c
}

// RemoveApplication deletes the application with the given request id.
func (s *ConversationState) RemoveApplication(requestID string) {
	for i, app := range s.Applications {
		if app.RequestID == requestID {
			s.Applications = append(s.Applications[:i], s.Applications[i+1:]...)
			return
		}
	}
}
