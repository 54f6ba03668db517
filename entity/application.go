package entity

import "time"

// RequestStatus is the processing state of a service request as reported by
// the request gateway.
type RequestStatus string

const (
	StatusInitiated          RequestStatus = "initiated"
	StatusDocumentsUploading RequestStatus = "documents-uploading"
	StatusProcessing         RequestStatus = "processing"
	StatusSubmitted          RequestStatus = "submitted"
	StatusRejected           RequestStatus = "rejected"
	StatusFailed             RequestStatus = "failed"
	StatusCancelled          RequestStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is expected.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusSubmitted, StatusRejected, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RequiredDocument is one item of the document checklist attached to a
// service request.
type RequiredDocument struct {
	Name         string `json:"name" bson:"name"`
	UploadedFile string `json:"uploadedFile,omitempty" bson:"uploaded_file,omitempty"`
}

// Application is a submitted service request as recorded against a user.
// Entries are append-only from the engine's perspective; request-level
// cancellation removes the most recent one.
type Application struct {
	RequestID         string             `json:"requestId" bson:"request_id"`
	District          string             `json:"district" bson:"district"`
	Subdistrict       string             `json:"subdistrict" bson:"subdistrict"`
	CentreID          string             `json:"centreId" bson:"centre_id"`
	CentreName        string             `json:"centreName" bson:"centre_name"`
	DocumentType      string             `json:"documentType" bson:"document_type"`
	DocumentName      string             `json:"documentName" bson:"document_name"`
	RequiredDocuments []RequiredDocument `json:"requiredDocuments" bson:"required_documents"`
	UploadLink        string             `json:"uploadLink" bson:"upload_link"`
	Status            RequestStatus      `json:"status" bson:"status"`
	CreatedAt         time.Time          `json:"createdAt" bson:"created_at"`
}
