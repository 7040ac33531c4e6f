package models

import "time"

// Status is the lifecycle state of a FIR
type Status string

// FIR statuses
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// FIR sources
const (
	SourceCitizenPortal = "citizen_portal"
	SourcePoliceManual  = "police_manual"
)

// Placeholders stored when a complainant field is unknown at submission time
const (
	UnknownName  = "Unknown"
	NotAvailable = "N/A"
)

// FIR holds the structure for the firs and archives collections in mongo
type FIR struct {
	ID                 string       `json:"_id" bson:"_id"`
	UserID             string       `json:"user_id" bson:"user_id"`
	OriginalText       string       `json:"original_text" bson:"original_text"`
	TranslatedText     string       `json:"translated_text" bson:"translated_text"`
	Language           string       `json:"language" bson:"language"`
	IncidentDate       string       `json:"incident_date,omitempty" bson:"incident_date,omitempty"`
	IncidentTime       string       `json:"incident_time,omitempty" bson:"incident_time,omitempty"`
	Location           string       `json:"location,omitempty" bson:"location,omitempty"`
	StationID          string       `json:"station_id,omitempty" bson:"station_id,omitempty"`
	Status             Status       `json:"status" bson:"status"`
	ApplicableSections []string     `json:"applicable_sections" bson:"applicable_sections"`
	AISuggestions      []Suggestion `json:"ai_suggestions" bson:"ai_suggestions"`
	PoliceNotes        string       `json:"police_notes" bson:"police_notes"`
	ComplainantName    string       `json:"complainant_name" bson:"complainant_name"`
	ComplainantPhone   string       `json:"complainant_phone" bson:"complainant_phone"`
	ComplainantAadhar  string       `json:"complainant_aadhar" bson:"complainant_aadhar"`
	ComplainantEmail   string       `json:"complainant_email" bson:"complainant_email"`
	Source             string       `json:"source" bson:"source"`
	SubmissionDate     time.Time    `json:"submission_date" bson:"submission_date"`
	LastUpdated        time.Time    `json:"last_updated" bson:"last_updated"`
}

// Suggestion is a single penal-code section suggested by the classifier
type Suggestion struct {
	Code       string  `json:"code" bson:"code"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// FIRRequest is the body accepted when submitting a FIR
type FIRRequest struct {
	Text              string `json:"text" validate:"required"`
	Language          string `json:"language"`
	IncidentDate      string `json:"incident_date"`
	IncidentTime      string `json:"incident_time"`
	Location          string `json:"location"`
	StationID         string `json:"station_id"`
	ComplainantName   string `json:"complainant_name"`
	ComplainantPhone  string `json:"complainant_phone"`
	ComplainantAadhar string `json:"complainant_aadhar"`
	ComplainantEmail  string `json:"complainant_email"`
}

// FIRUpdateRequest is the body accepted when a police officer updates a FIR
type FIRUpdateRequest struct {
	Status             Status   `json:"status" validate:"required"`
	ApplicableSections []string `json:"applicable_sections"`
	PoliceNotes        string   `json:"police_notes"`
}

// FIRSubmitResponse is returned after a FIR is stored
type FIRSubmitResponse struct {
	Message  string   `json:"message"`
	FIRID    string   `json:"fir_id"`
	Degraded []string `json:"degraded,omitempty"`
}
