package model

import (
	"strings"

	"github.com/google/uuid"
)

type Language string

const (
	LanguageEN Language = "en"
	LanguageHI Language = "hi"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

var (
	LanguageChoices = []Choice{
		{Value: string(LanguageEN), Label: "English"},
		{Value: string(LanguageHI), Label: "Hindi"},
	}
	StatusChoices = []Choice{
		{Value: string(StatusPending), Label: "Pending"},
		{Value: string(StatusDone), Label: "Done"},
	}
)

// FollowUp is a patient reminder owned by one clinic. ClinicID, CreatedBy
// and PublicToken are fixed at creation.
type FollowUp struct {
	Base
	ClinicID    uuid.UUID `db:"clinic_id" json:"clinic_id"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	Phone       string    `db:"phone" json:"phone"`
	Language    Language  `db:"language" json:"language"`
	Notes       string    `db:"notes" json:"notes"`
	DueDate     Date      `db:"due_date" json:"due_date"`
	Status      Status    `db:"status" json:"status"`
	PublicToken string    `db:"public_token" json:"public_token"`
}

func (f *FollowUp) IsDone() bool {
	return f.Status == StatusDone
}

// FollowUpRow is a dashboard list entry.
type FollowUpRow struct {
	FollowUp
	ViewCount int `db:"view_count" json:"view_count"`
}

type CreateFollowUpInput struct {
	PatientName string   `json:"patient_name" validate:"required,max=255"`
	Phone       string   `json:"phone" validate:"required,max=20,phone"`
	Language    Language `json:"language" validate:"required,oneof=en hi"`
	Notes       string   `json:"notes"`
	DueDate     Date     `json:"due_date"`
}

// Normalize trims free text and applies the default language.
func (in *CreateFollowUpInput) Normalize() {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Language == "" {
		in.Language = LanguageEN
	}
}

// UpdateFollowUpInput is a partial change set; nil fields are left alone.
// A set field may not be blank where the column is required.
type UpdateFollowUpInput struct {
	PatientName *string   `json:"patient_name" validate:"omitnil,max=255"`
	Phone       *string   `json:"phone" validate:"omitnil,max=20,phone"`
	Language    *Language `json:"language" validate:"omitnil,oneof=en hi"`
	Notes       *string   `json:"notes"`
	DueDate     *Date     `json:"due_date"`
	Status      *Status   `json:"status" validate:"omitnil,oneof=pending done"`
}

func (in *UpdateFollowUpInput) Normalize() {
	for _, s := range []*string{in.PatientName, in.Phone, in.Notes} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// Apply copies every set field onto f.
func (in *UpdateFollowUpInput) Apply(f *FollowUp) {
	if in.PatientName != nil {
		f.PatientName = *in.PatientName
	}
	if in.Phone != nil {
		f.Phone = *in.Phone
	}
	if in.Language != nil {
		f.Language = *in.Language
	}
	if in.Notes != nil {
		f.Notes = *in.Notes
	}
	if in.DueDate != nil {
		f.DueDate = *in.DueDate
	}
	if in.Status != nil {
		f.Status = *in.Status
	}
}

// ListFilters narrows the dashboard list. Zero values mean "no filter";
// date bounds are inclusive.
type ListFilters struct {
	Status    Status `json:"status"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
}

// Summary counts every follow-up of a clinic regardless of list filters.
type Summary struct {
	Total   int `db:"total" json:"total"`
	Pending int `db:"pending" json:"pending"`
	Done    int `db:"done" json:"done"`
}

type Dashboard struct {
	FollowUps []*FollowUpRow `json:"followups"`
	Summary   Summary        `json:"summary"`
	Filters   ListFilters    `json:"filters"`
}

// FormChoices is what a client needs to render the create and edit forms.
type FormChoices struct {
	Languages       []Choice `json:"languages"`
	Statuses        []Choice `json:"statuses"`
	DefaultLanguage Language `json:"default_language"`
	MinDueDate      Date     `json:"min_due_date"`
}

// ImportRow is one untrusted record of a bulk import. Every field is raw text.
type ImportRow struct {
	PatientName string `json:"patient_name"`
	Phone       string `json:"phone"`
	Language    string `json:"language"`
	DueDate     string `json:"due_date"`
	Notes       string `json:"notes"`
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// PublicView is the patient-facing projection of a follow-up. It carries
// nothing that identifies the clinic or the staff member.
type PublicView struct {
	PatientName string   `json:"patient_name"`
	DueDate     Date     `json:"due_date"`
	Status      Status   `json:"status"`
	Language    Language `json:"language"`
	Message     string   `json:"message"`
}
