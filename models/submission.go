package models

import "time"

type SubmissionKind string

const (
	KindConsultation SubmissionKind = "consultation"
	KindContact      SubmissionKind = "contact"
	KindCallback     SubmissionKind = "callback"
)

// ParseSubmissionKind maps the raw "type" form field to a known kind.
// Anything unrecognized (including empty) falls back to contact.
func ParseSubmissionKind(raw string) SubmissionKind {
	switch SubmissionKind(raw) {
	case KindConsultation, KindContact, KindCallback:
		return SubmissionKind(raw)
	default:
		return KindContact
	}
}

// Attachment describes an uploaded payment proof kept in transient
// storage for the lifetime of one dispatch.
type Attachment struct {
	FileName  string `json:"fileName"`
	Path      string `json:"-"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Submission is the canonical record built from one form post. It is
// constructed per request and never mutated afterwards.
type Submission struct {
	FullName         string         `json:"fullName"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	Message          string         `json:"message,omitempty"`
	ConsultationType string         `json:"consultationType,omitempty"`
	Kind             SubmissionKind `json:"type"`

	Attachment *Attachment `json:"attachment,omitempty"`

	ReceivedAt time.Time `json:"receivedAt"`
}

// FirstName returns the first whitespace-delimited token of FullName,
// used for the auto-reply salutation.
func (s *Submission) FirstName() string {
	for i, r := range s.FullName {
		if r == ' ' || r == '\t' {
			return s.FullName[:i]
		}
	}
	return s.FullName
}

// DispatchResult reports the outcome of the two sends for one Submission.
type DispatchResult struct {
	OK                 bool      `json:"ok"`
	AdminMessageID     string    `json:"adminMessageId,omitempty"`
	AutoReplyMessageID string    `json:"autoReplyMessageId,omitempty"`
	ErrorKind          ErrorKind `json:"errorKind,omitempty"`
}
