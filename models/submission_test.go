package models

import "testing"

func TestParseSubmissionKind(t *testing.T) {
	tests := []struct {
		in   string
		want SubmissionKind
	}{
		{"consultation", KindConsultation},
		{"contact", KindContact},
		{"callback", KindCallback},
		{"", KindContact},
		{"something-else", KindContact},
	}
	for _, tt := range tests {
		if got := ParseSubmissionKind(tt.in); got != tt.want {
			t.Errorf("ParseSubmissionKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubmissionFirstName(t *testing.T) {
	tests := []struct {
		full, want string
	}{
		{"Jane Doe", "Jane"},
		{"Jane", "Jane"},
		{"Jane Mary Doe", "Jane"},
		{"Unknown", "Unknown"},
	}
	for _, tt := range tests {
		s := &Submission{FullName: tt.full}
		if got := s.FirstName(); got != tt.want {
			t.Errorf("FirstName(%q) = %q, want %q", tt.full, got, tt.want)
		}
	}
}

func TestRelayErrorMessage(t *testing.T) {
	err := NewValidationError("email", errTest)
	if err.Kind != ErrValidation {
		t.Errorf("kind = %q, want validation", err.Kind)
	}
	if err.Error() != "validation: email: boom" {
		t.Errorf("message = %q", err.Error())
	}
}

var errTest = errBoom{}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
