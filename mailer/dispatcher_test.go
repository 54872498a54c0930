package mailer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lifelongwellness/wellnessbackend/models"
)

// ---------------------------------------------------------------------------
// Mock Sender
// ---------------------------------------------------------------------------

type mockSender struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, msg *Message) error
	sent     []*Message
}

func (m *mockSender) Send(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

func (m *mockSender) Verify(ctx context.Context) error { return nil }

func (m *mockSender) attemptsTo(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.sent {
		if msg.To == addr {
			n++
		}
	}
	return n
}

func testConfig() Config {
	return Config{
		Host:            "smtp.test",
		Port:            587,
		FromName:        "Lifelong Wellness",
		FromAddress:     "noreply@example.com",
		AdminEmail:      "admin@example.com",
		MaxSendAttempts: 3,
		RetryDelay:      0,
	}
}

func testSubmission() *models.Submission {
	return &models.Submission{
		FullName:   "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "9999999999",
		Kind:       models.KindContact,
		ReceivedAt: time.Now(),
	}
}

// ---------------------------------------------------------------------------
// Dispatch tests
// ---------------------------------------------------------------------------

func TestDispatch_Success(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(testConfig(), sender, nil)

	result, err := d.Dispatch(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatal("expected OK result")
	}
	if result.AdminMessageID == "" || result.AutoReplyMessageID == "" {
		t.Fatalf("expected both message ids, got %+v", result)
	}
	if got := sender.attemptsTo("admin@example.com"); got != 1 {
		t.Errorf("admin attempts = %d, want 1", got)
	}
	if got := sender.attemptsTo("jane@example.com"); got != 1 {
		t.Errorf("auto-reply attempts = %d, want 1", got)
	}
}

func TestDispatch_RetriesThenSucceeds(t *testing.T) {
	// Transport fails exactly N-1 times for the admin message, then
	// succeeds. The dispatcher must attempt exactly N sends, not more.
	cfg := testConfig()
	adminFailures := 0
	sender := &mockSender{}
	sender.sendFunc = func(ctx context.Context, msg *Message) error {
		if msg.To == cfg.AdminEmail && adminFailures < cfg.MaxSendAttempts-1 {
			adminFailures++
			return errors.New("connection reset")
		}
		return nil
	}
	d := NewDispatcher(cfg, sender, nil)

	result, err := d.Dispatch(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatal("expected OK result")
	}
	if got := sender.attemptsTo(cfg.AdminEmail); got != cfg.MaxSendAttempts {
		t.Errorf("admin attempts = %d, want %d", got, cfg.MaxSendAttempts)
	}
}

func TestDispatch_AdminFailureIsFatal(t *testing.T) {
	// Scenario: admin send fails every attempt. The whole dispatch
	// fails and the auto-reply is never attempted.
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg *Message) error {
			return errors.New("smtp unavailable")
		},
	}
	d := NewDispatcher(testConfig(), sender, nil)

	result, err := d.Dispatch(context.Background(), testSubmission())
	if err == nil {
		t.Fatal("expected error")
	}
	if result.OK {
		t.Fatal("expected failed result")
	}
	if result.ErrorKind != models.ErrTransport {
		t.Errorf("error kind = %q, want %q", result.ErrorKind, models.ErrTransport)
	}
	if got := sender.attemptsTo("admin@example.com"); got != 3 {
		t.Errorf("admin attempts = %d, want 3", got)
	}
	if got := sender.attemptsTo("jane@example.com"); got != 0 {
		t.Errorf("auto-reply attempts = %d, want 0", got)
	}
}

func TestDispatch_AutoReplyFailureIsNonFatal(t *testing.T) {
	// Scenario: admin notified, courtesy reply lost. Overall success
	// with only the admin message id reported.
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg *Message) error {
			if msg.To == "jane@example.com" {
				return errors.New("mailbox refused")
			}
			return nil
		},
	}
	d := NewDispatcher(testConfig(), sender, nil)

	result, err := d.Dispatch(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatal("expected OK result")
	}
	if result.AdminMessageID == "" {
		t.Error("expected admin message id")
	}
	if result.AutoReplyMessageID != "" {
		t.Errorf("auto-reply message id = %q, want empty", result.AutoReplyMessageID)
	}
	if got := sender.attemptsTo("jane@example.com"); got != 3 {
		t.Errorf("auto-reply attempts = %d, want 3", got)
	}
}

func TestDispatch_InvalidAdminAddressNotRetried(t *testing.T) {
	cfg := testConfig()
	cfg.AdminEmail = "not an address"
	sender := &mockSender{}
	d := NewDispatcher(cfg, sender, nil)

	_, err := d.Dispatch(context.Background(), testSubmission())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sender.sent) != 0 {
		t.Errorf("send attempts = %d, want 0", len(sender.sent))
	}
}

func TestDispatch_CanceledContextReportsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &mockSender{}
	d := NewDispatcher(testConfig(), sender, nil)

	result, err := d.Dispatch(ctx, testSubmission())
	if err == nil {
		t.Fatal("expected error")
	}
	if result.ErrorKind != models.ErrTimeout {
		t.Errorf("error kind = %q, want %q", result.ErrorKind, models.ErrTimeout)
	}
}

func TestDispatch_RemovesAttachmentOnBothPaths(t *testing.T) {
	makeAttachment := func(t *testing.T) *models.Attachment {
		t.Helper()
		path := filepath.Join(t.TempDir(), "proof.png")
		if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o644); err != nil {
			t.Fatal(err)
		}
		return &models.Attachment{FileName: "proof.png", Path: path, MimeType: "image/png"}
	}

	// Success path.
	sub := testSubmission()
	sub.Attachment = makeAttachment(t)
	d := NewDispatcher(testConfig(), &mockSender{}, nil)
	if _, err := d.Dispatch(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(sub.Attachment.Path); !os.IsNotExist(err) {
		t.Error("attachment not removed after successful dispatch")
	}

	// Failure path.
	sub = testSubmission()
	sub.Attachment = makeAttachment(t)
	failing := &mockSender{
		sendFunc: func(ctx context.Context, msg *Message) error {
			return errors.New("smtp unavailable")
		},
	}
	d = NewDispatcher(testConfig(), failing, nil)
	if _, err := d.Dispatch(context.Background(), sub); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(sub.Attachment.Path); !os.IsNotExist(err) {
		t.Error("attachment not removed after failed dispatch")
	}
}
