package mailer

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifelongwellness/wellnessbackend/models"
)

// Message is one renderable email: the admin notification or the
// auto-reply for a Submission.
type Message struct {
	FromName    string
	FromAddress string
	To          string
	Subject     string
	HTMLBody    string

	Attachment *models.Attachment

	// MessageID is assigned when the message is built and reported back
	// in the DispatchResult.
	MessageID string
}

func newMessageID(host string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), host)
}

func randomBoundary(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Build renders the full RFC 2822 message, base64-encoding the
// attachment into a multipart/mixed part when one is present.
func (m *Message) Build() (string, error) {
	var msg strings.Builder
	fromAddr := mail.Address{Name: m.FromName, Address: m.FromAddress}
	msg.WriteString(fmt.Sprintf("From: %s\r\n", fromAddr.String()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", m.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", m.Subject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	msg.WriteString(fmt.Sprintf("Message-ID: %s\r\n", m.MessageID))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if m.Attachment == nil {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.HTMLBody)
		msg.WriteString("\r\n")
		return msg.String(), nil
	}

	boundary := randomBoundary("mixed")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary))

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(m.HTMLBody)
	msg.WriteString("\r\n\r\n")

	if err := writeAttachmentPart(&msg, m.Attachment, boundary); err != nil {
		return "", err
	}
	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return msg.String(), nil
}

func writeAttachmentPart(msg *strings.Builder, att *models.Attachment, boundary string) error {
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}

	contentType := att.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString(fmt.Sprintf("Content-Type: %s; name=%q\r\n", contentType, att.FileName))
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", att.FileName))

	encoded := base64.StdEncoding.EncodeToString(data)
	// 76-char lines per RFC 2045
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76])
		msg.WriteString("\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded)
	msg.WriteString("\r\n")
	return nil
}
