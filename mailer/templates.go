package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/lifelongwellness/wellnessbackend/models"
)

// Receipt timestamps are rendered in the clinic's timezone.
var clinicTZ = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.UTC
	}
	return loc
}()

const (
	contactPhone = "+91 94210 69326"
	supportEmail = "meghahshaha@gmail.com"
)

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; }
    .header { background: linear-gradient(135deg, #10b981 0%, #059669 100%); color: white; padding: 25px; text-align: center; }
    .content { padding: 20px; }
    .field { margin-bottom: 15px; padding: 15px; background: #f8fafc; border-radius: 6px; border-left: 4px solid #10b981; }
    .field-label { font-weight: 600; color: #047857; margin-bottom: 5px; font-size: 14px; }
    .field-value { color: #1e293b; font-size: 15px; }
    .priority-tag { background: #ef4444; color: white; padding: 3px 8px; border-radius: 4px; font-size: 12px; }
    .footer { background: #f8fafc; padding: 15px; text-align: center; font-size: 13px; color: #64748b; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2>Lifelong Wellness</h2>
      <p>{{.Title}}{{if .IsConsultation}} <span class="priority-tag">PRIORITY</span>{{end}}</p>
    </div>
    <div class="content">
      <div class="field">
        <div class="field-label">Client Name</div>
        <div class="field-value">{{.FullName}}</div>
      </div>
      <div class="field">
        <div class="field-label">Contact Email</div>
        <div class="field-value">{{.Email}}</div>
      </div>
      <div class="field">
        <div class="field-label">Phone Number</div>
        <div class="field-value">{{.Phone}}</div>
      </div>
      {{if .ConsultationType}}
      <div class="field">
        <div class="field-label">Consultation Type</div>
        <div class="field-value">{{.ConsultationType}}</div>
      </div>
      {{end}}
      {{if .Message}}
      <div class="field">
        <div class="field-label">Message</div>
        <div class="field-value">{{.Message}}</div>
      </div>
      {{end}}
    </div>
    <div class="footer">
      Received at: {{.ReceivedAt}}
    </div>
  </div>
</body>
</html>
`))

var autoReplyTemplate = template.Must(template.New("autoreply").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; }
    .header { background: linear-gradient(135deg, #10b981 0%, #059669 100%); color: white; padding: 25px; text-align: center; }
    .content { padding: 20px; }
    .highlight-box { background: #ecfdf5; padding: 15px; border-radius: 6px; margin: 15px 0; border-left: 4px solid #10b981; }
    .footer { background: #f8fafc; padding: 15px; text-align: center; font-size: 13px; color: #64748b; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2>Lifelong Wellness</h2>
      <p>Thank You for Contacting Us</p>
    </div>
    <div class="content">
      <p>Dear {{.FirstName}},</p>

      <div class="highlight-box">
        <p>We've received your {{if .IsConsultation}}consultation request{{else}}message{{end}} and will respond within 24 hours.</p>
        {{if .IsConsultation}}<p><strong>Your 50% OFF consultation is confirmed!</strong></p>{{end}}
      </div>

      <p>For immediate assistance, please contact us at:</p>
      <p><strong>Phone/WhatsApp:</strong> {{.ContactPhone}}</p>
      <p><strong>Email:</strong> {{.SupportEmail}}</p>

      <p>We appreciate your interest in our holistic wellness services and look forward to helping you on your health journey.</p>

      <p>Warm regards,<br>
      <strong>Dr. Megha Shaha</strong><br>
      Holistic Wellness Practitioner</p>
    </div>
    <div class="footer">
      This is an automated message. Please do not reply directly to this email.
    </div>
  </div>
</body>
</html>
`))

// AdminSubject encodes the submission kind and the submitter's name.
func AdminSubject(sub *models.Submission) string {
	kind := "Contact"
	if sub.Kind == models.KindConsultation {
		kind = "Consultation"
	}
	return fmt.Sprintf("New %s Request: %s", kind, sub.FullName)
}

// AutoReplySubject varies by kind.
func AutoReplySubject(sub *models.Submission) string {
	if sub.Kind == models.KindConsultation {
		return "Your Consultation Request Received"
	}
	return "Thank You for Contacting Us"
}

// RenderAdminBody produces the admin notification HTML.
func RenderAdminBody(sub *models.Submission) (string, error) {
	isConsultation := sub.Kind == models.KindConsultation
	title := "New Contact Form Submission"
	if isConsultation {
		title = "New Consultation Request"
	}

	receivedAt := sub.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	var b strings.Builder
	err := adminTemplate.Execute(&b, map[string]any{
		"Title":            title,
		"IsConsultation":   isConsultation,
		"FullName":         sub.FullName,
		"Email":            sub.Email,
		"Phone":            sub.Phone,
		"ConsultationType": sub.ConsultationType,
		"Message":          sub.Message,
		"ReceivedAt":       receivedAt.In(clinicTZ).Format("02/01/2006, 3:04:05 pm"),
	})
	if err != nil {
		return "", fmt.Errorf("render admin template: %w", err)
	}
	return b.String(), nil
}

// RenderAutoReplyBody produces the acknowledgment HTML sent back to the
// submitter.
func RenderAutoReplyBody(sub *models.Submission) (string, error) {
	var b strings.Builder
	err := autoReplyTemplate.Execute(&b, map[string]any{
		"FirstName":      sub.FirstName(),
		"IsConsultation": sub.Kind == models.KindConsultation,
		"ContactPhone":   contactPhone,
		"SupportEmail":   supportEmail,
	})
	if err != nil {
		return "", fmt.Errorf("render auto-reply template: %w", err)
	}
	return b.String(), nil
}
