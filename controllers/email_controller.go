package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifelongwellness/wellnessbackend/dto"
	"github.com/lifelongwellness/wellnessbackend/mailer"
	"github.com/lifelongwellness/wellnessbackend/models"
	"github.com/lifelongwellness/wellnessbackend/utils"
)

// formBodySlack is headroom on top of the upload bound for the text
// fields and multipart framing when capping the request body.
const formBodySlack = 1 << 20

func devMode() bool {
	return os.Getenv("APP_ENV") == "development"
}

func errorDetail(err error) string {
	if devMode() && err != nil {
		return err.Error()
	}
	return ""
}

// ====== SendEmail (public) ======================================================================
// POST /api/send-email
// application/json, application/x-www-form-urlencoded or multipart/form-data:
//   - fullName (or name + surname), email, phone, message (or concern),
//     consultationType, type (consultation|contact|callback)
//   - paymentScreenshot: optional file (jpeg/png/gif/pdf), multipart only
func SendEmail(validator *utils.FileValidator, dispatcher *mailer.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, relayErr := normalizeSubmission(c, validator)
		if relayErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": validationMessage(relayErr),
				"error":   errorDetail(relayErr.Err),
			})
			return
		}

		result, err := dispatcher.Dispatch(c.Request.Context(), sub)
		if err != nil {
			status := http.StatusInternalServerError
			var re *models.RelayError
			if errors.As(err, &re) && re.Kind == models.ErrValidation {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{
				"success": false,
				"message": "Failed to send email",
				"error":   errorDetail(err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Email sent successfully",
			"data": gin.H{
				"adminMessageId":     result.AdminMessageID,
				"autoReplyMessageId": result.AutoReplyMessageID,
			},
		})
	}
}

func validationMessage(relayErr *models.RelayError) string {
	switch relayErr.Field {
	case "email", "phone":
		return "Email and phone number are required"
	case "paymentScreenshot":
		return "Payment screenshot rejected: " + relayErr.Err.Error()
	default:
		return "Invalid request"
	}
}

// normalizeSubmission turns the raw request into a validated Submission.
// A transient attachment file may have been written on success; on a
// validation failure after the file was saved, it is removed here.
func normalizeSubmission(c *gin.Context, validator *utils.FileValidator) (*models.Submission, *models.RelayError) {
	var (
		body       dto.SendEmailDTO
		attachment *models.Attachment
	)

	switch c.ContentType() {
	case "application/json":
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, models.NewValidationError("body", err)
		}

	case "multipart/form-data":
		// Cap the body so an oversized upload aborts the parse instead
		// of being buffered and checked afterwards.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, validator.MaxSize()+formBodySlack)

		form, err := c.MultipartForm()
		if err != nil {
			return nil, models.NewValidationError("paymentScreenshot", err)
		}
		body = dtoFromForm(form.Value)

		if files := form.File["paymentScreenshot"]; len(files) > 0 {
			att, relayErr := saveAttachment(files[0], validator)
			if relayErr != nil {
				return nil, relayErr
			}
			attachment = att
		}

	default:
		// URL-encoded form (and anything form-shaped enough to parse).
		if err := c.Request.ParseForm(); err != nil {
			return nil, models.NewValidationError("body", err)
		}
		body = dtoFromForm(c.Request.PostForm)
	}

	sub, relayErr := buildSubmission(&body, attachment)
	if relayErr != nil && attachment != nil {
		_ = utils.RemoveUpload(attachment.Path)
	}
	return sub, relayErr
}

// dtoFromForm extracts fields from url-encoded or multipart values,
// normalizing repeated fields by taking the first value.
func dtoFromForm(values map[string][]string) dto.SendEmailDTO {
	first := func(name string) dto.FlexString {
		if vs := values[name]; len(vs) > 0 {
			return dto.FlexString(vs[0])
		}
		return ""
	}
	return dto.SendEmailDTO{
		FullName:         first("fullName"),
		Name:             first("name"),
		Surname:          first("surname"),
		Email:            first("email"),
		Phone:            first("phone"),
		Message:          first("message"),
		Concern:          first("concern"),
		ConsultationType: first("consultationType"),
		Type:             first("type"),
	}
}

func saveAttachment(fh *multipart.FileHeader, validator *utils.FileValidator) (*models.Attachment, *models.RelayError) {
	mimeType, err := validator.ValidateFile(fh)
	if err != nil {
		return nil, models.NewValidationError("paymentScreenshot", err)
	}

	path, err := utils.SaveUpload(fh, os.Getenv("UPLOAD_DIR"))
	if err != nil {
		return nil, models.NewValidationError("paymentScreenshot", err)
	}

	return &models.Attachment{
		FileName:  fh.Filename,
		Path:      path,
		MimeType:  mimeType,
		SizeBytes: fh.Size,
	}, nil
}

func buildSubmission(body *dto.SendEmailDTO, attachment *models.Attachment) (*models.Submission, *models.RelayError) {
	email := strings.TrimSpace(body.Email.String())
	phone := strings.TrimSpace(body.Phone.String())

	if email == "" {
		return nil, models.NewValidationError("email", errors.New("email is required"))
	}
	if !utils.ValidEmail(email) {
		return nil, models.NewValidationError("email", errors.New("email is not a valid address"))
	}
	if phone == "" {
		return nil, models.NewValidationError("phone", errors.New("phone is required"))
	}

	fullName := strings.TrimSpace(body.FullName.String())
	if fullName == "" {
		fullName = strings.TrimSpace(strings.TrimSpace(body.Name.String()) + " " + strings.TrimSpace(body.Surname.String()))
	}
	if fullName == "" {
		fullName = "Unknown"
	}

	message := body.Message.String()
	if message == "" {
		message = body.Concern.String()
	}

	return &models.Submission{
		FullName:         fullName,
		Email:            email,
		Phone:            phone,
		Message:          message,
		ConsultationType: strings.TrimSpace(body.ConsultationType.String()),
		Kind:             models.ParseSubmissionKind(strings.TrimSpace(body.Type.String())),
		Attachment:       attachment,
		ReceivedAt:       time.Now(),
	}, nil
}
