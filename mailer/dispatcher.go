package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lifelongwellness/wellnessbackend/models"
	"github.com/lifelongwellness/wellnessbackend/utils"
)

// errPermanent marks failures that retrying cannot fix, such as a
// malformed recipient address.
var errPermanent = errors.New("permanent send failure")

// Dispatcher renders and delivers the two emails for one Submission:
// the admin notification (mandatory) and the auto-reply (best effort).
type Dispatcher struct {
	cfg    Config
	sender Sender
	logger *log.Logger
}

func NewDispatcher(cfg Config, sender Sender, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{cfg: cfg, sender: sender, logger: logger.With("component", "dispatcher")}
}

// Dispatch sends the admin notification and then the auto-reply. Admin
// failure after all attempts fails the whole dispatch; auto-reply
// failure is logged and the dispatch still succeeds. Any transient
// attachment file is removed before returning, on every path.
func (d *Dispatcher) Dispatch(ctx context.Context, sub *models.Submission) (models.DispatchResult, error) {
	defer func() {
		if sub.Attachment != nil {
			if err := utils.RemoveUpload(sub.Attachment.Path); err != nil {
				d.logger.Error("failed to delete attachment", "err", err)
			}
		}
	}()

	adminMsg, err := d.buildAdminNotification(sub)
	if err != nil {
		return models.DispatchResult{ErrorKind: models.ErrConfiguration}, models.NewConfigurationError(err)
	}
	replyMsg, err := d.buildAutoReply(sub)
	if err != nil {
		return models.DispatchResult{ErrorKind: models.ErrConfiguration}, models.NewConfigurationError(err)
	}

	if err := d.sendWithRetry(ctx, adminMsg); err != nil {
		kind := models.ErrTransport
		if ctx.Err() != nil {
			kind = models.ErrTimeout
		}
		d.logger.Error("admin notification failed", "to", adminMsg.To, "err", err)
		return models.DispatchResult{ErrorKind: kind}, &models.RelayError{Kind: kind, Err: err}
	}
	d.logger.Info("admin notification sent", "kind", sub.Kind, "messageId", adminMsg.MessageID)

	result := models.DispatchResult{OK: true, AdminMessageID: adminMsg.MessageID}

	if err := d.sendWithRetry(ctx, replyMsg); err != nil {
		// The admin already has the submission; a lost courtesy reply
		// must not fail the request.
		d.logger.Warn("auto-reply failed", "to", replyMsg.To, "err", err)
		return result, nil
	}
	d.logger.Info("auto-reply sent", "messageId", replyMsg.MessageID)

	result.AutoReplyMessageID = replyMsg.MessageID
	return result, nil
}

func (d *Dispatcher) buildAdminNotification(sub *models.Submission) (*Message, error) {
	body, err := RenderAdminBody(sub)
	if err != nil {
		return nil, err
	}
	return &Message{
		FromName:    d.cfg.FromName,
		FromAddress: d.cfg.FromAddress,
		To:          d.cfg.AdminEmail,
		Subject:     AdminSubject(sub),
		HTMLBody:    body,
		Attachment:  sub.Attachment,
		MessageID:   newMessageID(d.cfg.Host),
	}, nil
}

func (d *Dispatcher) buildAutoReply(sub *models.Submission) (*Message, error) {
	body, err := RenderAutoReplyBody(sub)
	if err != nil {
		return nil, err
	}
	return &Message{
		FromName:    d.cfg.FromName,
		FromAddress: d.cfg.FromAddress,
		To:          sub.Email,
		Subject:     AutoReplySubject(sub),
		HTMLBody:    body,
		MessageID:   newMessageID(d.cfg.Host),
	}, nil
}

// sendWithRetry attempts a send up to MaxSendAttempts with a fixed
// delay between attempts. The delay honors context cancellation.
// Malformed recipients fail immediately.
func (d *Dispatcher) sendWithRetry(ctx context.Context, msg *Message) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("%w: invalid recipient %q: %v", errPermanent, msg.To, err)
	}

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxSendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = d.sender.Send(ctx, msg)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, errPermanent) {
			return lastErr
		}

		if attempt < d.cfg.MaxSendAttempts {
			d.logger.Warn("send failed, retrying",
				"to", msg.To, "attempt", attempt, "of", d.cfg.MaxSendAttempts, "err", lastErr)
			if err := sleepCtx(ctx, d.cfg.RetryDelay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
