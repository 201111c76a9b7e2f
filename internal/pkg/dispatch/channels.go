package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/mail"
	"github.com/bantay-ph/bantay-api/internal/pkg/push"
	"github.com/bantay-ph/bantay-api/internal/pkg/social"
)

// inAppChannel writes one Notification row per recipient.
type inAppChannel struct {
	notifications repository.NotificationRepository
	recipients    []models.User
}

func newInAppChannel(notifications repository.NotificationRepository, recipients []models.User) *inAppChannel {
	return &inAppChannel{notifications: notifications, recipients: recipients}
}

func (c *inAppChannel) Name() string { return ChannelInApp }

func (c *inAppChannel) Send(ctx context.Context, msg Message) error {
	batch := make([]models.Notification, 0, len(c.recipients))
	for _, user := range c.recipients {
		reportID := msg.ReportID
		batch = append(batch, models.Notification{
			UserID:         user.ID,
			Type:           msg.Type,
			Title:          msg.Title,
			Message:        msg.Body,
			ReportID:       &reportID,
			FinderReportID: msg.FinderID,
		})
	}
	return c.notifications.CreateBatch(batch)
}

// pushChannel sends one provider call covering all recipient device tokens.
type pushChannel struct {
	client     push.Client
	recipients []models.User
}

func newPushChannel(client push.Client, recipients []models.User) *pushChannel {
	return &pushChannel{client: client, recipients: recipients}
}

func (c *pushChannel) Name() string { return ChannelPush }

func (c *pushChannel) Send(ctx context.Context, msg Message) error {
	tokens := make([]string, 0, len(c.recipients))
	for _, user := range c.recipients {
		if user.DeviceToken != "" {
			tokens = append(tokens, user.DeviceToken)
		}
	}
	return c.client.Send(ctx, push.Message{
		Title: msg.Title,
		Body:  msg.Body,
		Data: map[string]string{
			"report_id": fmt.Sprintf("%d", msg.ReportID),
		},
	}, tokens)
}

// emailChannel mails every recipient with an address. Every send is
// attempted; any failure marks the channel failed.
type emailChannel struct {
	recipients []models.User
}

func newEmailChannel(recipients []models.User) *emailChannel {
	return &emailChannel{recipients: recipients}
}

func (c *emailChannel) Name() string { return ChannelEmail }

func (c *emailChannel) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, user := range c.recipients {
		if user.Email == "" {
			continue
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := mail.SendMail(ctx, user.Email, msg.Title, msg.Body); err != nil {
			errs = append(errs, fmt.Errorf("recipient %d: %w", user.ID, err))
		}
	}
	return errors.Join(errs...)
}

// socialChannel posts once to the configured public page.
type socialChannel struct {
	client social.Client
}

func newSocialChannel(client social.Client) *socialChannel {
	return &socialChannel{client: client}
}

func (c *socialChannel) Name() string { return ChannelFacebook }

func (c *socialChannel) Send(ctx context.Context, msg Message) error {
	_, err := c.client.Post(ctx, msg.Title+"\n\n"+msg.Body, msg.ImageURL)
	return err
}
