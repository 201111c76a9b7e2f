// Package dispatch fans a report event out across independent notification
// channels. Channels fail independently: one failing channel never prevents,
// rolls back, or fails another, and never fails the enclosing operation;
// the primary write has already committed when dispatch begins.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/metrics"
	"github.com/bantay-ph/bantay-api/internal/pkg/push"
	"github.com/bantay-ph/bantay-api/internal/pkg/social"
)

// Channel names used in broadcast selections and per-channel results.
const (
	ChannelPush     = "push"
	ChannelEmail    = "email"
	ChannelFacebook = "facebook"
	ChannelInApp    = "inapp"
)

// BroadcastChannels is the closed set a publish request may select from.
var BroadcastChannels = []string{ChannelPush, ChannelEmail, ChannelFacebook}

// IsBroadcastChannel reports whether name is a publishable channel.
func IsBroadcastChannel(name string) bool {
	for _, c := range BroadcastChannels {
		if c == name {
			return true
		}
	}
	return false
}

// Message is the channel-independent content of one dispatch.
type Message struct {
	Title    string
	Body     string
	ImageURL string
	Type     string // notification type tag for in-app records
	ReportID uint
	FinderID *uint
}

// Results maps channel name to its outcome. A nil error is a success.
type Results map[string]error

// Failed lists the channels that failed.
func (r Results) Failed() []string {
	var failed []string
	for name, err := range r {
		if err != nil {
			failed = append(failed, name)
		}
	}
	return failed
}

// Channel is one independent delivery mechanism.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher resolves recipients and runs the fan-out.
type Dispatcher struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	push          push.Client
	social        social.Client
	timeout       time.Duration
}

func New(users repository.UserRepository, notifications repository.NotificationRepository, pushClient push.Client, socialClient social.Client) *Dispatcher {
	return &Dispatcher{
		users:         users,
		notifications: notifications,
		push:          pushClient,
		social:        socialClient,
		timeout:       15 * time.Second,
	}
}

// Dispatch runs every channel concurrently and joins all results. It never
// short-circuits on the first failure; partial failure is an expected
// outcome, reported per channel and counted in metrics.
func (d *Dispatcher) Dispatch(ctx context.Context, channels []Channel, msg Message) Results {
	results := make(Results, len(channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			err := ch.Send(sendCtx, msg)
			if err != nil {
				log.Warnf("[Dispatch] channel %s failed for report %d: %v", ch.Name(), msg.ReportID, err)
				metrics.DispatchOutcomes.WithLabelValues(ch.Name(), "failure").Inc()
			} else {
				metrics.DispatchOutcomes.WithLabelValues(ch.Name(), "success").Inc()
			}

			mu.Lock()
			results[ch.Name()] = err
			mu.Unlock()
		}(ch)
	}

	wg.Wait()
	return results
}

// NotifyStationStaff informs the officers and admin of the report's assigned
// station about a new or updated report. Best effort: errors are reported in
// the Results, never returned.
func (d *Dispatcher) NotifyStationStaff(ctx context.Context, report *models.Report, msg Message) Results {
	if report.AssignedStationID == nil {
		log.Warnf("[Dispatch] report %d has no assigned station, skipping staff notification", report.ID)
		return Results{}
	}

	staff, err := d.users.GetStationStaff(*report.AssignedStationID)
	if err != nil {
		log.Errorf("[Dispatch] staff lookup failed for station %d: %v", *report.AssignedStationID, err)
		return Results{ChannelInApp: err}
	}
	if len(staff) == 0 {
		return Results{}
	}

	channels := []Channel{
		newInAppChannel(d.notifications, staff),
		newPushChannel(d.push, staff),
		newEmailChannel(staff),
	}
	return d.Dispatch(ctx, channels, msg)
}

// Broadcast publishes a report to the selected public channels. The caller
// validated the selection; recipients come from the broadcast audience.
func (d *Dispatcher) Broadcast(ctx context.Context, report *models.Report, channelNames []string, msg Message) Results {
	audience, err := d.users.GetBroadcastAudience()
	if err != nil {
		log.Errorf("[Dispatch] audience lookup failed: %v", err)
		results := make(Results, len(channelNames))
		for _, name := range channelNames {
			results[name] = err
		}
		return results
	}

	channels := make([]Channel, 0, len(channelNames))
	for _, name := range channelNames {
		switch name {
		case ChannelPush:
			channels = append(channels, newPushChannel(d.push, audience))
		case ChannelEmail:
			channels = append(channels, newEmailChannel(audience))
		case ChannelFacebook:
			channels = append(channels, newSocialChannel(d.social))
		}
	}
	return d.Dispatch(ctx, channels, msg)
}
