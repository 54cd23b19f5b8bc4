package services

import (
	"context"
	"time"

	"github.com/mirador-dev/mirador/internal/alerts"
	"github.com/mirador-dev/mirador/internal/cache"
	"github.com/mirador-dev/mirador/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const dispatchBatchSize = 50

// Dispatcher drains rule-attributed notifications that have not been
// delivered to their out-of-band channels yet. Each run is independent
// and each notification is delivered at most once; a failed delivery
// is retried on the next run because delivered_at stays unset.
type Dispatcher struct {
	rules         *store.RuleStore
	notifications *store.NotificationStore
	profiles      *store.ProfileStore
	notifier      *Notifier
	cache         *cache.Store
	cron          *cron.Cron
}

func NewDispatcher(rules *store.RuleStore, notifications *store.NotificationStore, profiles *store.ProfileStore, notifier *Notifier, c *cache.Store) *Dispatcher {
	return &Dispatcher{
		rules:         rules,
		notifications: notifications,
		profiles:      profiles,
		notifier:      notifier,
		cache:         c,
		cron:          cron.New(),
	}
}

func (d *Dispatcher) Start() error {
	if _, err := d.cron.AddFunc("@every 1m", d.Run); err != nil {
		return err
	}

	d.cron.Start()
	logrus.Info("Notification dispatcher started")
	return nil
}

func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
	logrus.Info("Notification dispatcher stopped")
}

// Run processes one batch of undelivered notifications.
func (d *Dispatcher) Run() {
	ctx := context.Background()

	pending, err := d.notifications.ListUndelivered(ctx, dispatchBatchSize)

	if err != nil {
		logrus.WithError(err).Error("Failed to list undelivered notifications")
		return
	}

	delivered := 0

	for _, notification := range pending {
		rule, err := d.rules.GetByID(ctx, *notification.AlertRuleID)

		if err != nil {
			logrus.WithError(err).WithField("notification_id", notification.ID).
				Warn("Skipping notification with unknown rule")
			continue
		}

		if !rule.IsActive {
			continue
		}

		channels := alerts.DecodeChannels(rule.Channels)
		failed := false

		for _, channel := range channels.NotificationChannels {
			switch channel {
			case "slack":
				if err := d.notifier.SendSlack(notification, *rule); err != nil {
					logrus.WithError(err).WithField("notification_id", notification.ID).
						Warn("Slack delivery failed")
					failed = true
				}
			case "email":
				owner, err := d.profiles.Get(ctx, rule.UserID)
				if err != nil {
					logrus.WithError(err).WithField("rule_id", rule.ID).
						Warn("Cannot resolve rule owner for email delivery")
					failed = true
					continue
				}
				if err := d.notifier.SendEmail(owner.Email, notification, *rule); err != nil {
					logrus.WithError(err).WithField("notification_id", notification.ID).
						Warn("Email delivery failed")
					failed = true
				}
			case "app":
				// In-app only; the notification is already visible in
				// the feed.
			default:
				logrus.WithField("channel", channel).Warn("Unknown notification channel")
			}
		}

		if failed {
			continue
		}

		if err := d.notifications.MarkDelivered(ctx, notification.ID, time.Now()); err != nil {
			logrus.WithError(err).WithField("notification_id", notification.ID).
				Error("Failed to mark notification delivered")
			continue
		}

		delivered++
	}

	if delivered > 0 {
		d.cache.Invalidate(cache.NamespaceNotifications)
		logrus.WithField("count", delivered).Info("Dispatched notifications")
	}
}
