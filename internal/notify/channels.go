package notify

import (
	"context"
	"fmt"

	"plandrift/internal/config"
	"plandrift/pkg/logging"
)

// Channels maps alert channel names to notifiers
type Channels map[string]Notifier

// NewChannels builds a notifier for every channel configured in cfg.
func NewChannels(cfg *config.Config, logger logging.Logger) Channels {
	channels := Channels{}
	if cfg.Email != nil {
		channels[config.ChannelEmail] = NewEmailNotifier(cfg.Email, logger)
	}
	if cfg.Slack != nil {
		channels[config.ChannelSlack] = NewSlackNotifier(cfg.Slack, logger)
	}
	return channels
}

// Notify sends alert on the named channel.
func (c Channels) Notify(ctx context.Context, channel string, alert Alert) error {
	n, ok := c[channel]
	if !ok {
		return fmt.Errorf("alert channel %q is not configured", channel)
	}
	return n.Notify(ctx, alert)
}
