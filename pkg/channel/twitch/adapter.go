package twitch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"avicbot/pkg/bus"
	"avicbot/pkg/channel"
	"avicbot/pkg/config"
)

const channelName = "twitch"
const messagePreviewLimit = 240

type dialFunc func(ctx context.Context) (*Conn, error)

// Adapter runs the read-dispatch-write loop over one Twitch chat connection.
type Adapter struct {
	creds        Credentials
	greeting     string
	lineInterval time.Duration
	clock        clockwork.Clock
	dial         dialFunc
	log          *slog.Logger

	connected atomic.Bool
}

// NewAdapter validates the connection settings and constructs an adapter.
func NewAdapter(cfg *config.Config, log *slog.Logger) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "channel.twitch")

	creds := Credentials{Token: cfg.Token, Nick: cfg.Nick, Channel: cfg.Channel}
	server := cfg.Server

	return &Adapter{
		creds:        creds,
		greeting:     strings.TrimSpace(cfg.Greeting),
		lineInterval: time.Duration(cfg.LineInterval()) * time.Millisecond,
		clock:        clockwork.NewRealClock(),
		dial: func(ctx context.Context) (*Conn, error) {
			return Dial(ctx, server, creds, log)
		},
		log: log,
	}, nil
}

// Name returns the channel identifier used in logs and status.
func (a *Adapter) Name() string {
	return channelName
}

// Connected reports whether Run currently holds a logged-in connection.
func (a *Adapter) Connected() bool {
	return a.connected.Load()
}

// Run connects and serves messages until the server hangs up, a shutdown
// reply is sent, or ctx is canceled. Only transport failures are returned.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	conn, err := a.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	a.connected.Store(true)
	defer a.connected.Store(false)

	// Closing the socket is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	a.log.Info("Twitch channel joined", "channel", a.creds.Channel, "nick", a.creds.Nick)

	if a.greeting != "" {
		if err := conn.SendLine(a.creds.Channel, a.greeting); err != nil {
			return a.stopErr(ctx, err)
		}
	}

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return a.stopErr(ctx, err)
		}

		if reason, rejected := loginRejected(line); rejected {
			return &ConnectionError{Op: "login", Err: errors.New(reason)}
		}

		inbound, ok := ParseInbound(line)
		if !ok {
			a.log.Debug("Ignoring server line", "line", previewText(line))
			continue
		}
		if inbound.Sender == a.creds.Nick {
			continue
		}

		a.log.Info("Received message", "id", inbound.ID, "sender", inbound.Sender, "content", previewText(inbound.Text))

		reply, ok := handler(ctx, inbound)
		if !ok {
			continue
		}
		if reply.Channel == "" {
			reply.Channel = inbound.Channel
		}

		a.log.Info("Sending reply", "id", inbound.ID, "trigger", reply.Trigger, "lines", len(reply.Lines), "content", previewText(reply.Text()))
		if err := a.send(ctx, conn, reply); err != nil {
			return a.stopErr(ctx, err)
		}

		if reply.Shutdown {
			a.log.Info("Shutdown requested", "sender", inbound.Sender)
			return nil
		}
	}
}

// send writes the reply lines in order, pausing between them.
func (a *Adapter) send(ctx context.Context, conn *Conn, reply bus.OutboundMessage) error {
	for i, line := range reply.Lines {
		if i > 0 && a.lineInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-a.clock.After(a.lineInterval):
			}
		}

		if err := conn.SendLine(reply.Channel, line); err != nil {
			return err
		}
	}

	return nil
}

// stopErr hides the errors caused by our own cancellation.
func (a *Adapter) stopErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}

	return err
}

// previewText returns a bounded log-safe preview of message text.
func previewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}
