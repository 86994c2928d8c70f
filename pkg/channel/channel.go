package channel

import (
	"context"

	"avicbot/pkg/bus"
)

// Handler turns one inbound chat message into at most one reply. The boolean
// result is false when the bot stays silent.
type Handler func(context.Context, bus.InboundMessage) (bus.OutboundMessage, bool)

// Adapter bridges one external chat transport into the dispatch loop.
type Adapter interface {
	Name() string
	Run(context.Context, Handler) error
}
