// Package responder owns the trigger table and turns inbound chat lines into
// scripted replies.
package responder

import (
	"errors"
	"strings"
	"unicode"

	"avicbot/pkg/bus"
)

// Responder dispatches messages against a read-only trigger table.
type Responder struct {
	table Table
	owner string
}

// New compiles the table. An empty owner disables privileged commands.
func New(table Table, owner string) *Responder {
	return &Responder{
		table: table.compile(),
		owner: strings.TrimSpace(owner),
	}
}

// Triggers lists the compiled table in precedence order.
func (r *Responder) Triggers() []Trigger {
	return r.table.Triggers()
}

// Dispatch returns the reply for msg, or false when no trigger fires.
func (r *Responder) Dispatch(msg bus.InboundMessage) (bus.OutboundMessage, bool) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return bus.OutboundMessage{}, false
	}

	if reply, ok := r.dispatchCommand(msg, text); ok {
		return reply, true
	}

	return r.dispatchKeyword(msg, text)
}

func (r *Responder) dispatchCommand(msg bus.InboundMessage, text string) (bus.OutboundMessage, bool) {
	word, args := splitCommand(text)

	cmd, ok := r.table.command(word)
	if !ok {
		return bus.OutboundMessage{}, false
	}
	if cmd.Privileged && !r.isOwner(msg.Sender) {
		return bus.OutboundMessage{}, false
	}

	lines, err := r.run(cmd, Request{Message: msg, Args: args, Table: &r.table})
	if errors.Is(err, ErrNotAddressed) {
		return bus.OutboundMessage{}, false
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return bus.OutboundMessage{
			Channel: msg.Channel,
			Lines:   []string{usageErr.Hint()},
			Trigger: cmd.Name,
			Kind:    bus.ReplyUsage,
		}, true
	}

	reply := bus.OutboundMessage{
		Channel:  msg.Channel,
		Lines:    lines,
		Trigger:  cmd.Name,
		Kind:     bus.ReplyCommand,
		Shutdown: cmd.Shutdown,
	}
	if reply.Empty() && !reply.Shutdown {
		return bus.OutboundMessage{}, false
	}

	return reply, true
}

// run executes cmd and normalizes argument failures into *UsageError.
func (r *Responder) run(cmd Command, req Request) ([]string, error) {
	if cmd.RequiresArgs && req.Args == "" {
		return nil, &UsageError{Command: cmd.Name, Usage: cmd.Usage, Err: ErrMissingArgument}
	}
	if cmd.Run == nil {
		return nil, nil
	}

	lines, err := cmd.Run(req)
	if err == nil || errors.Is(err, ErrNotAddressed) {
		return lines, err
	}

	return nil, &UsageError{Command: cmd.Name, Usage: cmd.Usage, Err: err}
}

func (r *Responder) dispatchKeyword(msg bus.InboundMessage, text string) (bus.OutboundMessage, bool) {
	body := strings.ToLower(text)
	for _, k := range r.table.Keywords {
		if !strings.Contains(body, k.Match) {
			continue
		}

		return bus.OutboundMessage{
			Channel: msg.Channel,
			Lines:   append([]string(nil), k.Lines...),
			Trigger: k.Match,
			Kind:    bus.ReplyKeyword,
		}, true
	}

	return bus.OutboundMessage{}, false
}

func (r *Responder) isOwner(sender string) bool {
	if r.owner == "" {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(sender), r.owner)
}

// splitCommand returns the first whitespace-delimited token and the trimmed rest.
func splitCommand(text string) (string, string) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return text, ""
	}

	return text[:idx], strings.TrimSpace(text[idx:])
}
