package bus

import "strings"

// Reply kinds, used as metric labels.
const (
	ReplyCommand = "command"
	ReplyKeyword = "keyword"
	ReplyUsage   = "usage"
)

// InboundMessage is one chat line addressed to the bot's channel.
type InboundMessage struct {
	ID          string `json:"id"`
	Channel     string `json:"channel"`
	Sender      string `json:"sender"`
	DisplayName string `json:"display_name,omitempty"`
	Text        string `json:"text"`
	Raw         string `json:"raw,omitempty"`
}

// OutboundMessage is the reply produced for one inbound message. Lines are
// sent in order as separate chat messages.
type OutboundMessage struct {
	Channel  string   `json:"channel"`
	Lines    []string `json:"lines"`
	Trigger  string   `json:"trigger,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Shutdown bool     `json:"shutdown,omitempty"`
}

// Text joins the reply lines with newlines.
func (m OutboundMessage) Text() string {
	return strings.Join(m.Lines, "\n")
}

// Empty reports whether the reply has nothing to send.
func (m OutboundMessage) Empty() bool {
	for _, line := range m.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}

	return true
}
