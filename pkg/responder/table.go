package responder

import (
	"strings"

	"avicbot/pkg/bus"
)

// Request is what a command sees of the message that invoked it.
type Request struct {
	Message bus.InboundMessage
	// Args is the message text after the command word, trimmed.
	Args string
	// Table is the table the command was dispatched from.
	Table *Table
}

// CommandFunc produces the reply lines of a command.
type CommandFunc func(Request) ([]string, error)

// Command is a trigger anchored to the first token of a message.
type Command struct {
	Name         string
	Usage        string
	Help         string
	RequiresArgs bool
	// Privileged commands only run for the configured owner.
	Privileged bool
	// Shutdown marks the reply as the last one before the loop exits.
	Shutdown bool
	Run      CommandFunc
}

// Keyword is a trigger matched by case-insensitive substring containment.
type Keyword struct {
	Match string
	Lines []string
}

// Table is the ordered trigger set. Commands are consulted before keywords;
// keywords win in declaration order.
type Table struct {
	Commands []Command
	Keywords []Keyword
}

// Trigger kinds reported by Triggers.
const (
	KindCommand = "command"
	KindKeyword = "keyword"
)

// Trigger describes one table entry in precedence order.
type Trigger struct {
	Kind        string
	Name        string
	Description string
	Privileged  bool
}

// Triggers lists every entry, commands first, in the order dispatch checks them.
func (t *Table) Triggers() []Trigger {
	out := make([]Trigger, 0, len(t.Commands)+len(t.Keywords))
	for _, c := range t.Commands {
		out = append(out, Trigger{Kind: KindCommand, Name: c.Name, Description: c.Usage + ": " + c.Help, Privileged: c.Privileged})
	}
	for _, k := range t.Keywords {
		desc := ""
		if len(k.Lines) > 0 {
			desc = k.Lines[0]
		}
		out = append(out, Trigger{Kind: KindKeyword, Name: k.Match, Description: desc})
	}

	return out
}

func (t *Table) command(name string) (Command, bool) {
	for _, c := range t.Commands {
		if c.Name == name {
			return c, true
		}
	}

	return Command{}, false
}

// compile lower-cases keyword matches once so dispatch does not repeat it.
func (t Table) compile() Table {
	keywords := make([]Keyword, 0, len(t.Keywords))
	for _, k := range t.Keywords {
		if k.Match == "" {
			continue
		}
		keywords = append(keywords, Keyword{Match: strings.ToLower(k.Match), Lines: k.Lines})
	}

	return Table{Commands: append([]Command(nil), t.Commands...), Keywords: keywords}
}
