package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"avicbot/pkg/bus"
)

// DispatchFunc answers one typed chat line.
type DispatchFunc func(bus.InboundMessage) (bus.OutboundMessage, bool)

// Session describes who is typing and where the bot thinks it is.
type Session struct {
	Sender  string
	Nick    string
	Channel string
}

// Run starts the interactive console and blocks until the user quits or the
// bot replies with a shutdown.
func Run(ctx context.Context, dispatch DispatchFunc, session Session) error {
	program := tea.NewProgram(newModel(dispatch, session), tea.WithContext(ctx), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return err
	}

	fmt.Println(renderGoodbyeBanner(session.Nick))
	return nil
}

func renderGoodbyeBanner(nick string) string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("231")).
		Background(lipgloss.Color("55")).
		Padding(1, 2)

	return style.Render(displayOrNA(nick) + " left the channel")
}
