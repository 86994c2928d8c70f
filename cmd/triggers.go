package cmd

import (
	"fmt"
	"io"

	"avicbot/pkg/responder"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "List commands and keywords in match order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := offlineConfig()
		printTriggers(cmd.OutOrStdout(), newResponder(cfg).Triggers())
	},
}

func init() {
	rootCmd.AddCommand(triggersCmd)
}

var (
	triggerHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")).Padding(0, 1)
	triggerCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	triggerOwnerStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("203"))
)

func printTriggers(w io.Writer, triggers []responder.Trigger) {
	rows := make([][]string, 0, len(triggers))
	for i, trigger := range triggers {
		who := "anyone"
		if trigger.Privileged {
			who = "owner"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), trigger.Kind, trigger.Name, who, trigger.Description})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("97"))).
		Headers("#", "KIND", "TRIGGER", "WHO", "REPLY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return triggerHeaderStyle
			case col == 3 && rows[row][3] == "owner":
				return triggerOwnerStyle
			default:
				return triggerCellStyle
			}
		})

	fmt.Fprintln(w, t.Render())
}
