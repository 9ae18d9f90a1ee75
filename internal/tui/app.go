package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitaminmoo/iqos-tool/internal/commands"
)

// Run starts the TUI application.
func Run(ctx context.Context, env *commands.Env) error {
	m := NewModel(ctx, env)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.disconnect()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}

	return nil
}
