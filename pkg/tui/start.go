package tui

import (
	"context"
	"fmt"

	"nftdash/pkg/config"
	"nftdash/pkg/dashboard"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the terminal dashboard until the user quits.
func Start(ctx context.Context, ctrl *dashboard.Controller, globalCfg config.GlobalConfig, configPath, version string) error {
	Version = version
	p := tea.NewProgram(
		initialModel(ctx, ctrl, globalCfg, configPath),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
