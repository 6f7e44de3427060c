package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the plane panel and the side column horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, planePanel, side, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, planePanel, side)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

// RenderPlanePanel wraps plane content with a styled border.
// The actual plane rendering is done externally to avoid import cycles.
func RenderPlanePanel(width, height int, planeContent, legend string) string {
	content := planeContent + "\n" + legend
	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)
}
