package ui

import "github.com/charmbracelet/lipgloss"

// Matrix color palette
var (
	ColorMatrixGreen  = lipgloss.Color("#00FF41")
	ColorGreen        = lipgloss.Color("#00CC33")
	ColorMidGreen     = lipgloss.Color("#008F11")
	ColorDimGreen     = lipgloss.Color("#004A0A")
	ColorBlack        = lipgloss.Color("#000000")
	ColorMeasured     = lipgloss.Color("#00FFAA")
	ColorEstimate     = lipgloss.Color("#FFCC00")
	ColorBorderBright = lipgloss.Color("#00FF41")
	ColorBorderNorm   = lipgloss.Color("#00AA22")
	ColorError        = lipgloss.Color("#FF3300")
	ColorWarning      = lipgloss.Color("#FFAA00")
)

// Pre-built styles
var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorGreen).
			Padding(0, 1)

	StylePhaseActive = lipgloss.NewStyle().
				Foreground(ColorMatrixGreen).
				Bold(true)

	StylePhaseBusy = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StylePhaseFailed = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StyleStatusError = lipgloss.NewStyle().
				Foreground(ColorError)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderNorm)

	StylePanelActive = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderBright)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleAnchorName = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleAnchorCoord = lipgloss.NewStyle().
				Foreground(ColorMidGreen)

	StyleAnchorPower = lipgloss.NewStyle().
				Foreground(ColorGreen)

	StyleAnchorDist = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleMeasured = lipgloss.NewStyle().
			Foreground(ColorMeasured)

	StyleUnmeasured = lipgloss.NewStyle().
			Foreground(ColorDimGreen)

	StyleEstimate = lipgloss.NewStyle().
			Foreground(ColorEstimate).
			Bold(true)

	StyleSeparator = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGreen)
)
