package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// Color palette matching existing fatih/color usage
var (
	// ColorGreen for installed levels and success indicators
	ColorGreen = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}

	// ColorCyan for tags and metadata
	ColorCyan = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}

	// ColorWhite for primary text
	ColorWhite = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}

	// ColorGray for secondary text and help
	ColorGray = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}

	// ColorYellow for the cursor and highlights
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}

	// ColorRed for errors
	ColorRed = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
)

// Reusable styles
var (
	// StyleNormal is the base style for regular text
	StyleNormal = lipgloss.NewStyle().Foreground(ColorWhite)

	// StyleHighlight is for selected items
	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	// StyleInstalled marks levels present on disk
	StyleInstalled = lipgloss.NewStyle().Foreground(ColorGreen)

	// StyleTag is for level tags
	StyleTag = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleHelp is for help text and hints
	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	// StyleError is for the status line after a failure
	StyleError = lipgloss.NewStyle().Foreground(ColorRed)

	// StyleHeader is for section headers
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	// StyleBorder is for borders and separators
	StyleBorder = lipgloss.NewStyle().
			Foreground(ColorGray).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)

// Grid and tab bar styles.
var (
	StyleCard = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	StyleCardSelected = StyleCard.
				BorderForeground(ColorYellow)

	StyleTab = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 2)

	StyleTabActive = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true).
			Underline(true).
			Padding(0, 2)
)

// DifficultyStyle colors text with the difficulty's display color.
func DifficultyStyle(d catalog.Difficulty) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color()))
}
