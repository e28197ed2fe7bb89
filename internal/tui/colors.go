package tui

// Color constants for the stride TUI theme
const (
	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles and the running clock
	ColorSecondaryText = "#B1B8C7" // Supporting detail lines
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Accent elements, progress bar start
	ColorAccentBright = "#A78BFA" // Highlights, progress bar end

	// State Colors
	ColorError   = "#EF4444" // Failed saves
	ColorSuccess = "#22C55E" // Completion confirmations
	ColorWarning = "#F59E0B" // Pause state
)
