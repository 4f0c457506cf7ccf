package styles

// NewDefaultTheme creates the dark theme used by archlens.
func NewDefaultTheme() *Theme {
	return &Theme{
		Name:   "default",
		IsDark: true,

		// Blueprint blues with an amber accent
		Primary:   ParseHex("#5fa8d3"),
		Secondary: ParseHex("#7fc8c2"),
		Tertiary:  ParseHex("#344152"),
		Accent:    ParseHex("#e8a94f"),

		BgBase:    ParseHex("#15191f"),
		BgSubtle:  ParseHex("#1c222a"),
		BgOverlay: ParseHex("#242c36"),

		FgBase:   ParseHex("#c9d3de"),
		FgMuted:  ParseHex("#8391a1"),
		FgSubtle: ParseHex("#56626f"),

		Border:      ParseHex("#344152"),
		BorderFocus: ParseHex("#5fa8d3"),

		Success: ParseHex("#8cc084"),
		Error:   ParseHex("#e06c75"),
		Warning: ParseHex("#e8c468"),
		Info:    ParseHex("#5fa8d3"),
	}
}
