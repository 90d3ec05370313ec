package model

// Console markers for per-file status lines
const (
	IconFixed = "✓"
	IconWarn  = "⚠"
)
