package terminal

// Icons for terminal output
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconInfo    = "ℹ️"
	IconBuild   = "🔨"
	IconSearch  = "🔍"
	IconGear    = "⚙️"
	IconCheck   = "✓"
	IconCross   = "✗"
	IconArrow   = "→"
	IconDot     = "•"
)
