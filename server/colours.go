package server

const (
	// Standard colors
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m"
)

// methodColors maps HTTP methods to display colors for DEV route logging
var methodColors = map[string]string{
	"GET":    Green,
	"POST":   Yellow,
	"PUT":    Blue,
	"PATCH":  Magenta,
	"DELETE": Cyan,
}
