package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyM   = 77  // M key (ASCII), toggles the render mode
	KeyP   = 80  // P key (ASCII), toggles the scene pose
	KeyEsc = 256 // Escape key (GLFW)
)
