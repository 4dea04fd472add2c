package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the requested window width.
//
// Parameters:
//   - width: width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the requested window height.
//
// Parameters:
//   - height: height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithIconPath sets an image file to use as the window icon.
// An icon that fails to load is logged and skipped; the window is still created.
//
// Parameters:
//   - path: path to a PNG, JPEG, GIF, BMP, TIFF or WebP file
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithIconPath(path string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.iconPath = path
	}
}
