package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithEntryPoint overrides the reflected entry point name.
// Use it when a source declares more than one entry point for the same stage.
//
// Parameters:
//   - name: the entry point function name
//
// Returns:
//   - ShaderBuilderOption: a function that sets the entry point
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}

// WithBindGroupLabel sets the debug label of a reflected bind group layout.
//
// Parameters:
//   - group: the bind group index
//   - label: the label to attach
//
// Returns:
//   - ShaderBuilderOption: a function that labels the layout descriptor
func WithBindGroupLabel(group int, label string) ShaderBuilderOption {
	return func(s *shader) {
		desc, ok := s.bindGroupLayoutDescriptors[group]
		if !ok {
			return
		}
		desc.Label = label
		s.bindGroupLayoutDescriptors[group] = desc
	}
}
