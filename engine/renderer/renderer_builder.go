package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend supplies the backend the renderer forwards GPU work to instead of creating a WebGPU device.
// Used by tests to record GPU calls without a device.
//
// Parameters:
//   - backend: the RendererBackend to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingBackend = backend
	}
}

// WithStrictShaderValidation makes pipeline registration fail when a shader does not pass offline WGSL
// validation. By default such failures are logged and the GPU driver's compiler has the final say.
//
// Parameters:
//   - strict: true to fail registration on validation errors
//
// Returns:
//   - RendererBuilderOption: a function that applies the validation option to a renderer
func WithStrictShaderValidation(strict bool) RendererBuilderOption {
	return func(r *renderer) {
		r.strictShaderValidation = strict
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
