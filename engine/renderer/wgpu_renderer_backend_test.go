package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 2)

	g0 := merged[0].Entries
	require.Len(t, g0, 2)
	assert.Equal(t, uint32(0), g0[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, g0[0].Visibility)
	assert.Equal(t, uint32(1), g0[1].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, g0[1].Visibility)

	assert.Equal(t, fragment[1], merged[1])
}

func TestMergeBindGroupLayouts_Empty(t *testing.T) {
	assert.Empty(t, mergeBindGroupLayouts(nil, nil))
}

func TestSurfaceConfiguration(t *testing.T) {
	config := surfaceConfiguration(wgpu.TextureFormatBGRA8Unorm, wgpu.CompositeAlphaModeOpaque, 1280, 720)

	assert.Equal(t, wgpu.PresentModeFifo, config.PresentMode)
	assert.Equal(t, wgpu.TextureUsageRenderAttachment, config.Usage)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, config.Format)
	assert.Equal(t, wgpu.CompositeAlphaModeOpaque, config.AlphaMode)
	assert.Equal(t, uint32(1280), config.Width)
	assert.Equal(t, uint32(720), config.Height)
}
