package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexInput is a single @location input of a vertex entry point.
type VertexInput struct {
	Name     string
	Location uint32
	Format   wgpu.VertexFormat
}

// typeLayout holds the byte size and alignment of a WGSL host-shareable type.
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

type wgslField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// primitiveLayouts covers the scalar, vector and matrix types the engine's uniforms use.
var primitiveLayouts = map[string]typeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec2f":       {8, 8},
	"vec3<f32>":   {12, 16},
	"vec3f":       {12, 16},
	"vec4<f32>":   {16, 16},
	"vec4f":       {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// vertexFormats maps WGSL vertex input types to wgpu vertex formats.
var vertexFormats = map[string]wgpu.VertexFormat{
	"f32":       wgpu.VertexFormatFloat32,
	"vec2<f32>": wgpu.VertexFormatFloat32x2,
	"vec2f":     wgpu.VertexFormatFloat32x2,
	"vec3<f32>": wgpu.VertexFormatFloat32x3,
	"vec3f":     wgpu.VertexFormatFloat32x3,
	"vec4<f32>": wgpu.VertexFormatFloat32x4,
	"vec4f":     wgpu.VertexFormatFloat32x4,
	"u32":       wgpu.VertexFormatUint32,
	"i32":       wgpu.VertexFormatSint32,
}

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex    = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)\s*\((.*?)\)\s*(?:->|\{)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingRegex captures group, binding, address space, name and type from
	// `@group(0) @binding(0) var<uniform> constants: SceneConstants;` or `@group(1) @binding(1) var frame_sampler: sampler;`
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint returns the name of the first entry point of the given stage, or "" if there is none.
func parseEntryPoint(source string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseVertexInputs returns the @location inputs of the vertex entry point, sorted by location.
// Inputs can be declared directly on the entry point parameters or through a struct parameter.
func parseVertexInputs(source string) []VertexInput {
	cleaned := stripComments(source)
	m := vertexEntryRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return nil
	}

	structs := make(map[string]wgslStruct)
	for _, s := range parseStructs(cleaned) {
		structs[s.name] = s
	}

	var inputs []VertexInput
	for _, f := range parseFields(m[2]) {
		if s, ok := structs[f.typeName]; ok {
			for _, sf := range s.fields {
				if in, ok := toVertexInput(sf); ok {
					inputs = append(inputs, in)
				}
			}
			continue
		}
		if in, ok := toVertexInput(f); ok {
			inputs = append(inputs, in)
		}
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Location < inputs[j].Location })
	return inputs
}

func toVertexInput(f wgslField) (VertexInput, bool) {
	if f.isBuiltin || f.location < 0 {
		return VertexInput{}, false
	}
	format, ok := vertexFormats[f.typeName]
	if !ok {
		return VertexInput{}, false
	}
	return VertexInput{Name: f.name, Location: uint32(f.location), Format: format}, true
}

// parseBindGroupLayouts extracts every @group/@binding declaration and builds one layout descriptor per group.
// Entries are sorted by binding and carry the given visibility. Uniform buffers get a MinBindingSize
// resolved from their struct layout.
//
// Parameters:
//   - source: the WGSL source
//   - visibility: the stage that declared the bindings
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	sizes := structLayouts(parseStructs(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		addressSpace := strings.TrimSpace(m[3])
		typeName := strings.TrimSpace(m[5])

		entry := classifyBinding(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveLayout(typeName, sizes); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		groups[group] = append(groups[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = strings.TrimSpace(m[4])
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, names
}

// classifyBinding turns one resource declaration into a layout entry.
// Only the resource kinds the engine binds are recognized: uniform and storage buffers,
// 2D float textures and filtering samplers.
func classifyBinding(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case strings.HasPrefix(typeName, "texture_2d"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	}
	return entry
}

func parseStructs(source string) []wgslStruct {
	matches := structRegex.FindAllStringSubmatch(source, -1)
	structs := make([]wgslStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, wgslStruct{name: m[1], fields: parseFields(m[2])})
	}
	return structs
}

// parseFields splits a struct body or parameter list into fields, keeping @location and @builtin attributes.
func parseFields(body string) []wgslField {
	var fields []wgslField
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		f := wgslField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, f)
	}
	return fields
}

// structLayouts resolves the size of every struct, repeating until structs that
// reference other structs have been resolved.
func structLayouts(structs []wgslStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	for progress := true; progress; {
		progress = false
		for _, s := range structs {
			if _, done := resolved[s.name]; done {
				continue
			}
			var offset uint64
			maxAlign := uint64(1)
			ok := true
			for _, f := range s.fields {
				l, found := resolveLayout(f.typeName, resolved)
				if !found {
					ok = false
					break
				}
				offset = roundUp(l.align, offset) + l.size
				maxAlign = max(maxAlign, l.align)
			}
			if ok {
				resolved[s.name] = typeLayout{roundUp(maxAlign, offset), maxAlign}
				progress = true
			}
		}
	}
	return resolved
}

func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	l, ok := known[typeName]
	return l, ok
}

func roundUp(align, v uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// splitTopLevel splits s at commas that are not inside angle brackets or parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes // line comments and (possibly nested) /* */ block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
