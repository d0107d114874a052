package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// UniformGroup and TextureGroup are the bind groups a program's uniform block and texture units
// are declared in.
const (
	UniformGroup = 0
	TextureGroup = 1
)

// wgslUniformTypes maps WGSL member types to the uniform types a block can hold.
var wgslUniformTypes = map[string]UniformType{
	"f32":         UniformFloat,
	"i32":         UniformInt,
	"vec2f":       UniformVec2,
	"vec2<f32>":   UniformVec2,
	"vec3f":       UniformVec3,
	"vec3<f32>":   UniformVec3,
	"vec4f":       UniformVec4,
	"vec4<f32>":   UniformVec4,
	"mat3x3f":     UniformMat3,
	"mat3x3<f32>": UniformMat3,
	"mat4x4f":     UniformMat4,
	"mat4x4<f32>": UniformMat4,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// fieldRegex matches a struct member: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`^(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)$`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> u: Uniforms;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// Reflection is what a program's WGSL source declares.
type Reflection struct {
	// Uniforms are the members of the uniform block at group 0 binding 0, in declaration order.
	Uniforms []Uniform
	// TextureUnits is the number of texture_2d bindings in group 1.
	TextureUnits  int
	VertexEntry   string
	FragmentEntry string
}

// Reflect parses the WGSL of both stages. A stage that declares the uniform block must agree
// with the other stage's declaration.
//
// Parameters:
//   - vertex: the vertex stage source
//   - fragment: the fragment stage source
//
// Returns:
//   - Reflection: the declared uniforms, texture units and entry points
//   - error: an error if a uniform member has an unsupported type or the stages disagree
func Reflect(vertex, fragment string) (Reflection, error) {
	var r Reflection
	var blockFound bool
	for _, src := range []string{vertex, fragment} {
		if src == "" {
			continue
		}
		cleaned := stripComments(src)

		uniforms, found, err := parseUniformBlock(cleaned)
		if err != nil {
			return Reflection{}, err
		}
		if found {
			if blockFound && !slices.Equal(r.Uniforms, uniforms) {
				return Reflection{}, errors.New("vertex and fragment stages declare different uniform blocks")
			}
			r.Uniforms, blockFound = uniforms, true
		}

		r.TextureUnits = max(r.TextureUnits, countTextureUnits(cleaned))
		if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil && r.VertexEntry == "" {
			r.VertexEntry = m[1]
		}
		if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil && r.FragmentEntry == "" {
			r.FragmentEntry = m[1]
		}
	}
	return r, nil
}

// parseUniformBlock finds the var<uniform> at group 0 binding 0 and flattens its struct.
func parseUniformBlock(source string) ([]Uniform, bool, error) {
	var typeName string
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(source, -1) {
		if m[1] == strconv.Itoa(UniformGroup) && m[2] == "0" && strings.TrimSpace(m[3]) == "uniform" {
			typeName = strings.TrimSpace(m[5])
			break
		}
	}
	if typeName == "" {
		return nil, false, nil
	}

	for _, m := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		if m[1] != typeName {
			continue
		}
		var uniforms []Uniform
		for _, member := range splitAtTopLevelCommas(m[2]) {
			member = strings.TrimSpace(member)
			if member == "" {
				continue
			}
			fm := fieldRegex.FindStringSubmatch(member)
			if fm == nil {
				return nil, true, errors.Errorf("uniform block %s: cannot parse member %q", typeName, member)
			}
			name, wgslType := fm[1], strings.TrimSpace(fm[2])
			typ, ok := wgslUniformTypes[wgslType]
			if !ok {
				return nil, true, errors.Errorf("uniform block %s: member %s has unsupported type %s", typeName, name, wgslType)
			}
			uniforms = append(uniforms, Uniform{Name: name, Type: typ})
		}
		return uniforms, true, nil
	}
	return nil, true, errors.Errorf("uniform block type %s is not a struct in this source", typeName)
}

// countTextureUnits counts the sampled 2D textures bound in the texture group.
func countTextureUnits(source string) int {
	n := 0
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(source, -1) {
		if m[1] == strconv.Itoa(TextureGroup) && strings.HasPrefix(strings.TrimSpace(m[5]), "texture_2d<") {
			n++
		}
	}
	return n
}

// FieldName converts a uniform name to the WGSL struct member it is stored in:
// "uPointLights[1].color" becomes "uPointLights_1_color".
func FieldName(uniform string) string {
	var b strings.Builder
	underscore := false
	for _, r := range uniform {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		default:
			if !underscore && b.Len() > 0 {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// stripComments removes line and block comments so they do not interfere with parsing.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes /* ... */ comments, which nest in WGSL.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a struct body on commas outside of <...>.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
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
