// Package kernel loads WGSL compute kernels and reports their thread shape.
package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/hulkholden/snowglobe/common/dispatch"
	"github.com/hulkholden/snowglobe/common/wgsltypes"
)

var (
	ErrUnknownKernel = errors.New("unknown kernel")
	ErrCompile       = errors.New("compile error")
)

// Kernel is a validated compute entry point.
type Kernel struct {
	// Name is the WGSL entry point.
	Name string
	// Code is the full module source, including the struct prologue.
	Code string
	// WorkgroupSize is the @workgroup_size of the entry point.
	WorkgroupSize [3]int

	Caps dispatch.Capabilities
}

// Prologue returns the WGSL definitions of structs, one after another.
func Prologue(structs ...wgsltypes.Struct) string {
	defs := make([]string, len(structs))
	for i, s := range structs {
		defs[i] = s.ToWGSL()
	}
	return strings.Join(defs, "\n")
}

// Load prepends the struct prologue to source, compiles the result and
// reflects the workgroup size of the entry point called name.
func Load(name, source string, structs ...wgsltypes.Struct) (Kernel, error) {
	code := Prologue(structs...) + "\n" + source
	module, err := compile(code)
	if err != nil {
		return Kernel{}, fmt.Errorf("compiling %q: %w: %v", name, ErrCompile, err)
	}

	size, err := workgroupSize(name, module)
	if err != nil {
		return Kernel{}, err
	}
	return Kernel{
		Name:          name,
		Code:          code,
		WorkgroupSize: size,
		Caps: dispatch.Capabilities{
			PreferredExecutionWidth: size[0],
			MaxThreadsPerGroup:      size[0] * size[1] * size[2],
		},
	}, nil
}

func compile(code string) (*ir.Module, error) {
	ast, err := naga.Parse(code)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return nil, err
	}
	errs, err := naga.Validate(module)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &errs[0]
	}
	return module, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(name, source string, structs ...wgsltypes.Struct) Kernel {
	k, err := Load(name, source, structs...)
	if err != nil {
		panic(fmt.Sprintf("loading kernel: %v", err))
	}
	return k
}

func workgroupSize(name string, module *ir.Module) ([3]int, error) {
	for _, ep := range module.EntryPoints {
		if ep.Name != name {
			continue
		}
		if ep.Stage != ir.StageCompute {
			return [3]int{}, fmt.Errorf("%q is not a compute entry point: %w", name, ErrUnknownKernel)
		}
		var size [3]int
		for i, v := range ep.Workgroup {
			if v == 0 {
				return [3]int{}, fmt.Errorf("%q workgroup size %v: %w", name, ep.Workgroup, dispatch.ErrCapabilityMismatch)
			}
			size[i] = int(v)
		}
		return size, nil
	}
	return [3]int{}, fmt.Errorf("%q: %w", name, ErrUnknownKernel)
}
