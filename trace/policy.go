package trace

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/modfile"
)

// Policy is the tracing oracle: given a callee it decides whether the call is
// atomic (only call and return are traced) or whether the callee's body is
// traced too, and whether the call should be traced at all. The core calls
// the policy; it never implements trace selection itself.
type Policy interface {
	Atomic(fn *FuncInfo) bool
	Trace(fn *FuncInfo) bool
}

// ModulePolicy treats every call defined outside the configured module path
// as atomic. With an empty module path every call is atomic, which yields a
// single-level flow graph.
type ModulePolicy struct {
	Module string
}

// Atomic implements Policy.
func (p *ModulePolicy) Atomic(fn *FuncInfo) bool {
	if p.Module == "" {
		return true
	}
	return fn.Module != p.Module && !strings.HasPrefix(fn.Module, p.Module+"/")
}

// Trace implements Policy.
func (p *ModulePolicy) Trace(fn *FuncInfo) bool {
	return true
}

// ModulePolicyFromGoMod builds a ModulePolicy from the module declared in the
// given go.mod file, so that calls within the traced project are recursed
// into and everything else is atomic.
func ModulePolicyFromGoMod(path string) (*ModulePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", path, err)
	}
	if file.Module == nil {
		return nil, fmt.Errorf("%v: missing module directive", path)
	}
	return &ModulePolicy{Module: file.Module.Mod.Path}, nil
}
