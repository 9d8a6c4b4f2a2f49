package trace

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// inspectFunction resolves the identity of a called function value. For
// ordinary functions and method values the runtime symbol name yields the
// defining package path and the qualified name; anything else is identified
// by its dynamic type.
func inspectFunction(fn any) *FuncInfo {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return &FuncInfo{QualName: fmt.Sprintf("%T", fn)}
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return &FuncInfo{QualName: v.Type().String()}
	}
	module, qual := splitFuncName(rf.Name())
	return &FuncInfo{Module: module, QualName: qual}
}

// splitFuncName splits a runtime symbol name such as
// "github.com/viant/flowtrace/trace.(*Tracer).Reset" or "main.main.func1"
// into the package path and the package-qualified name. Method-value suffixes
// ("-fm") are stripped.
func splitFuncName(full string) (module, qual string) {
	full = strings.TrimSuffix(full, "-fm")
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return "", full
	}
	dot += slash + 1
	return full[:dot], full[dot+1:]
}
