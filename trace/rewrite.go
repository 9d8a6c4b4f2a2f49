package trace

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/importer"
	"go/parser"
	"go/printer"
	"go/token"
	"go/types"
	"strconv"

	"go.uber.org/multierr"
	"golang.org/x/tools/go/ast/astutil"
)

// RuntimePackage is the import path of the runtime called by rewritten code.
const RuntimePackage = "github.com/viant/flowtrace/trace"

// DefaultTracerName is the identifier rewritten code uses to reach the
// tracer. The embedding harness declares a *Tracer variable under this name
// in the instrumented package, or overrides it with WithTracerName.
const DefaultTracerName = "__trace__"

// RewriteError reports a construct the rewriter cannot instrument, together
// with the offending source.
type RewriteError struct {
	Pos       token.Position
	Construct string
	Reason    string
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("%v: cannot rewrite %q: %v", e.Pos, e.Construct, e.Reason)
}

// Rewriter transforms syntax trees so that, when executed, they report calls,
// variable reads, assignments and deletions to a tracer, without changing the
// program's observable results. The transform is deterministic and structure
// preserving: evaluation order, short-circuiting and panic propagation are
// untouched, and every value is forwarded with its identity intact.
type Rewriter struct {
	fset   *token.FileSet
	info   *types.Info
	tracer string
	alias  string
	temps  int
	errs   []error
}

// RewriteOption configures a Rewriter.
type RewriteOption func(*Rewriter)

// WithTracerName overrides the identifier rewritten code uses for the tracer.
func WithTracerName(name string) RewriteOption {
	return func(r *Rewriter) {
		r.tracer = name
	}
}

// NewRewriter creates a rewriter. The type info steers identifier
// classification and call result arities; constructs without recorded type
// information are left uninstrumented.
func NewRewriter(fset *token.FileSet, info *types.Info, options ...RewriteOption) *Rewriter {
	r := &Rewriter{
		fset:   fset,
		info:   info,
		tracer: DefaultTracerName,
		alias:  "trace",
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// RewriteFile instruments every function body of the file in place and adds
// the runtime import. On error the file contents must be discarded; a failed
// rewrite is not recoverable.
func (r *Rewriter) RewriteFile(file *ast.File) error {
	instrumented := false
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Body != nil {
			fn.Body.List = r.rewriteStmts(fn.Body.List)
			instrumented = true
		}
	}
	if instrumented {
		astutil.AddNamedImport(r.fset, file, r.alias, RuntimePackage)
	}
	return multierr.Combine(r.errs...)
}

// RewriteSource instruments Go source text: parse, tolerant type check in the
// manner of the static analyzer, rewrite, reprint. Type errors in the input
// do not fail the rewrite; constructs they leave unresolved are skipped.
func RewriteSource(source, path string, options ...RewriteOption) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, source, 0)
	if err != nil {
		return "", err
	}
	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}
	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(error) {}, // keep going on type errors
	}
	_, _ = conf.Check(file.Name.Name, fset, []*ast.File{file}, info)

	r := NewRewriter(fset, info, options...)
	if err := r.RewriteFile(file); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Rewriter) errorf(node ast.Node, reason string) {
	r.errs = append(r.errs, &RewriteError{
		Pos:       r.fset.Position(node.Pos()),
		Construct: r.nodeString(node),
		Reason:    reason,
	})
}

func (r *Rewriter) nodeString(node ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, r.fset, node); err != nil {
		return fmt.Sprintf("%T", node)
	}
	return buf.String()
}

// Statement rewriting. Statements inside a statement list may be replaced by
// several statements (temporaries for destructuring, spliced announcements);
// single-statement positions such as for-clauses get the non-splicing form.

func (r *Rewriter) rewriteStmts(stmts []ast.Stmt) []ast.Stmt {
	var ret []ast.Stmt
	for _, stmt := range stmts {
		ret = append(ret, r.rewriteStmt(stmt)...)
	}
	return ret
}

func (r *Rewriter) rewriteStmt(stmt ast.Stmt) []ast.Stmt {
	switch actual := stmt.(type) {
	case *ast.AssignStmt:
		return r.rewriteAssign(actual)
	case *ast.ExprStmt:
		return r.rewriteExprStmt(actual)
	case *ast.DeclStmt:
		r.rewriteDecl(actual)
	case *ast.ReturnStmt:
		for i, result := range actual.Results {
			actual.Results[i], _ = r.rewriteExpr(result, false)
		}
	case *ast.IfStmt:
		r.rewriteSimpleStmt(actual.Init)
		actual.Cond, _ = r.rewriteExpr(actual.Cond, false)
		actual.Body.List = r.rewriteStmts(actual.Body.List)
		if actual.Else != nil {
			rewritten := r.rewriteStmt(actual.Else)
			if len(rewritten) == 1 {
				actual.Else = rewritten[0]
			}
		}
	case *ast.ForStmt:
		r.rewriteSimpleStmt(actual.Init)
		if actual.Cond != nil {
			actual.Cond, _ = r.rewriteExpr(actual.Cond, false)
		}
		r.rewriteSimpleStmt(actual.Post)
		actual.Body.List = r.rewriteStmts(actual.Body.List)
	case *ast.RangeStmt:
		actual.X, _ = r.rewriteExpr(actual.X, false)
		actual.Body.List = r.rewriteStmts(actual.Body.List)
	case *ast.SwitchStmt:
		r.rewriteSimpleStmt(actual.Init)
		if actual.Tag != nil {
			actual.Tag, _ = r.rewriteExpr(actual.Tag, false)
		}
		r.rewriteCaseBodies(actual.Body)
	case *ast.TypeSwitchStmt:
		r.rewriteCaseBodies(actual.Body)
	case *ast.SelectStmt:
		for _, clause := range actual.Body.List {
			if comm, ok := clause.(*ast.CommClause); ok {
				comm.Body = r.rewriteStmts(comm.Body)
			}
		}
	case *ast.BlockStmt:
		actual.List = r.rewriteStmts(actual.List)
	case *ast.LabeledStmt:
		if rewritten := r.rewriteStmt(actual.Stmt); len(rewritten) == 1 {
			actual.Stmt = rewritten[0]
		}
	case *ast.SendStmt:
		actual.Value, _ = r.rewriteExpr(actual.Value, false)
	}
	// go and defer statements are left untouched: deferred and concurrent
	// execution would reorder their events arbitrarily.
	return []ast.Stmt{stmt}
}

func (r *Rewriter) rewriteCaseBodies(body *ast.BlockStmt) {
	for _, clause := range body.List {
		if actual, ok := clause.(*ast.CaseClause); ok {
			for i, expr := range actual.List {
				actual.List[i], _ = r.rewriteExpr(expr, false)
			}
			actual.Body = r.rewriteStmts(actual.Body)
		}
	}
}

// rewriteSimpleStmt instruments a statement in a position that admits exactly
// one statement, so no temporaries can be spliced around it.
func (r *Rewriter) rewriteSimpleStmt(stmt ast.Stmt) {
	switch actual := stmt.(type) {
	case *ast.AssignStmt:
		if len(actual.Lhs) == 1 && len(actual.Rhs) == 1 && !r.isUntypedConst(actual.Rhs[0]) {
			if targets, ok := r.assignTargets(actual); ok {
				value, valueBoxed := r.rewriteExpr(actual.Rhs[0], true)
				actual.Rhs[0] = r.wrapAssign(targets, value, valueBoxed)
				return
			}
		}
		for i, value := range actual.Rhs {
			actual.Rhs[i], _ = r.rewriteExpr(value, false)
		}
	case *ast.ExprStmt:
		actual.X, _ = r.rewriteExpr(actual.X, false)
	}
}

func (r *Rewriter) rewriteDecl(stmt *ast.DeclStmt) {
	decl, ok := stmt.Decl.(*ast.GenDecl)
	if !ok || decl.Tok != token.VAR {
		return
	}
	for _, spec := range decl.Specs {
		value, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		if len(value.Names) == 1 && len(value.Values) == 1 && !r.isUntypedConst(value.Values[0]) {
			targets := Targets(Name(value.Names[0].Name))
			expr, boxedValue := r.rewriteExpr(value.Values[0], true)
			value.Values[0] = r.wrapAssign(targets, expr, boxedValue)
			continue
		}
		for i, expr := range value.Values {
			value.Values[i], _ = r.rewriteExpr(expr, false)
		}
	}
}

func (r *Rewriter) rewriteExprStmt(stmt *ast.ExprStmt) []ast.Stmt {
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		stmt.X, _ = r.rewriteExpr(stmt.X, false)
		return []ast.Stmt{stmt}
	}
	if r.isBuiltin(call, "delete") {
		announce := &ast.ExprStmt{X: r.runtimeCall("Delete", r.tracerRef(), r.deleteName(call))}
		return []ast.Stmt{announce, stmt}
	}
	if !r.instrumentable(call) {
		r.rewriteCallShallow(call)
		return []ast.Stmt{stmt}
	}
	switch r.resultCount(call) {
	case 1:
		stmt.X = r.runtimeCall("Return", r.tracerRef(), r.instrumentCall(call), ast.NewIdent("false"))
		return []ast.Stmt{stmt}
	case -1:
		r.rewriteCallShallow(call)
		return []ast.Stmt{stmt}
	default:
		// Zero or discarded multiple results: the completion is announced
		// right after the call.
		instrumented := &ast.ExprStmt{X: r.instrumentCall(call)}
		done := &ast.ExprStmt{X: r.runtimeCall("ReturnVoid", r.tracerRef())}
		return []ast.Stmt{instrumented, done}
	}
}

// assignTargets validates assignment targets. Anything but a plain name is an
// unsupported target shape and fails the rewrite.
func (r *Rewriter) assignTargets(stmt *ast.AssignStmt) ([]Target, bool) {
	if stmt.Tok != token.ASSIGN && stmt.Tok != token.DEFINE {
		return nil, false
	}
	var names []Target
	for _, lhs := range stmt.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok {
			r.errorf(lhs, "unsupported assignment target")
			return nil, false
		}
		names = append(names, Name(ident.Name))
	}
	return names, true
}

func (r *Rewriter) rewriteAssign(stmt *ast.AssignStmt) []ast.Stmt {
	targets, ok := r.assignTargets(stmt)
	if !ok {
		return []ast.Stmt{stmt}
	}

	// x = expr
	if len(stmt.Lhs) == 1 && len(stmt.Rhs) == 1 {
		if !r.isUntypedConst(stmt.Rhs[0]) {
			value, valueBoxed := r.rewriteExpr(stmt.Rhs[0], true)
			stmt.Rhs[0] = r.wrapAssign(targets, value, valueBoxed)
		}
		return []ast.Stmt{stmt}
	}

	// a, b = f(x) and other single multi-value producers: evaluate into
	// temporaries, announce the destructured result and the assignment, then
	// perform the store.
	if len(stmt.Rhs) == 1 {
		temps := r.tempIdents(len(stmt.Lhs))
		producer := stmt.Rhs[0]
		var announce *ast.ExprStmt
		if call, ok := producer.(*ast.CallExpr); ok && r.instrumentable(call) {
			producer = r.instrumentCall(call)
			announce = &ast.ExprStmt{X: r.runtimeCall("AssignValuesBoxed",
				r.tracerRef(),
				r.targetsExpr([]Target{Seq(targets...)}),
				r.runtimeCall("ReturnValuesBoxed", append([]ast.Expr{r.tracerRef()}, identExprs(temps)...)...),
			)}
		} else {
			// Comma-ok producers have no call to announce a return for.
			producer, _ = r.rewriteExpr(producer, false)
			announce = &ast.ExprStmt{X: r.runtimeCall("AssignValues",
				append([]ast.Expr{r.tracerRef(), r.targetsExpr([]Target{Seq(targets...)})}, identExprs(temps)...)...,
			)}
		}
		evaluate := &ast.AssignStmt{Lhs: identExprs(temps), Tok: token.DEFINE, Rhs: []ast.Expr{producer}}
		store := &ast.AssignStmt{Lhs: stmt.Lhs, Tok: stmt.Tok, Rhs: identExprs(temps)}
		return []ast.Stmt{evaluate, announce, store}
	}

	// a, b = e1, e2: evaluate in parallel into temporaries, announce, store.
	if len(stmt.Lhs) == len(stmt.Rhs) {
		for _, value := range stmt.Rhs {
			if r.isUntypedConst(value) {
				// A temporary would pin the constant's type; leave the
				// statement as written.
				return []ast.Stmt{stmt}
			}
		}
		temps := r.tempIdents(len(stmt.Lhs))
		values := make([]ast.Expr, len(stmt.Rhs))
		for i, value := range stmt.Rhs {
			values[i], _ = r.rewriteExpr(value, false)
		}
		evaluate := &ast.AssignStmt{Lhs: identExprs(temps), Tok: token.DEFINE, Rhs: values}
		announce := &ast.ExprStmt{X: r.runtimeCall("AssignValues",
			append([]ast.Expr{r.tracerRef(), r.targetsExpr([]Target{Seq(targets...)})}, identExprs(temps)...)...,
		)}
		store := &ast.AssignStmt{Lhs: stmt.Lhs, Tok: stmt.Tok, Rhs: identExprs(temps)}
		return []ast.Stmt{evaluate, announce, store}
	}
	return []ast.Stmt{stmt}
}

// Expression rewriting. The boxed flag asks the node to produce a Boxed value
// for its enclosing trace call; only rewritten calls and variable accesses
// can honor it, and the second result reports whether the returned expression
// is boxed.

func (r *Rewriter) rewriteExpr(expr ast.Expr, wantBoxed bool) (ast.Expr, bool) {
	switch actual := expr.(type) {
	case *ast.CallExpr:
		return r.rewriteCall(actual, wantBoxed)
	case *ast.Ident:
		if !r.isVariable(actual) {
			return expr, false
		}
		if wantBoxed {
			return r.runtimeCall("AccessBoxed", r.tracerRef(), stringLit(actual.Name), actual), true
		}
		return r.runtimeCall("Access", r.tracerRef(), stringLit(actual.Name), actual), false
	case *ast.ParenExpr:
		inner, innerBoxed := r.rewriteExpr(actual.X, wantBoxed)
		actual.X = inner
		return actual, innerBoxed
	case *ast.SelectorExpr:
		if !r.isPackageRef(actual.X) {
			actual.X, _ = r.rewriteExpr(actual.X, false)
		}
		return actual, false
	case *ast.IndexExpr:
		if !r.isTypeExpr(actual.Index) {
			actual.X, _ = r.rewriteExpr(actual.X, false)
			actual.Index, _ = r.rewriteExpr(actual.Index, false)
		}
		return actual, false
	case *ast.SliceExpr:
		actual.X, _ = r.rewriteExpr(actual.X, false)
		for _, part := range []*ast.Expr{&actual.Low, &actual.High, &actual.Max} {
			if *part != nil {
				*part, _ = r.rewriteExpr(*part, false)
			}
		}
		return actual, false
	case *ast.BinaryExpr:
		actual.X, _ = r.rewriteExpr(actual.X, false)
		actual.Y, _ = r.rewriteExpr(actual.Y, false)
		return actual, false
	case *ast.UnaryExpr:
		if actual.Op == token.AND {
			// The operand must stay addressable; only composite literal
			// elements are safe to rewrite underneath an address-of.
			if lit, ok := actual.X.(*ast.CompositeLit); ok {
				r.rewriteCompositeLit(lit)
			}
			return actual, false
		}
		actual.X, _ = r.rewriteExpr(actual.X, false)
		return actual, false
	case *ast.StarExpr:
		actual.X, _ = r.rewriteExpr(actual.X, false)
		return actual, false
	case *ast.TypeAssertExpr:
		actual.X, _ = r.rewriteExpr(actual.X, false)
		return actual, false
	case *ast.CompositeLit:
		r.rewriteCompositeLit(actual)
		return actual, false
	case *ast.FuncLit:
		actual.Body.List = r.rewriteStmts(actual.Body.List)
		return actual, false
	}
	return expr, false
}

func (r *Rewriter) rewriteCompositeLit(lit *ast.CompositeLit) {
	for i, elt := range lit.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			kv.Value, _ = r.rewriteExpr(kv.Value, false)
			continue
		}
		lit.Elts[i], _ = r.rewriteExpr(elt, false)
	}
}

func (r *Rewriter) rewriteCall(call *ast.CallExpr, wantBoxed bool) (ast.Expr, bool) {
	if !r.instrumentable(call) {
		r.rewriteCallShallow(call)
		return call, false
	}
	if r.resultCount(call) != 1 {
		// Multi-value and void calls are only instrumented at statement
		// level, where temporaries can be spliced.
		r.rewriteCallShallow(call)
		return call, false
	}
	instrumented := r.instrumentCall(call)
	if wantBoxed {
		return r.runtimeCall("ReturnBoxed", r.tracerRef(), instrumented, ast.NewIdent("false")), true
	}
	return r.runtimeCall("Return", r.tracerRef(), instrumented, ast.NewIdent("false")), false
}

// instrumentCall wraps the callee and every argument of a call so that the
// callee, each evaluated argument and the performed call are announced, and
// returns the wrapped call carrying the original result values.
func (r *Rewriter) instrumentCall(call *ast.CallExpr) *ast.CallExpr {
	fun := call.Fun
	if _, ok := fun.(*ast.SelectorExpr); !ok {
		// Method receivers stay untouched to preserve addressability; every
		// other callee shape is itself a rewritable expression.
		fun, _ = r.rewriteExpr(fun, false)
	}

	args := make([]ast.Expr, len(call.Args))
	announced := 0
	for i, arg := range call.Args {
		if r.isUntypedConst(arg) {
			// Untyped constants must adapt to the parameter type in place;
			// a wrapper would pin them to their default type. The announced
			// arity counts wrapped arguments only, so a constant shifts the
			// later arguments' positional slots down.
			args[i] = arg
			continue
		}
		stars := 0
		if call.Ellipsis.IsValid() && i == len(call.Args)-1 {
			stars = 1
		}
		value, valueBoxed := r.rewriteExpr(arg, true)
		name := "ArgumentBoxed"
		if !valueBoxed {
			name = "Argument"
		}
		args[i] = r.runtimeCall(name, r.tracerRef(), value, stringLit(""), intLit(stars))
		announced++
	}
	return &ast.CallExpr{
		Fun:      r.runtimeCall("Function", r.tracerRef(), fun, intLit(announced)),
		Args:     args,
		Ellipsis: call.Ellipsis,
	}
}

// rewriteCallShallow rewrites the sub-expressions of a call that is not
// itself instrumented (builtins, conversions, unresolved callees).
func (r *Rewriter) rewriteCallShallow(call *ast.CallExpr) {
	if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
		if !r.isPackageRef(sel.X) {
			sel.X, _ = r.rewriteExpr(sel.X, false)
		}
	}
	for i, arg := range call.Args {
		call.Args[i], _ = r.rewriteExpr(arg, false)
	}
}

// Classification helpers, all driven by the recorded type info.

func (r *Rewriter) instrumentable(call *ast.CallExpr) bool {
	if r.info == nil {
		return false
	}
	if tv, ok := r.info.Types[call.Fun]; !ok || tv.IsType() {
		return false
	}
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return r.wrappableCallee(r.info.Uses[fun])
	case *ast.SelectorExpr:
		return r.wrappableCallee(r.info.Uses[fun.Sel])
	}
	return true
}

// wrappableCallee reports whether a callee object can be forwarded as a
// value. Builtins cannot; neither can generic functions awaiting inferred
// instantiation.
func (r *Rewriter) wrappableCallee(obj types.Object) bool {
	switch actual := obj.(type) {
	case *types.Builtin:
		return false
	case *types.Func:
		sig, ok := actual.Type().(*types.Signature)
		return !ok || sig.TypeParams().Len() == 0
	}
	return true
}

func (r *Rewriter) resultCount(call *ast.CallExpr) int {
	if r.info == nil {
		return -1
	}
	tv, ok := r.info.Types[call]
	if !ok || tv.Type == nil {
		return -1
	}
	if tuple, ok := tv.Type.(*types.Tuple); ok {
		return tuple.Len()
	}
	return 1
}

func (r *Rewriter) isVariable(ident *ast.Ident) bool {
	if ident.Name == "_" || r.info == nil {
		return false
	}
	obj, ok := r.info.Uses[ident].(*types.Var)
	return ok && !obj.IsField()
}

func (r *Rewriter) isPackageRef(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	if !ok || r.info == nil {
		return false
	}
	_, isPkg := r.info.Uses[ident].(*types.PkgName)
	return isPkg
}

func (r *Rewriter) isTypeExpr(expr ast.Expr) bool {
	if r.info == nil {
		return false
	}
	tv, ok := r.info.Types[expr]
	return ok && tv.IsType()
}

// isUntypedConst reports expressions that must keep adapting to their
// context, untyped constants and nil, which generic wrappers would pin to a
// default type.
func (r *Rewriter) isUntypedConst(expr ast.Expr) bool {
	if r.info == nil {
		return false
	}
	tv, ok := r.info.Types[expr]
	if !ok || tv.Type == nil {
		return false
	}
	basic, ok := tv.Type.(*types.Basic)
	return ok && basic.Info()&types.IsUntyped != 0
}

func (r *Rewriter) isBuiltin(call *ast.CallExpr, name string) bool {
	ident, ok := call.Fun.(*ast.Ident)
	if !ok || ident.Name != name || r.info == nil {
		return false
	}
	_, isBuiltin := r.info.Uses[ident].(*types.Builtin)
	return isBuiltin
}

// deleteName renders the element a delete statement removes, e.g. `m[k]` or
// `env["x"]` as `env[x]`.
func (r *Rewriter) deleteName(call *ast.CallExpr) ast.Expr {
	if len(call.Args) != 2 {
		return stringLit(r.nodeString(call))
	}
	key := r.nodeString(call.Args[1])
	if lit, ok := call.Args[1].(*ast.BasicLit); ok && lit.Kind == token.STRING {
		if unquoted, err := strconv.Unquote(lit.Value); err == nil {
			key = unquoted
		}
	}
	return stringLit(r.nodeString(call.Args[0]) + "[" + key + "]")
}

// AST construction helpers.

func (r *Rewriter) tracerRef() ast.Expr {
	return ast.NewIdent(r.tracer)
}

func (r *Rewriter) runtimeCall(name string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(r.alias), Sel: ast.NewIdent(name)},
		Args: args,
	}
}

func (r *Rewriter) wrapAssign(targets []Target, value ast.Expr, valueBoxed bool) ast.Expr {
	name := "Assign"
	if valueBoxed {
		name = "AssignBoxed"
	}
	return r.runtimeCall(name, r.tracerRef(), r.targetsExpr(targets), value)
}

// targetsExpr renders assignment targets as a trace.Targets(...) call.
func (r *Rewriter) targetsExpr(targets []Target) ast.Expr {
	args := make([]ast.Expr, 0, len(targets)+1)
	args = append(args, targetExprs(r.alias, targets)...)
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(r.alias), Sel: ast.NewIdent("Targets")},
		Args: args,
	}
}

func targetExprs(alias string, targets []Target) []ast.Expr {
	ret := make([]ast.Expr, 0, len(targets))
	for _, target := range targets {
		if len(target.Elems) > 0 {
			ret = append(ret, &ast.CallExpr{
				Fun:  &ast.SelectorExpr{X: ast.NewIdent(alias), Sel: ast.NewIdent("Seq")},
				Args: targetExprs(alias, target.Elems),
			})
			continue
		}
		ret = append(ret, &ast.CallExpr{
			Fun:  &ast.SelectorExpr{X: ast.NewIdent(alias), Sel: ast.NewIdent("Name")},
			Args: []ast.Expr{stringLit(target.Name)},
		})
	}
	return ret
}

func (r *Rewriter) tempIdents(n int) []*ast.Ident {
	ret := make([]*ast.Ident, n)
	for i := range ret {
		ret[i] = ast.NewIdent("__tmp" + strconv.Itoa(r.temps))
		r.temps++
	}
	return ret
}

func identExprs(idents []*ast.Ident) []ast.Expr {
	ret := make([]ast.Expr, len(idents))
	for i, ident := range idents {
		// Fresh nodes per use site keep the printer from sharing positions.
		ret[i] = ast.NewIdent(ident.Name)
	}
	return ret
}

func stringLit(value string) ast.Expr {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(value)}
}

func intLit(value int) ast.Expr {
	return &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(value)}
}
