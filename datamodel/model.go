package datamodel

import (
	"log/slog"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/IvanBrykalov/uicore/cache"
	"github.com/IvanBrykalov/uicore/dataexpr"
	"github.com/IvanBrykalov/uicore/variant"
)

// DefaultExpressionCache is the number of compiled expressions kept when
// Options.ExpressionCache is zero.
const DefaultExpressionCache = 256

// Options configures a Model. The zero value is usable.
type Options struct {
	// Logger receives warnings about failed lookups and writes.
	// nil => slog.Default().
	Logger *slog.Logger

	// ExpressionCache bounds the compiled expression cache; a negative
	// value disables it.
	ExpressionCache int
}

// GetFunc produces the value of a function variable.
type GetFunc func() variant.Variant

// SetFunc receives writes to a function variable.
type SetFunc func(variant.Variant)

// variable is a bound root: either a reflected value or a get/set pair.
type variable struct {
	value reflect.Value
	get   GetFunc
	set   SetFunc
}

type exprKey struct {
	source     string
	assignment bool
}

// Hash64 lets the expression cache shard exprKey without fmt.
func (k exprKey) Hash64() uint64 {
	h := xxhash.Sum64String(k.source)
	if k.assignment {
		h = ^h
	}
	return h
}

// Model holds bound variables, aliases, transforms and views.
type Model struct {
	log *slog.Logger

	vars       map[string]*variable
	aliases    map[string]dataexpr.Address
	transforms map[string]dataexpr.TransformFunc
	dirty      map[string]struct{}

	views    []*view
	nextView ViewID

	compiled cache.Cache[exprKey, *dataexpr.Expression] // nil when disabled
}

// New returns an empty model.
func New(opt Options) *Model {
	m := &Model{
		log:        opt.Logger,
		vars:       make(map[string]*variable),
		aliases:    make(map[string]dataexpr.Address),
		transforms: make(map[string]dataexpr.TransformFunc),
		dirty:      make(map[string]struct{}),
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	n := opt.ExpressionCache
	if n == 0 {
		n = DefaultExpressionCache
	}
	if n > 0 {
		m.compiled = cache.New[exprKey, *dataexpr.Expression](cache.Options[exprKey, *dataexpr.Expression]{
			Capacity: n,
			Shards:   1,
		})
	}
	return m
}

// Bind exposes the value ptr points to under name. ptr must be a non-nil
// pointer; the model reads and writes through it.
func (m *Model) Bind(name string, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &BindError{Op: "Bind", Name: name, Err: ErrNotPointer}
	}
	return m.bind("Bind", name, &variable{value: rv.Elem()})
}

// BindFunc exposes a computed variable. A nil set makes it read-only.
func (m *Model) BindFunc(name string, get GetFunc, set SetFunc) error {
	if get == nil {
		return &BindError{Op: "BindFunc", Name: name, Err: ErrNilFunc}
	}
	return m.bind("BindFunc", name, &variable{get: get, set: set})
}

func (m *Model) bind(op, name string, v *variable) error {
	if err := checkName(name); err != nil {
		return &BindError{Op: op, Name: name, Err: err}
	}
	if _, ok := m.vars[name]; ok {
		return &BindError{Op: op, Name: name, Err: ErrDuplicateName}
	}
	m.vars[name] = v
	m.invalidate()
	return nil
}

// RegisterTransform makes fn callable from expressions as name(...) or
// through a pipe. Built-in function names cannot be replaced.
func (m *Model) RegisterTransform(name string, fn dataexpr.TransformFunc) error {
	if err := checkName(name); err != nil {
		return &BindError{Op: "RegisterTransform", Name: name, Err: err}
	}
	if fn == nil {
		return &BindError{Op: "RegisterTransform", Name: name, Err: ErrNilFunc}
	}
	if _, ok := m.transforms[name]; ok || dataexpr.IsBuiltin(name) {
		return &BindError{Op: "RegisterTransform", Name: name, Err: ErrDuplicateName}
	}
	m.transforms[name] = fn
	m.invalidate()
	return nil
}

// Transform implements dataexpr.TransformProvider.
func (m *Model) Transform(name string) (dataexpr.TransformFunc, bool) {
	fn, ok := m.transforms[name]
	return fn, ok
}

// Alias makes name stand for the variable path target, e.g. an iteration
// variable standing for items[3]. Aliases may use reserved names such as
// "it"; a bound variable with the same name takes precedence.
func (m *Model) Alias(name, target string) error {
	if name == "" {
		return &BindError{Op: "Alias", Name: name, Err: ErrIllegalName}
	}
	addr, ok := m.ParseAddress(target)
	if !ok {
		return &BindError{Op: "Alias", Name: name, Err: ErrInvalidTarget}
	}
	if _, ok := m.vars[name]; ok {
		m.log.Warn("alias is shadowed by a variable", "alias", name)
	}
	if _, ok := m.aliases[name]; ok {
		m.log.Warn("alias replaced", "alias", name, "target", target)
	}
	m.aliases[name] = addr
	m.invalidate()
	return nil
}

// RemoveAlias drops an alias and reports whether it existed.
func (m *Model) RemoveAlias(name string) bool {
	if _, ok := m.aliases[name]; !ok {
		return false
	}
	delete(m.aliases, name)
	m.invalidate()
	return true
}

// invalidate drops compiled expressions, whose addresses may now resolve
// differently.
func (m *Model) invalidate() {
	if m.compiled != nil {
		m.compiled.Clear()
	}
}

// ParseAddress implements dataexpr.Interface. The root must be a bound
// variable, an alias or literal.int[N].
func (m *Model) ParseAddress(path string) (dataexpr.Address, bool) {
	addr, ok := parsePath(path)
	if !ok {
		m.log.Warn("malformed variable path", "path", path)
		return nil, false
	}
	root := addr[0].Name
	if _, ok := m.vars[root]; ok {
		return addr, true
	}
	if target, ok := m.aliases[root]; ok {
		out := make(dataexpr.Address, 0, len(target)+len(addr)-1)
		out = append(out, target...)
		return append(out, addr[1:]...), true
	}
	if _, ok := literalInt(addr); ok {
		return addr, true
	}
	if _, ok := m.transforms[path]; ok || dataexpr.IsBuiltin(path) {
		// A bare function name is tried as a variable first.
		m.log.Debug("variable not found in data model", "path", path)
	} else {
		m.log.Warn("variable not found in data model", "path", path)
	}
	return nil, false
}

// GetValue implements dataexpr.Interface.
func (m *Model) GetValue(addr dataexpr.Address) (variant.Variant, bool) {
	if v, ok := m.get(addr); ok {
		return v, true
	}
	m.log.Warn("could not get value from data variable", "address", addr.String())
	return variant.Variant{}, false
}

func (m *Model) get(addr dataexpr.Address) (variant.Variant, bool) {
	if len(addr) == 0 {
		return variant.Variant{}, false
	}
	v, ok := m.vars[addr[0].Name]
	if !ok {
		if n, ok := literalInt(addr); ok {
			return variant.FromInt(int64(n)), true
		}
		return variant.Variant{}, false
	}
	if v.get != nil {
		if len(addr) != 1 {
			return variant.Variant{}, false
		}
		return v.get(), true
	}
	leaf, ok := lookup(v.value, addr[1:])
	if !ok {
		return variant.Variant{}, false
	}
	return toVariant(leaf)
}

// SetValue implements dataexpr.Interface. A successful write dirties the
// root variable.
func (m *Model) SetValue(addr dataexpr.Address, val variant.Variant) bool {
	if m.set(addr, val) {
		m.dirty[addr[0].Name] = struct{}{}
		return true
	}
	m.log.Warn("could not assign data variable", "address", addr.String(), "value", val.ToString())
	return false
}

func (m *Model) set(addr dataexpr.Address, val variant.Variant) bool {
	if len(addr) == 0 {
		return false
	}
	v, ok := m.vars[addr[0].Name]
	if !ok {
		return false
	}
	if v.get != nil {
		if v.set == nil || len(addr) != 1 {
			return false
		}
		v.set(val)
		return true
	}
	return store(v.value, addr[1:], val)
}

// DirtyVariable marks a top-level variable as changed so that views
// reading it are refreshed on the next Update.
func (m *Model) DirtyVariable(name string) {
	if _, ok := m.vars[name]; !ok {
		m.log.Warn("cannot dirty unknown variable", "name", name)
		return
	}
	m.dirty[name] = struct{}{}
}

// IsVariableDirty reports whether name changed since the last Update.
func (m *Model) IsVariableDirty(name string) bool {
	_, ok := m.dirty[name]
	return ok
}

// DirtyAll marks every bound variable as changed.
func (m *Model) DirtyAll() {
	for name := range m.vars {
		m.dirty[name] = struct{}{}
	}
}

// CacheStats reports the compiled expression cache counters.
func (m *Model) CacheStats() cache.Stats {
	if m.compiled == nil {
		return cache.Stats{}
	}
	return m.compiled.Stats()
}

var (
	_ dataexpr.Interface         = (*Model)(nil)
	_ dataexpr.TransformProvider = (*Model)(nil)
)
