package datamodel

import (
	"slices"

	"github.com/IvanBrykalov/uicore/dataexpr"
	"github.com/IvanBrykalov/uicore/variant"
)

// ViewID identifies a view added with AddView.
type ViewID uint64

type view struct {
	id      ViewID
	expr    *dataexpr.Expression
	deps    []string
	fn      func(variant.Variant)
	fresh   bool // not evaluated yet
	removed bool
}

// AddView compiles expression and calls fn with its value on every Update
// after a variable it reads was dirtied. The first Update always calls fn.
func (m *Model) AddView(expression string, fn func(variant.Variant)) (ViewID, error) {
	e, err := m.compile(expression, false)
	if err != nil {
		return 0, err
	}
	m.nextView++
	m.views = append(m.views, &view{
		id:    m.nextView,
		expr:  e,
		deps:  e.VariableNames(),
		fn:    fn,
		fresh: true,
	})
	return m.nextView, nil
}

// RemoveView detaches a view. It is safe to call from a view callback.
func (m *Model) RemoveView(id ViewID) error {
	i := slices.IndexFunc(m.views, func(v *view) bool { return v.id == id })
	if i < 0 {
		return ErrUnknownView
	}
	m.views[i].removed = true
	m.views = slices.Delete(m.views, i, i+1)
	return nil
}

// Update re-evaluates the views that depend on dirty variables, then clears
// the dirty set. Variables dirtied by the callbacks are kept for the next
// Update. It returns the number of callbacks made.
func (m *Model) Update() int {
	dirty := m.dirty
	m.dirty = make(map[string]struct{})

	n := 0
	for _, v := range slices.Clone(m.views) {
		if v.removed || !(v.fresh || dependsOn(v.deps, dirty)) {
			continue
		}
		v.fresh = false
		val, err := v.expr.Run(m)
		if err != nil {
			m.log.Warn("data view failed", "view", v.id, "expression", v.expr.Source(), "error", err)
			continue
		}
		if v.fn != nil {
			v.fn(val)
		}
		n++
	}
	return n
}

func dependsOn(deps []string, dirty map[string]struct{}) bool {
	for _, d := range deps {
		if _, ok := dirty[d]; ok {
			return true
		}
	}
	return false
}

// Eval compiles and runs a single expression.
func (m *Model) Eval(expression string) (variant.Variant, error) {
	e, err := m.compile(expression, false)
	if err != nil {
		return variant.Variant{}, err
	}
	return e.Run(m)
}

// Assign runs a list of assignments such as "count = count + 1; label =
// 'x'", the form used by event handlers. Statements before a failing one
// stay applied.
func (m *Model) Assign(statements string) error {
	e, err := m.compile(statements, true)
	if err != nil {
		return err
	}
	_, err = e.Run(m)
	return err
}

func (m *Model) compile(source string, assignment bool) (*dataexpr.Expression, error) {
	key := exprKey{source: source, assignment: assignment}
	if m.compiled != nil {
		if e, ok := m.compiled.Get(key); ok {
			return e, nil
		}
	}
	e, err := dataexpr.Compile(source, m, assignment)
	if err != nil {
		return nil, err
	}
	if m.compiled != nil {
		m.compiled.Set(key, e)
	}
	return e, nil
}
