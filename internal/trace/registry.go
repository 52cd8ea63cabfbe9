package trace

import (
	"fmt"
	"reflect"
	"sort"
)

// reservedMembers is the default exclude set for InstrumentType: the
// stringer/formatter surface that callers rarely mean to time.
var reservedMembers = []string{"String", "GoString", "Error", "Format"}

// InstrumentConfig selects and labels the members wrapped by one install.
// A nil Include selects every exported member. A nil Exclude applies the
// per-operation default: reservedMembers for InstrumentType, nothing for
// InstrumentFuncs. Prefix overrides the owner segment of the span label.
type InstrumentConfig struct {
	Include []string
	Exclude []string
	Prefix  string
	Meta    Meta
}

// patchRecord remembers the binding a key held before an install so
// Restore can rebind it. Records unwind last-installed first.
type patchRecord struct {
	key      string
	original reflect.Value
}

// Registry attaches span recording to many callables at once. Bindings
// live in an explicit map keyed by "Owner.member"; installing wraps the
// current binding and replaces it, never rewriting caller-held references.
// Call sites dispatch through Func, Call, or a live Handle.
//
// Install and Restore are not safe against concurrent use or against
// bindings being invoked from another goroutine mid-install: install
// before concurrent work starts and restore only after it has quiesced.
type Registry struct {
	tracer   *Tracer
	bindings map[string]reflect.Value
	patches  []patchRecord
}

// NewRegistry creates an empty registry recording into t.
func NewRegistry(t *Tracer) *Registry {
	return &Registry{
		tracer:   t,
		bindings: make(map[string]reflect.Value),
	}
}

// Register stores fn under "owner.name" without instrumentation, making it
// reachable through Func, Call, and Handle. A later install wraps this
// binding. Non-function values are ignored.
func (r *Registry) Register(owner, name string, fn any) *Registry {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return r
	}
	r.bindings[owner+"."+name] = v
	return r
}

// InstrumentType wraps the exported methods and exported func-typed struct
// fields of target, labeling each "{prefix-or-type-name}.{member}".
// Non-callable members are skipped silently.
func (r *Registry) InstrumentType(target any, cfg InstrumentConfig) *Registry {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return r
	}

	owner := cfg.Prefix
	if owner == "" {
		typ := v.Type()
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		owner = typ.Name()
	}

	exclude := cfg.Exclude
	if exclude == nil {
		exclude = reservedMembers
	}

	members := make(map[string]reflect.Value)
	var order []string

	typ := v.Type()
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !m.IsExported() {
			continue
		}
		members[m.Name] = v.Method(i)
		order = append(order, m.Name)
	}

	sv := v
	for sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	}
	if sv.Kind() == reflect.Struct {
		st := sv.Type()
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.IsExported() {
				continue
			}
			if _, ok := members[f.Name]; ok {
				continue
			}
			members[f.Name] = sv.Field(i)
			order = append(order, f.Name)
		}
	}

	for _, name := range selectNames(order, cfg.Include, exclude) {
		r.install(owner, name, members[name], cfg.Meta)
	}
	return r
}

// InstrumentFuncs wraps the callables of a namespace expressed as a
// name-to-function map, labeling each "{prefix-or-owner}.{name}".
// Non-callable values are skipped silently.
func (r *Registry) InstrumentFuncs(owner string, fns map[string]any, cfg InstrumentConfig) *Registry {
	if cfg.Prefix != "" {
		owner = cfg.Prefix
	}

	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic install order

	for _, name := range selectNames(names, cfg.Include, cfg.Exclude) {
		r.install(owner, name, reflect.ValueOf(fns[name]), cfg.Meta)
	}
	return r
}

// install wraps the current binding for owner.name, falling back to the
// freshly resolved member when the key has never been bound, and pushes a
// patch record. Wrapping the current binding means repeated installs nest
// and unwind correctly.
func (r *Registry) install(owner, name string, fallback reflect.Value, meta Meta) {
	if fallback.Kind() != reflect.Func {
		return
	}
	key := owner + "." + name
	original, ok := r.bindings[key]
	if !ok {
		original = fallback
	}
	r.bindings[key] = r.tracer.instrumentValue(key, original, meta)
	r.patches = append(r.patches, patchRecord{key: key, original: original})
}

// Restore pops every patch record in reverse install order, rebinding each
// key to its saved original. Calling it with nothing left to restore is a
// no-op. It must run before the registry is discarded, or bindings remain
// wrapped.
func (r *Registry) Restore() {
	for len(r.patches) > 0 {
		p := r.patches[len(r.patches)-1]
		r.patches = r.patches[:len(r.patches)-1]
		r.bindings[p.key] = p.original
	}
}

// Func returns the current binding for key as an ordinary value to be
// type-asserted by the caller, or false when the key is unbound.
func (r *Registry) Func(key string) (any, bool) {
	v, ok := r.bindings[key]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// Call invokes the current binding for key and returns its results. It
// serves call sites that do not care about static types; typed call sites
// should prefer Func or Handle.
func (r *Registry) Call(key string, args ...any) ([]any, error) {
	v, ok := r.bindings[key]
	if !ok {
		return nil, fmt.Errorf("no binding for %q", key)
	}
	typ := v.Type()
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil && i < typ.NumIn() {
			in[i] = reflect.Zero(typ.In(i))
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	out := v.Call(in)
	results := make([]any, len(out))
	for i, o := range out {
		results[i] = o.Interface()
	}
	return results, nil
}

// Handle returns a function of the same type as proto that looks the key
// up on every call, so the call site observes installs and restores
// without re-fetching the binding. When the key is unbound at call time the
// handle returns zero values. proto must be a function value or typed nil;
// anything else yields nil.
func (r *Registry) Handle(key string, proto any) any {
	typ := reflect.TypeOf(proto)
	if typ == nil || typ.Kind() != reflect.Func {
		return nil
	}
	return reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
		v, ok := r.bindings[key]
		if !ok {
			out := make([]reflect.Value, typ.NumOut())
			for i := range out {
				out[i] = reflect.Zero(typ.Out(i))
			}
			return out
		}
		if typ.IsVariadic() {
			return v.CallSlice(args)
		}
		return v.Call(args)
	}).Interface()
}

// selectNames filters candidate member names: an explicit include list
// keeps its own order, otherwise all discovered names pass, minus the
// exclude set in both cases. Included names that resolve to nothing are
// dropped later by install.
func selectNames(all, include, exclude []string) []string {
	drop := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		drop[name] = true
	}
	candidates := all
	if include != nil {
		candidates = include
	}
	out := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if drop[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}
