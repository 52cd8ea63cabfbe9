package trace

import (
	"context"
	"reflect"
)

// Instrument returns fn wrapped so that every call records one api span
// under label. fn may have any signature, variadic included. Arguments,
// results, errors, and panics pass through untouched; the span is still
// recorded when the callable panics. Non-function values are returned
// unchanged.
func (t *Tracer) Instrument(label string, fn any, meta Meta) any {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fn
	}
	return t.instrumentValue(label, v, meta).Interface()
}

// instrumentValue wraps a callable reflect value in a same-signature
// recorder.
func (t *Tracer) instrumentValue(label string, v reflect.Value, meta Meta) reflect.Value {
	typ := v.Type()
	return reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
		sc := t.Begin(KindAPI, label, meta)
		defer sc.End()
		if typ.IsVariadic() {
			return v.CallSlice(args)
		}
		return v.Call(args)
	})
}

// InstrumentContext wraps a context-aware callable. Wall time covers the
// whole interval including time spent blocked or awaiting cancellation;
// CPU time covers only time the process actually executed. The callable's
// error, ctx.Err() included, is returned unchanged after the span is
// recorded.
func (t *Tracer) InstrumentContext(label string, fn func(context.Context) error, meta Meta) func(context.Context) error {
	return func(ctx context.Context) error {
		sc := t.Begin(KindAPI, label, meta)
		defer sc.End()
		return fn(ctx)
	}
}
