package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	grammarschool "github.com/Conceptual-Machines/grammar-school-go"
	"github.com/Conceptual-Machines/grammar-school-go/registry"
	"github.com/Conceptual-Machines/grammar-school-go/resolver"
)

type track struct {
	name  string
	clips []string
}

func num(s string) grammarschool.Value {
	return grammarschool.Value{Kind: grammarschool.ValueNumber, Num: decimal.RequireFromString(s)}
}

func str(s string) grammarschool.Value {
	return grammarschool.Value{Kind: grammarschool.ValueString, Str: s}
}

func funcRef(name string) grammarschool.Value {
	return grammarschool.Value{Kind: grammarschool.ValueFunc, Str: name}
}

func callOf(c *grammarschool.Call) grammarschool.Value {
	return grammarschool.Value{Kind: grammarschool.ValueCall, Call: c}
}

func kw(name string, v grammarschool.Value) grammarschool.Arg {
	return grammarschool.Arg{Name: name, Value: v}
}

func pos(v grammarschool.Value) grammarschool.Arg {
	return grammarschool.Arg{Value: v}
}

func call(name string, args ...grammarschool.Arg) *grammarschool.Call {
	return &grammarschool.Call{Name: name, Args: args}
}

// plan resolves one chain of calls and fails the test on any
// resolution problem, so execution tests only see runtime behavior.
func plan(t *testing.T, reg *registry.Registry, calls ...*grammarschool.Call) []resolver.ResolvedCall {
	t.Helper()
	resolved, err := resolver.Resolve([]*grammarschool.CallChain{{Calls: calls}}, reg)
	assert.NoError(t, err)
	return resolved
}

func newSessionRegistry(t *testing.T, log *[]string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.MustRegister("track", func(name string) *track {
		*log = append(*log, "track:"+name)
		return &track{name: name}
	}, registry.Param{Name: "name"})
	reg.MustRegister("add_clip", func(tr *track, name string, loop bool) *track {
		*log = append(*log, "clip:"+name)
		tr.clips = append(tr.clips, name)
		return tr
	},
		registry.Receiver(),
		registry.Param{Name: "name"},
		registry.Param{Name: "loop", Default: registry.DefaultOf(false)},
	)
	reg.MustRegister("tempo", func(bpm float64) float64 {
		*log = append(*log, fmt.Sprintf("tempo:%g", bpm))
		return bpm
	}, registry.Param{Name: "bpm"})
	reg.MustRegister("beat", func(n int) float64 {
		*log = append(*log, fmt.Sprintf("beat:%d", n))
		return float64(n) * 30
	}, registry.Param{Name: "n"})
	reg.MustRegister("mute", func() error {
		*log = append(*log, "mute")
		return nil
	})
	return reg
}

func TestRunChain(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	calls := plan(t, reg,
		call("track", kw("name", str("Bass"))),
		call("add_clip", pos(str("intro"))),
		call("add_clip", pos(str("verse"))),
	)

	val, n, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	tr, ok := val.(*track)
	assert.True(t, ok)
	assert.Equal(t, "Bass", tr.name)
	assert.Equal(t, []string{"intro", "verse"}, tr.clips)
	assert.Equal(t, []string{"track:Bass", "clip:intro", "clip:verse"}, log)
}

func TestRunReturnsLastValue(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	calls := plan(t, reg,
		call("track", kw("name", str("A"))),
		call("tempo", pos(num("120"))),
	)

	val, n, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 120.0, val.(float64))
}

func TestRunReceiverComesFromPreviousCall(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	// tempo sits between track and add_clip, so add_clip receives
	// tempo's float64 and the binding fails at run time.
	calls := plan(t, reg,
		call("track", kw("name", str("A"))),
		call("tempo", pos(num("90"))),
		call("add_clip", pos(str("x"))),
	)

	_, n, err := New(reg).Run(context.Background(), calls)
	assert.Equal(t, 2, n)
	assert.IsError(t, err, ErrExecution)

	var ee *ExecutionError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, "add_clip", ee.Method)
	assert.Equal(t, 2, ee.CallIndex)
	assert.Contains(t, ee.Err.Error(), "receiver")
}

func TestRunExactIntegers(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("transpose", func(semitones int8) int8 { return semitones * 2 },
		registry.Param{Name: "semitones"})

	tests := []struct {
		name    string
		value   string
		want    int8
		wantErr string
	}{
		{name: "integer", value: "3", want: 6},
		{name: "integral float", value: "4.0", want: 8},
		{name: "fractional", value: "2.5", wantErr: "2.5 is not a whole number"},
		{name: "overflow", value: "200", wantErr: "200 does not fit in int8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := plan(t, reg, call("transpose", pos(num(tt.value))))
			val, _, err := New(reg).Run(context.Background(), calls)
			if tt.wantErr != "" {
				assert.IsError(t, err, ErrExecution)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, val.(int8))
		})
	}
}

func TestRunDecimalParam(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("estimate", func(days decimal.Decimal) decimal.Decimal { return days },
		registry.Param{Name: "days"})

	calls := plan(t, reg, call("estimate", pos(num("2.5"))))
	val, _, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.True(t, val.(decimal.Decimal).Equal(decimal.RequireFromString("2.5")))
}

func TestRunUUIDParam(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("assign", func(id uuid.UUID) string { return id.String() },
		registry.Param{Name: "id"})

	calls := plan(t, reg, call("assign", pos(str("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))))
	val, _, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", val.(string))

	calls = plan(t, reg, call("assign", pos(str("not-a-uuid"))))
	_, _, err = New(reg).Run(context.Background(), calls)
	assert.IsError(t, err, ErrExecution)
	assert.Contains(t, err.Error(), "invalid UUID")
}

func TestRunFuncHandle(t *testing.T) {
	var fired []string
	reg := registry.New()
	reg.MustRegister("mark", func(label string) error {
		fired = append(fired, label)
		return nil
	}, registry.Param{Name: "label"})
	reg.MustRegister("on_beat", func(ctx context.Context, handler grammarschool.Func) error {
		_, err := handler(ctx, grammarschool.StringValue("tick", grammarschool.Position{}))
		return err
	}, registry.Param{Name: "handler"})

	calls := plan(t, reg, call("on_beat", kw("handler", funcRef("mark"))))
	_, n, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"tick"}, fired)
}

func TestRunFuncHandleDispatchError(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("mark", func(label string) error { return nil },
		registry.Param{Name: "label"})
	reg.MustRegister("on_beat", func(ctx context.Context, handler grammarschool.Func) error {
		_, err := handler(ctx) // mark needs a label
		return err
	}, registry.Param{Name: "handler"})

	calls := plan(t, reg, call("on_beat", kw("handler", funcRef("mark"))))
	_, _, err := New(reg).Run(context.Background(), calls)
	assert.IsError(t, err, ErrExecution)
	assert.IsError(t, err, resolver.ErrBadArguments)
}

func TestRunFuncHandleIntoAnyParam(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("noop", func() error { return nil })
	var got any
	reg.MustRegister("inspect", func(f any) error {
		got = f
		return nil
	}, registry.Param{Name: "f", Kind: registry.KindFunc})

	calls := plan(t, reg, call("inspect", pos(funcRef("noop"))))
	_, _, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	_, ok := got.(grammarschool.Func)
	assert.True(t, ok)
}

func TestRunNestedCalls(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	calls := plan(t, reg, call("tempo", kw("bpm", callOf(call("beat", pos(num("4")))))))

	val, n, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 120.0, val.(float64))
	assert.Equal(t, []string{"beat:4", "tempo:120"}, log)
}

func TestRunNestedResultNarrowing(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	reg.MustRegister("repeat", func(times int) int { return times },
		registry.Param{Name: "times"})

	// beat returns float64; repeat takes int. 4*30 = 120 is exact.
	calls := plan(t, reg, call("repeat", kw("times", callOf(call("beat", pos(num("4")))))))
	val, _, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, 120, val.(int))

	reg.MustRegister("half", func() float64 { return 0.5 })
	calls = plan(t, reg, call("repeat", kw("times", callOf(call("half")))))
	_, _, err = New(reg).Run(context.Background(), calls)
	assert.IsError(t, err, ErrExecution)
	assert.Contains(t, err.Error(), "not a whole number")
}

func TestRunNestedFailureNamesInnerCall(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	errBoom := errors.New("kaput")
	reg.MustRegister("boom", func() (float64, error) { return 0, errBoom })

	c := call("tempo", kw("bpm", callOf(call("boom"))))
	calls := plan(t, reg, c)
	_, n, err := New(reg).Run(context.Background(), calls)
	assert.Equal(t, 0, n)
	assert.IsError(t, err, ErrExecution)
	assert.IsError(t, err, errBoom)

	var ee *ExecutionError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, "boom", ee.Method)
	assert.Equal(t, 0, ee.CallIndex)
}

func TestRunDomainError(t *testing.T) {
	errNoInput := errors.New("no input connected")
	reg := registry.New()
	reg.MustRegister("record", func() error { return errNoInput })

	c := call("record")
	c.Pos = grammarschool.Position{Line: 3, Column: 1, Offset: 40}
	calls := plan(t, reg, c)

	val, n, err := New(reg).Run(context.Background(), calls)
	assert.Zero(t, val)
	assert.Equal(t, 0, n)
	assert.IsError(t, err, ErrExecution)
	assert.IsError(t, err, errNoInput)
	assert.Equal(t, "call 1 (record) failed at line 3, column 1: no input connected", err.Error())
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := registry.New()
	ran := 0
	reg.MustRegister("stop", func() error {
		ran++
		cancel()
		return nil
	})

	calls := plan(t, reg, call("stop"), call("stop"))
	_, n, err := New(reg).Run(ctx, calls)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, n)
	assert.IsError(t, err, ErrExecution)
	assert.IsError(t, err, context.Canceled)
}

func TestRunCallBudget(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	calls := plan(t, reg, call("mute"), call("mute"), call("mute"))

	ip := New(reg)
	ip.MaxCalls = 2
	_, n, err := ip.Run(context.Background(), calls)
	assert.Equal(t, 2, n)
	assert.IsError(t, err, ErrCallBudget)
	assert.Equal(t, []string{"mute", "mute"}, log)

	// Nested calls count against the same budget.
	log = nil
	calls = plan(t, reg, call("tempo", kw("bpm", callOf(call("beat", pos(num("4")))))))
	ip.MaxCalls = 1
	_, n, err = ip.Run(context.Background(), calls)
	assert.Equal(t, 0, n)
	assert.IsError(t, err, ErrCallBudget)
}

func TestRunArgsMapMethod(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)

	var titles []string
	var estimates []int64
	reg.MustRegister("create_task", func(args grammarschool.Args) error {
		titles = append(titles, args.String("title", ""))
		estimates = append(estimates, args.Int64("estimate", 0))
		return nil
	})

	calls := plan(t, reg, call("create_task",
		kw("title", str("Ship it")),
		kw("estimate", callOf(call("beat", pos(num("4"))))),
	))
	_, _, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Ship it"}, titles)
	assert.Equal(t, []int64{120}, estimates)
}

func TestRunValueAndAnyParams(t *testing.T) {
	reg := registry.New()
	var kind grammarschool.ValueKind
	var raw any
	reg.MustRegister("probe", func(v grammarschool.Value, x any) error {
		kind = v.Kind
		raw = x
		return nil
	}, registry.Param{Name: "v"}, registry.Param{Name: "x"})

	calls := plan(t, reg, call("probe", pos(str("hello")), pos(num("3"))))
	_, _, err := New(reg).Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Equal(t, grammarschool.ValueString, kind)
	d, ok := raw.(decimal.Decimal)
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(3)))
}

func TestRunTrace(t *testing.T) {
	var log []string
	reg := newSessionRegistry(t, &log)
	calls := plan(t, reg, call("track", kw("name", str("A"))))

	var buf bytes.Buffer
	ip := New(reg)
	ip.Trace = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, _, err := ip.Run(context.Background(), calls)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "method=track")
}

func TestRunEmptyPlan(t *testing.T) {
	reg := registry.New()
	val, n, err := New(reg).Run(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Zero(t, val)
}
