package container_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-kernel/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type trace struct{ calls []string }

func (t *trace) add(s string) { t.calls = append(t.calls, s) }

type B struct {
	tr  *trace
	msg string
}

func (b *B) Start() map[string]any {
	b.tr.add("B.Start")
	b.msg = "b"
	return map[string]any{"msg": b.msg}
}

type A struct {
	tr *trace
	b  *B
}

func (a *A) Start() map[string]any {
	a.tr.add("A.Start")
	a.b.msg += "begin"
	return map[string]any{"msg": a.b.msg}
}

// graph registers A before B so ordering comes from dependencies alone.
func graph(t *testing.T, lc container.Lifecycle) (*container.Container, *trace) {
	t.Helper()
	tr := &trace{}
	c := container.New()
	c.Instance(container.TypeKey[*trace](), tr)

	aCls := injectable(func(tr *trace, b *B) *A { return &A{tr: tr, b: b} })
	bCls := injectable(func(tr *trace) *B { return &B{tr: tr} })
	lc.Start.With().Method(aCls, "Start")
	lc.Start.With().Method(bCls, "Start")

	c.Provide(aCls)
	c.Register(container.TypeKey[*B](), bCls)
	return c, tr
}

// ── Execute ───────────────────────────────────────────────────────────────────

func TestExecute_DependenciesFirstAndDeepMerge(t *testing.T) {
	lc := container.NewLifecycle()
	c, tr := graph(t, lc)

	out, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"B.Start", "A.Start"}, tr.calls)
	assert.Equal(t, "bbegin", out["msg"])
}

func TestExecute_EachNodeOncePerPassAndRerunsAcrossCalls(t *testing.T) {
	lc := container.NewLifecycle()
	c, tr := graph(t, lc)

	_, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"B.Start", "A.Start", "B.Start", "A.Start"}, tr.calls)
}

func TestExecute_OtherPhaseRunsNothing(t *testing.T) {
	lc := container.NewLifecycle()
	c, tr := graph(t, lc)

	out, err := c.Execute(context.Background(), lc.Stop, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, tr.calls)
}

func TestExecute_InputSeedsOutput(t *testing.T) {
	lc := container.NewLifecycle()
	c, _ := graph(t, lc)
	input := map[string]any{"env": "test", "msg": "seed"}

	out, err := c.Execute(context.Background(), lc.Start, input)
	require.NoError(t, err)
	assert.Equal(t, "test", out["env"])
	assert.Equal(t, "bbegin", out["msg"])
	assert.Equal(t, "seed", input["msg"])
}

func TestExecute_NilDecorator(t *testing.T) {
	c := container.New()
	_, err := c.Execute(context.Background(), nil, nil)
	assert.Error(t, err)
}

// ── Inheritance ───────────────────────────────────────────────────────────────

type Base struct{ tr *trace }

func (b *Base) Open() { b.tr.add("Base.Open") }

type Derived struct{ Base }

func (d *Derived) Serve() { d.tr.add("Derived.Serve") }

func TestExecute_BaseHooksBeforeDerived(t *testing.T) {
	lc := container.NewLifecycle()
	tr := &trace{}
	c := container.New()
	c.Instance(container.TypeKey[*trace](), tr)

	baseCls := injectable(func(tr *trace) *Base { return &Base{tr: tr} })
	derivedCls := injectable(func(tr *trace) *Derived { return &Derived{Base{tr: tr}} }).Extends(baseCls)
	lc.Start.With().Method(baseCls, "Open")
	lc.Start.With().Method(derivedCls, "Serve")
	c.Provide(derivedCls)

	_, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Base.Open", "Derived.Serve"}, tr.calls)
}

// ── Hook parameters and results ───────────────────────────────────────────────

type Server struct {
	tr   *trace
	addr string
}

type started struct {
	Addr   string
	Routes []string
}

func (s *Server) Listen(ctx context.Context, cfg *Config) (started, error) {
	if ctx == nil {
		return started{}, errors.New("no context")
	}
	s.addr = cfg.DSN
	s.tr.add("Server.Listen")
	return started{Addr: s.addr, Routes: []string{"/health"}}, nil
}

func (s *Server) Close() error { return errors.New("close failed") }

func serverGraph(t *testing.T, lc container.Lifecycle) (*container.Container, *container.Class) {
	t.Helper()
	c := container.New()
	c.Instance(container.TypeKey[*trace](), &trace{})
	cls := injectable(func(tr *trace) *Server { return &Server{tr: tr} })
	lc.Start.With().Method(cls, "Listen")
	lc.Stop.With().Method(cls, "Close")
	container.Inject("config").MethodParam(cls, "Listen", 1)
	c.Instance("config", &Config{DSN: ":8080"})
	c.Provide(cls)
	return c, cls
}

func TestExecute_HookParametersAndStructResult(t *testing.T) {
	lc := container.NewLifecycle()
	c, cls := serverGraph(t, lc)

	out, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)

	var got started
	require.NoError(t, out.Decode(&got))
	assert.Equal(t, started{Addr: ":8080", Routes: []string{"/health"}}, got)

	item := c.GetRegistrationItem(cls)
	assert.Contains(t, item.Dependencies, container.Token("config"))
}

func TestExecute_HookErrorPassesThrough(t *testing.T) {
	lc := container.NewLifecycle()
	c, _ := serverGraph(t, lc)

	_, err := c.Execute(context.Background(), lc.Stop, nil)
	require.Error(t, err)
	assert.Equal(t, "close failed", err.Error())
}

func TestExecute_CancelledContextStopsBeforeHook(t *testing.T) {
	lc := container.NewLifecycle()
	c, cls := serverGraph(t, lc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Execute(ctx, lc.Start, nil)
	require.ErrorIs(t, err, context.Canceled)

	srv, err := container.ResolveAs[*Server](c, cls)
	require.NoError(t, err)
	assert.Empty(t, srv.addr)
}

func TestExecute_ResolutionFailureSurfaces(t *testing.T) {
	lc := container.NewLifecycle()
	c := container.New()
	c.Provide(container.NewClass(func() *Plain { return &Plain{} }))

	_, err := c.Execute(context.Background(), lc.Start, nil)
	assert.ErrorIs(t, err, container.ErrNotInjectable)
}

func TestExecute_ListsValuesAndTypedSlices(t *testing.T) {
	lc := container.NewLifecycle()
	c := container.New()
	first := injectable(func() *Foo { return &Foo{} })
	second := injectable(func() *Bar { return &Bar{} })
	c.Provide(first)
	c.Provide(second)
	lc.Start.With().Method(first, "Routes")
	lc.Start.With().Method(second, "Routes")

	out, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/foo", "/bar"}, out["routes"])
}

func (f *Foo) Routes() map[string]any { return map[string]any{"routes": []string{"/foo"}} }

func (b *Bar) Routes() map[string]any { return map[string]any{"routes": []string{"/bar"}} }

// ── Optional collaborators ────────────────────────────────────────────────────

type Cache struct{ tr *trace }

func (c *Cache) Warm() { c.tr.add("Cache.Warm") }

type Service struct {
	tr    *trace
	cache *Cache
}

func (s *Service) Up() map[string]any {
	s.tr.add("Service.Up")
	return map[string]any{"cached": s.cache != nil}
}

func (s *Service) Report(cache *Cache) map[string]any {
	s.tr.add("Service.Report")
	return map[string]any{"reported": cache != nil}
}

func optionalGraph(t *testing.T, lc container.Lifecycle, cacheInjectable bool) (*container.Container, *trace, *container.Class) {
	t.Helper()
	tr := &trace{}
	c := container.New()
	c.Instance(container.TypeKey[*trace](), tr)

	cacheCls := container.NewClass(func(tr *trace) *Cache { return &Cache{tr: tr} })
	if cacheInjectable {
		container.Injectable().Class(cacheCls)
	}
	lc.Start.With().Method(cacheCls, "Warm")

	svcCls := injectable(func(tr *trace, cache *Cache) *Service { return &Service{tr: tr, cache: cache} })
	container.Optional(cacheCls).Param(svcCls, 1)
	lc.Start.With().Method(svcCls, "Up")
	c.Provide(svcCls)
	return c, tr, svcCls
}

func TestExecute_FailedOptionalConstructorDependencyStaysRecovered(t *testing.T) {
	lc := container.NewLifecycle()
	c, tr, svcCls := optionalGraph(t, lc, false)

	svc, err := container.ResolveAs[*Service](c, svcCls)
	require.NoError(t, err)
	assert.Nil(t, svc.cache)

	out, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Service.Up"}, tr.calls)
	assert.Equal(t, false, out["cached"])
}

func TestExecute_ResolvedOptionalDependencyRunsFirst(t *testing.T) {
	lc := container.NewLifecycle()
	c, tr, _ := optionalGraph(t, lc, true)

	out, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cache.Warm", "Service.Up"}, tr.calls)
	assert.Equal(t, true, out["cached"])
}

func TestExecute_FailedOptionalHookParameterStaysRecovered(t *testing.T) {
	lc := container.NewLifecycle()
	tr := &trace{}
	c := container.New()
	c.Instance(container.TypeKey[*trace](), tr)

	cacheCls := container.NewClass(func(tr *trace) *Cache { return &Cache{tr: tr} })
	svcCls := injectable(func(tr *trace) *Service { return &Service{tr: tr} })
	lc.Start.With().Method(svcCls, "Report")
	container.Optional(cacheCls).MethodParam(svcCls, "Report", 0)
	c.Provide(svcCls)

	out, err := c.Execute(context.Background(), lc.Start, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Service.Report"}, tr.calls)
	assert.Equal(t, false, out["reported"])
}
