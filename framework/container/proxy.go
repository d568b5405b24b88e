package container

// Proxy is a lazy handle on a container-managed value. It holds only the
// container, the token and a transform; every access resolves the token and
// applies the transform again, so a long-lived holder never sees a stale
// snapshot and never sees a half-built value.
//
//	repo := container.ResolveProxy(c, RepoClass, func(v any) *Repo { return v.(*Repo) })
//	// ... later, once the graph is up
//	r, err := repo.Get()
type Proxy[T any] struct {
	c     *Container
	token Token
	fn    func(any) T
}

// ResolveProxy returns a Proxy for token. Nothing is resolved until the
// first access.
func ResolveProxy[T any](c *Container, token Token, fn func(any) T) *Proxy[T] {
	return &Proxy[T]{c: c, token: token, fn: fn}
}

// Token returns the token the proxy resolves.
func (p *Proxy[T]) Token() Token { return p.token }

// Get resolves the token and returns fn(value).
func (p *Proxy[T]) Get() (T, error) {
	v, err := p.c.Resolve(p.token)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.fn(v), nil
}

// MustGet is like Get but panics on error.
func (p *Proxy[T]) MustGet() T {
	v, err := p.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Set resolves the token and hands fn(value) to write. Writes through
// pointer or map results land on the live value.
func (p *Proxy[T]) Set(write func(T)) error {
	v, err := p.Get()
	if err != nil {
		return err
	}
	write(v)
	return nil
}
