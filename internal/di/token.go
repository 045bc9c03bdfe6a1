package di

// Token names a service and carries its type.
type Token[T any] struct {
	name string
}

// NewToken creates a token for name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registration key.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory for tok.
func RegisterToken[T any](c Container, tok Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(tok.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves tok from sr.
func GetToken[T any](sr ServiceRegistry, tok Token[T]) T {
	return sr.Get(tok.name).(T)
}
