package di

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type greeter struct{ name string }

var greeterToken = NewToken[*greeter]("test.greeter")

func TestTokenFactoryIsSingleton(t *testing.T) {
	c := NewContainer()
	c.Register("name", "vault")

	calls := 0
	RegisterToken(c, greeterToken, func(sr ServiceRegistry) *greeter {
		calls++
		return &greeter{name: sr.Get("name").(string)}
	})

	var wg sync.WaitGroup
	got := make([]*greeter, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = GetToken(c, greeterToken)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, g := range got {
		assert.Same(t, got[0], g)
	}
	assert.Equal(t, "vault", got[0].name)
}

func TestGetUnknownPanics(t *testing.T) {
	c := NewContainer()
	assert.False(t, c.Has("missing"))
	assert.Panics(t, func() { c.Get("missing") })
}
