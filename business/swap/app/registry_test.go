package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fd1az/balancer-connector/business/swap/app/mock"
)

func countingFactory(t *testing.T, calls *int) Factory {
	ctrl := gomock.NewController(t)
	var mu sync.Mutex
	return func(chain, network string) (*Connector, error) {
		mu.Lock()
		*calls++
		mu.Unlock()
		if chain == "bogus" {
			return nil, errors.New("unknown chain")
		}
		cc := mock.NewMockChainContext(ctrl)
		cc.EXPECT().Name().Return(chain + "/" + network).AnyTimes()
		return NewConnector(ConnectorConfig{Chain: cc})
	}
}

func TestRegistryMemoizesPerKey(t *testing.T) {
	var calls int
	r := NewRegistry(countingFactory(t, &calls))

	a, err := r.GetInstance("ethereum", "mainnet")
	require.NoError(t, err)
	b, err := r.GetInstance("Ethereum", "MAINNET")
	require.NoError(t, err)
	assert.Same(t, a, b)

	p, err := r.GetInstance("polygon", "mainnet")
	require.NoError(t, err)
	assert.NotSame(t, a, p)

	s, err := r.GetInstance("ethereum", "sepolia")
	require.NoError(t, err)
	assert.NotSame(t, a, s)

	assert.Equal(t, 3, calls)

	names := []string{}
	for _, c := range r.Instances() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"ethereum/mainnet", "ethereum/sepolia", "polygon/mainnet"}, names)
}

func TestRegistryConcurrentGetInstance(t *testing.T) {
	var calls int
	r := NewRegistry(countingFactory(t, &calls))

	var wg sync.WaitGroup
	got := make([]*Connector, 20)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = r.GetInstance("ethereum", "mainnet")
		}(i)
	}
	wg.Wait()

	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Equal(t, 1, calls)
}

func TestRegistryFactoryErrorNotCached(t *testing.T) {
	var calls int
	r := NewRegistry(countingFactory(t, &calls))

	_, err := r.GetInstance("bogus", "mainnet")
	require.Error(t, err)
	_, err = r.GetInstance("bogus", "mainnet")
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Empty(t, r.Instances())
}
