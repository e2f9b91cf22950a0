package alloy_test

import (
	"sync"
	"testing"

	"github.com/alloydi/alloy"
	"github.com/alloydi/alloy/mock"
	"github.com/stretchr/testify/suite"
)

type ConcurrentTestSuite struct {
	suite.Suite
}

func (s *ConcurrentTestSuite) TestConcurrentSingletonResolution() {
	c := alloy.New()
	s.NoError(mock.RegisterCore(c, nil))

	const workers = 16
	var wg sync.WaitGroup
	results := make([]*mock.Database, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = alloy.Resolve[*mock.Database](c)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		s.NoError(errs[i])
		s.NotNil(results[i])
		// First writer wins; every caller sees the identical instance
		// even when construction raced.
		s.Same(results[0], results[i])
	}
}

func (s *ConcurrentTestSuite) TestConcurrentTransientResolution() {
	c := alloy.New()
	var mu sync.Mutex
	builds := 0
	s.NoError(c.Register(alloy.Declaration{
		Key:   alloy.Key[*mock.Counter](),
		Scope: alloy.ScopeTransient,
		Build: func([]any) (any, error) {
			mu.Lock()
			builds++
			n := builds
			mu.Unlock()
			return &mock.Counter{N: n}, nil
		},
	}))

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*mock.Counter, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = alloy.Resolve[*mock.Counter](c)
		}(i)
	}
	wg.Wait()

	seen := make(map[*mock.Counter]bool)
	for _, r := range results {
		s.NotNil(r)
		s.False(seen[r], "transient resolutions must be distinct")
		seen[r] = true
	}
	s.Equal(workers, builds)
}

func (s *ConcurrentTestSuite) TestConcurrentCycleDetectionIsolated() {
	c := alloy.New()
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Database](),
		Scope:        alloy.ScopeTransient,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.Database]()},
		Build:        func([]any) (any, error) { return &mock.Database{}, nil },
	}))
	s.NoError(c.Register(alloy.Declaration{
		Key:   alloy.Key[*mock.Config](),
		Scope: alloy.ScopeSingleton,
		Build: func([]any) (any, error) { return &mock.Config{}, nil },
	}))

	// Self-cycles on one goroutine must not poison resolution chains on
	// others.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := c.Resolve(alloy.Key[*mock.Database]())
				var cycle *alloy.CircularDependencyError
				s.ErrorAs(err, &cycle)
				return
			}
			_, err := alloy.Resolve[*mock.Config](c)
			s.NoError(err)
		}(i)
	}
	wg.Wait()
}

func TestConcurrentSuite(t *testing.T) {
	suite.Run(t, new(ConcurrentTestSuite))
}
