package alloy_test

import (
	"testing"

	"github.com/alloydi/alloy"
	"github.com/alloydi/alloy/mock"
	"github.com/stretchr/testify/suite"
)

type GraphTestSuite struct {
	suite.Suite
}

func (s *GraphTestSuite) TestDotGraphListsLifecycleEdges() {
	c := alloy.New()
	s.NoError(mock.RegisterCore(c, nil))

	dot, err := c.DotGraph()
	s.NoError(err)
	s.Contains(dot, "digraph alloy")
	s.Contains(dot, `"*mock.Database"`)
	s.Contains(dot, `"*mock.CacheService"`)
	s.Contains(dot, `"*mock.CacheService" -> "*mock.Database"`)
	// Config is not lifecycle-managed; it never appears as a node.
	s.NotContains(dot, `"*mock.Config";`)
}

func (s *GraphTestSuite) TestEdgeThroughNonLifecycleIntermediary() {
	c := alloy.New()
	rec := mock.NewRecorder()

	// Worker -> Counter (plain) -> Database (lifecycle): the startup
	// graph still orders Database before Worker.
	s.NoError(c.Register(alloy.Declaration{
		Key:       alloy.Key[*mock.Database](),
		Scope:     alloy.ScopeSingleton,
		Lifecycle: true,
		Build:     func([]any) (any, error) { return &mock.Database{Recorder: rec}, nil },
	}))
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Counter](),
		Scope:        alloy.ScopeTransient,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.Database]()},
		Build:        func([]any) (any, error) { return &mock.Counter{}, nil },
	}))
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Worker](),
		Scope:        alloy.ScopeSingleton,
		Lifecycle:    true,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.Counter]()},
		Build:        func([]any) (any, error) { return &mock.Worker{Recorder: rec}, nil },
	}))

	dot, err := c.DotGraph()
	s.NoError(err)
	s.Contains(dot, `"*mock.Worker" -> "*mock.Database"`)
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}
