package alloy_test

import (
	"context"
	"testing"

	"github.com/alloydi/alloy"
	"github.com/alloydi/alloy/mock"
	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func (s *ValidatorTestSuite) TestValidRegistryPasses() {
	c := alloy.New()
	s.NoError(mock.RegisterCore(c, nil))
	s.NoError(c.Validate())
}

func (s *ValidatorTestSuite) TestMissingDependencyFailsEarly() {
	c := alloy.New()
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.CacheService](),
		Scope:        alloy.ScopeSingleton,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.Database]()},
		Build: func(deps []any) (any, error) {
			return &mock.CacheService{DB: deps[0].(*mock.Database)}, nil
		},
	}))

	var notFound *alloy.NotFoundError
	s.ErrorAs(c.Validate(), &notFound)
}

func (s *ValidatorTestSuite) TestDirectCaptiveDependency() {
	c := alloy.New()
	s.NoError(c.Register(alloy.Declaration{
		Key:   alloy.Key[*mock.RequestContext](),
		Scope: alloy.ScopeScoped,
		Build: func([]any) (any, error) { return &mock.RequestContext{}, nil },
	}))
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Database](),
		Scope:        alloy.ScopeSingleton,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.RequestContext]()},
		Build:        func([]any) (any, error) { return &mock.Database{}, nil },
	}))

	err := c.Validate()
	var captive *alloy.CaptiveDependencyError
	s.ErrorAs(err, &captive)
	s.Contains(captive.Singleton, "Database")
	s.Contains(captive.Scoped, "RequestContext")
}

func (s *ValidatorTestSuite) TestTransitiveCaptiveDependency() {
	c := alloy.New()
	s.NoError(c.Register(alloy.Declaration{
		Key:   alloy.Key[*mock.RequestContext](),
		Scope: alloy.ScopeScoped,
		Build: func([]any) (any, error) { return &mock.RequestContext{}, nil },
	}))
	// Transient in the middle: singleton -> transient -> scoped still
	// captures the scoped instance inside the singleton's object graph.
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Counter](),
		Scope:        alloy.ScopeTransient,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.RequestContext]()},
		Build:        func([]any) (any, error) { return &mock.Counter{}, nil },
	}))
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Database](),
		Scope:        alloy.ScopeSingleton,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.Counter]()},
		Build:        func([]any) (any, error) { return &mock.Database{}, nil },
	}))

	err := c.Validate()
	var captive *alloy.CaptiveDependencyError
	s.ErrorAs(err, &captive)
	s.Contains(captive.Singleton, "Database")
	s.Contains(captive.Scoped, "RequestContext")
}

func (s *ValidatorTestSuite) TestLifecycleCycleRejectedBeforeStart() {
	c := alloy.New()
	rec := mock.NewRecorder()

	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.Database](),
		Scope:        alloy.ScopeSingleton,
		Lifecycle:    true,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.CacheService]()},
		Build:        func([]any) (any, error) { return &mock.Database{Recorder: rec}, nil },
	}))
	s.NoError(c.Register(alloy.Declaration{
		Key:          alloy.Key[*mock.CacheService](),
		Scope:        alloy.ScopeSingleton,
		Lifecycle:    true,
		Dependencies: []alloy.ComponentKey{alloy.Key[*mock.Database]()},
		Build:        func([]any) (any, error) { return &mock.CacheService{Recorder: rec}, nil },
	}))

	var cycle *alloy.CircularDependencyError
	s.ErrorAs(c.Validate(), &cycle)
	s.Len(cycle.Keys, 2, "the unresolved set names both components")

	s.ErrorAs(c.Start(context.Background()), &cycle)
	s.Empty(rec.Events(), "nothing is initialized when the graph is cyclic")
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
