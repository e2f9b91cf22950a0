// Package mock holds shared test components for the alloy container.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/alloydi/alloy"
)

// Recorder captures lifecycle events in order so tests can assert on start
// and stop sequencing.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Core interfaces

type Mailer interface {
	Send(to, body string) error
}

// Config is a leaf singleton with no dependencies.
type Config struct {
	Env string
}

// Database is a lifecycle-managed component depending on Config.
type Database struct {
	Config    *Config
	Recorder  *Recorder
	Connected bool

	FailInit    bool
	FailDispose bool
}

func (d *Database) Initialize(ctx context.Context) error {
	if d.FailInit {
		return fmt.Errorf("connection refused")
	}
	d.Connected = true
	if d.Recorder != nil {
		d.Recorder.Record("database:init")
	}
	return nil
}

func (d *Database) Dispose(ctx context.Context) error {
	d.Connected = false
	if d.Recorder != nil {
		d.Recorder.Record("database:dispose")
	}
	if d.FailDispose {
		return fmt.Errorf("close failed")
	}
	return nil
}

// CacheService is a lifecycle-managed component depending on Database.
type CacheService struct {
	DB       *Database
	Recorder *Recorder

	FailInit    bool
	FailDispose bool
}

func (c *CacheService) Initialize(ctx context.Context) error {
	if c.FailInit {
		return fmt.Errorf("cache warmup failed")
	}
	if c.Recorder != nil {
		c.Recorder.Record("cache:init")
	}
	return nil
}

func (c *CacheService) Dispose(ctx context.Context) error {
	if c.Recorder != nil {
		c.Recorder.Record("cache:dispose")
	}
	if c.FailDispose {
		return fmt.Errorf("cache flush failed")
	}
	return nil
}

// Worker is a lifecycle-managed component depending on CacheService.
type Worker struct {
	Cache    *CacheService
	Recorder *Recorder

	FailInit bool
}

func (w *Worker) Initialize(ctx context.Context) error {
	if w.FailInit {
		return fmt.Errorf("worker failed to start")
	}
	if w.Recorder != nil {
		w.Recorder.Record("worker:init")
	}
	return nil
}

func (w *Worker) Dispose(ctx context.Context) error {
	if w.Recorder != nil {
		w.Recorder.Record("worker:dispose")
	}
	return nil
}

// RequestContext is a scoped component carrying per-request state.
type RequestContext struct {
	ID       string
	Recorder *Recorder
	Disposed bool
}

func (r *RequestContext) Initialize(ctx context.Context) error {
	if r.Recorder != nil {
		r.Recorder.Record("request:init")
	}
	return nil
}

func (r *RequestContext) Dispose(ctx context.Context) error {
	r.Disposed = true
	if r.Recorder != nil {
		r.Recorder.Record("request:dispose")
	}
	return nil
}

// SMTPMailer and MemoryMailer are competing adapters selected by profile.

type SMTPMailer struct {
	Sent []string
}

func (m *SMTPMailer) Send(to, body string) error {
	m.Sent = append(m.Sent, to)
	return nil
}

type MemoryMailer struct {
	Sent []string
}

func (m *MemoryMailer) Send(to, body string) error {
	m.Sent = append(m.Sent, to)
	return nil
}

// Counter is a plain transient component; each build increments the shared
// counter so tests can count distinct constructions.
type Counter struct {
	N int
}

// RegisterCore wires Config, Database and CacheService into c the way most
// tests need them: Config singleton, Database and CacheService
// lifecycle-managed singletons.
func RegisterCore(c *alloy.Container, rec *Recorder) error {
	if err := c.Register(alloy.Declaration{
		Key:   alloy.Key[*Config](),
		Scope: alloy.ScopeSingleton,
		Build: func([]any) (any, error) {
			return &Config{Env: "test"}, nil
		},
	}); err != nil {
		return err
	}
	if err := c.Register(alloy.Declaration{
		Key:          alloy.Key[*Database](),
		Scope:        alloy.ScopeSingleton,
		Lifecycle:    true,
		Dependencies: []alloy.ComponentKey{alloy.Key[*Config]()},
		Build: func(deps []any) (any, error) {
			return &Database{Config: deps[0].(*Config), Recorder: rec}, nil
		},
	}); err != nil {
		return err
	}
	return c.Register(alloy.Declaration{
		Key:          alloy.Key[*CacheService](),
		Scope:        alloy.ScopeSingleton,
		Lifecycle:    true,
		Dependencies: []alloy.ComponentKey{alloy.Key[*Database]()},
		Build: func(deps []any) (any, error) {
			return &CacheService{DB: deps[0].(*Database), Recorder: rec}, nil
		},
	})
}
