package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// Env is the capability surface handed to one hook for one task.
type Env interface {
	// Context is cancelled when the build is.
	Context() context.Context

	// Logger is tagged with the component name.
	Logger() *slog.Logger

	// FS opens a filesystem namespace. Ungranted namespaces yield a violation.
	FS(ns Namespace) (*Dir, error)

	// Now reads the wall clock. Without the clock grant it yields a violation.
	Now() (time.Time, error)
}

// Mounts maps namespaces to host directories.
//
// Cache is a parent directory: each component gets its own subdirectory so
// hooks cannot read each other's cache.
type Mounts struct {
	Tmp   string
	Cache string
	Build string
}

func (m Mounts) path(component string, ns Namespace) (string, error) {
	var p string
	switch ns {
	case NamespaceTmp:
		p = m.Tmp
	case NamespaceCache:
		if m.Cache != "" {
			p = filepath.Join(m.Cache, component)
		}
	case NamespaceBuild:
		p = m.Build
	default:
		return "", fmt.Errorf("unknown namespace %q", ns)
	}
	if p == "" {
		return "", fmt.Errorf("namespace %q is not mounted", ns)
	}
	return p, nil
}

// Instance is the host side of an Env. It is created for a single hook
// invocation and closed afterwards.
type Instance struct {
	ctx       context.Context
	logger    *slog.Logger
	component string
	grants    Grants
	mounts    Mounts
	clock     func() time.Time

	mu         sync.Mutex
	dirs       []*Dir
	violations []error
}

// Option configures an Instance.
type Option func(*Instance)

// WithClock replaces the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(i *Instance) { i.clock = clock }
}

// WithLogger sets the parent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Instance) { i.logger = logger }
}

// NewInstance creates a fresh sandbox for component with the given grants.
func NewInstance(ctx context.Context, component string, grants Grants, mounts Mounts, opts ...Option) *Instance {
	i := &Instance{
		ctx:       ctx,
		logger:    slog.Default(),
		component: component,
		grants:    grants,
		mounts:    mounts,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With(slog.String("plugin", component))
	return i
}

func (i *Instance) Context() context.Context { return i.ctx }

func (i *Instance) Logger() *slog.Logger { return i.logger }

func (i *Instance) FS(ns Namespace) (*Dir, error) {
	if !i.grants.Allows(FS(ns)) {
		return nil, i.violate(FS(ns))
	}
	hostPath, err := i.mounts.path(i.component, ns)
	if err != nil {
		return nil, err
	}
	d, err := openDir(i.component, ns, hostPath, i.record)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	i.dirs = append(i.dirs, d)
	i.mu.Unlock()
	return d, nil
}

func (i *Instance) Now() (time.Time, error) {
	if !i.grants.Allows(CapClock) {
		return time.Time{}, i.violate(CapClock)
	}
	return i.clock(), nil
}

func (i *Instance) violate(c Capability) error {
	return i.record(Violation(i.component, c, nil))
}

func (i *Instance) record(err error) error {
	i.mu.Lock()
	i.violations = append(i.violations, err)
	i.mu.Unlock()
	return err
}

// Violation returns the first capability violation recorded by this
// instance, or nil.
func (i *Instance) Violation() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.violations) == 0 {
		return nil
	}
	return i.violations[0]
}

// Close releases every namespace opened through this instance.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	var errs []error
	for _, d := range i.dirs {
		errs = append(errs, d.Close())
	}
	i.dirs = nil
	return errors.Join(errs...)
}
