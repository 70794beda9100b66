package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// HookSpec is one configured entry of the hook chain.
type HookSpec struct {
	Ref
	Grants  sandbox.Grants
	Options map[string]any
}

type linkedHook struct {
	meta    Metadata
	grants  sandbox.Grants
	newHook HookConstructor
}

// PluginHost runs the ordered lifecycle hook chain. Hooks run one after the
// other, each receiving the previous hook's output, and each invocation gets
// a fresh hook instance inside a fresh sandbox holding only its grants.
type PluginHost struct {
	chain  []linkedHook
	mounts sandbox.Mounts
	logger *slog.Logger
	opts   []sandbox.Option
}

// LinkHooks resolves and links every spec in declaration order. A hook that
// is unknown, imports a capability it was not granted, or rejects its
// options is a link error.
func LinkHooks(reg *Registry, specs []HookSpec, mounts sandbox.Mounts, opts ...sandbox.Option) (*PluginHost, error) {
	h := &PluginHost{mounts: mounts, logger: slog.Default(), opts: opts}
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		id := spec.Name + "@" + spec.Version
		c, err := reg.Get(spec.Name, spec.Version)
		if err != nil {
			return nil, classify(ErrHookLink, id, OpLink, err)
		}
		id = c.Metadata.ID()
		if c.Metadata.Kind != KindHook {
			return nil, classify(ErrHookLink, id, OpLink, fmt.Errorf("%s is a %s, not a hook", id, c.Metadata.Kind))
		}
		if seen[c.Metadata.Name] {
			return nil, classify(ErrHookLink, id, OpLink, fmt.Errorf("hook %s listed twice", c.Metadata.Name))
		}
		seen[c.Metadata.Name] = true

		if err := spec.Grants.Validate(); err != nil {
			return nil, classify(ErrHookLink, id, OpLink, err)
		}
		if missing := spec.Grants.Missing(c.Metadata.Imports); len(missing) > 0 {
			return nil, classify(ErrHookLink, id, OpLink, fmt.Errorf("imports %v not granted", missing))
		}

		newHook, err := safeLoad(func() (HookConstructor, error) { return c.loadHook(spec.Options) })
		if err != nil {
			return nil, classify(ErrHookLink, id, OpLink, err)
		}
		h.chain = append(h.chain, linkedHook{meta: c.Metadata, grants: spec.Grants.Restrict(c.Metadata.Imports), newHook: newHook})
	}
	return h, nil
}

// WithLogger sets a custom logger. Hooks log through a child of it.
func (h *PluginHost) WithLogger(logger *slog.Logger) *PluginHost {
	h.logger = logger
	return h
}

// Chain returns the hook identities in execution order.
func (h *PluginHost) Chain() []incremental.Component {
	out := make([]incremental.Component, 0, len(h.chain))
	for _, lh := range h.chain {
		out = append(out, incremental.Component{Name: lh.meta.Name, Version: lh.meta.Version})
	}
	return out
}

// Len returns the number of hooks in the chain.
func (h *PluginHost) Len() int { return len(h.chain) }

// PreRender runs every hook's PreRender stage over a.
func (h *PluginHost) PreRender(ctx context.Context, a article.Article) (article.Article, error) {
	cur := a.Clone()
	for _, lh := range h.chain {
		err := h.invoke(ctx, lh, OpPreRender, a.Path, func(hook Hook, env sandbox.Env) error {
			next, err := hook.PreRender(env, cur.Clone())
			if err != nil {
				return err
			}
			cur = next
			return nil
		})
		if err != nil {
			return article.Article{}, err
		}
	}
	return cur, nil
}

// PreRenderIndex runs every hook's index stage over the ordered previews.
func (h *PluginHost) PreRenderIndex(ctx context.Context, previews []article.Preview) ([]article.Preview, error) {
	cur := slices.Clone(previews)
	for _, lh := range h.chain {
		err := h.invoke(ctx, lh, OpPreRenderIndex, "", func(hook Hook, env sandbox.Env) error {
			next, err := hook.PreRenderIndex(env, slices.Clone(cur))
			if err != nil {
				return err
			}
			cur = next
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// PostRender runs every hook's PostRender stage over the theme output.
func (h *PluginHost) PostRender(ctx context.Context, page Page, html string) (string, error) {
	cur := html
	for _, lh := range h.chain {
		err := h.invoke(ctx, lh, OpPostRender, page.Path, func(hook Hook, env sandbox.Env) error {
			next, err := hook.PostRender(env, page, cur)
			if err != nil {
				return err
			}
			cur = next
			return nil
		})
		if err != nil {
			return "", err
		}
	}
	return cur, nil
}

func (h *PluginHost) invoke(ctx context.Context, lh linkedHook, op, path string, fn func(Hook, sandbox.Env) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := lh.meta.ID()
	opts := append([]sandbox.Option{sandbox.WithLogger(h.logger)}, h.opts...)
	inst := sandbox.NewInstance(ctx, lh.meta.Name, lh.grants, h.mounts, opts...)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
		if cerr := inst.Close(); cerr != nil && err == nil {
			err = cerr
		}

		// A recorded violation fails the task even when the hook ignored it.
		if v := inst.Violation(); v != nil {
			err = classify(sandbox.ErrCapabilityViolation, id, op, v)
		} else if err != nil {
			if errors.Is(err, sandbox.ErrCapabilityViolation) {
				err = classify(sandbox.ErrCapabilityViolation, id, op, err)
			} else if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				err = classify(ErrHookFailed, id, op, err)
			}
		}

		h.logger.Debug("Hook finished",
			logfields.Plugin(id),
			logfields.Stage(op),
			logfields.Article(path),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
			slog.Bool("ok", err == nil))
	}()

	return fn(lh.newHook(), inst)
}
