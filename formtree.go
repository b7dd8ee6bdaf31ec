package formtree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/formtree/internal/logging"
	"github.com/aretw0/formtree/pkg/config"
	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/dsl"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/observability"
	"github.com/aretw0/formtree/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	definition     *config.Definition
	definitionPath string
	logger         *slog.Logger
	registerer     prometheus.Registerer
	hooks          domain.LifecycleHooks
	triggers       []domain.Trigger
	model          any
	async          map[string]validation.AsyncFunc
	ctx            context.Context
}

// Option defines a functional option for configuring a tree.
type Option func(*options)

// WithDefinition mounts def into the new tree.
func WithDefinition(def *config.Definition) Option {
	return func(o *options) {
		o.definition = def
	}
}

// WithDefinitionFile loads a YAML or JSON definition and mounts it.
func WithDefinitionFile(path string) Option {
	return func(o *options) {
		o.definitionPath = path
	}
}

// WithLogger sets a custom structured logger for the tree.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records tree activity into Prometheus collectors registered with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithShowErrorsOn sets the default error-visibility policy. A policy in the
// definition takes precedence.
func WithShowErrorsOn(triggers ...domain.Trigger) Option {
	return func(o *options) {
		o.triggers = triggers
	}
}

// WithInitialModel distributes model once the tree is built, replacing the
// model of the definition.
func WithInitialModel(model any) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithAsyncValidator supplies an async validator referenced by name in the definition.
func WithAsyncValidator(name string, fn validation.AsyncFunc) Option {
	return func(o *options) {
		o.async[name] = fn
	}
}

// WithContext sets the parent context of async validators.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// New builds a form tree. Without a definition the tree starts with an empty
// root form ready for Mount calls.
func New(opts ...Option) (*form.Tree, error) {
	o := &options{async: make(map[string]validation.AsyncFunc)}
	for _, opt := range opts {
		opt(o)
	}

	if o.definition == nil && o.definitionPath != "" {
		def, err := config.Load(o.definitionPath)
		if err != nil {
			return nil, err
		}
		o.definition = def
	}

	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.definitionPath != "" {
		o.logger = o.logger.With("definition", filepath.Base(o.definitionPath))
	}

	hooks := o.hooks
	if o.registerer != nil {
		metrics, err := observability.NewMetrics(o.registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		hooks = domain.MergeHooks(hooks, metrics.Hooks())
	}

	treeOpts := []form.Option{form.WithLogger(o.logger), form.WithHooks(hooks)}
	if len(o.triggers) > 0 {
		treeOpts = append(treeOpts, form.WithShowErrorsOn(o.triggers...))
	}
	if o.ctx != nil {
		treeOpts = append(treeOpts, form.WithContext(o.ctx))
	}
	tree := form.NewTree(treeOpts...)

	if o.definition != nil {
		mountOpts := make([]dsl.MountOption, 0, len(o.async)+1)
		for _, name := range validation.Keys(o.async) {
			mountOpts = append(mountOpts, dsl.WithAsyncValidator(name, o.async[name]))
		}
		if o.model != nil {
			mountOpts = append(mountOpts, dsl.WithModel(o.model))
		}
		if err := dsl.Mount(tree, o.definition, mountOpts...); err != nil {
			return nil, fmt.Errorf("failed to mount definition: %w", err)
		}
		controls, forms := o.definition.Form.Count()
		tree.Logger().Debug("definition mounted", "controls", controls, "forms", forms)
		return tree, nil
	}

	if o.model != nil {
		if err := tree.SetModelValues(o.model); err != nil {
			return nil, err
		}
		if err := tree.Commit(); err != nil {
			return nil, fmt.Errorf("failed to apply initial model: %w", err)
		}
	}
	return tree, nil
}
