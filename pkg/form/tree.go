package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/formtree/internal/logging"
	"github.com/aretw0/formtree/pkg/domain"
	"github.com/google/uuid"
)

// Tree is the context object shared by every node of one form.
type Tree struct {
	id       string
	ctx      context.Context
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	triggers []domain.Trigger
	root     *Form

	staged []operation
	inbox  inbox
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets a custom structured logger for the tree.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tree) {
		t.hooks = hooks
	}
}

// WithShowErrorsOn sets the default error-visibility policy.
func WithShowErrorsOn(triggers ...domain.Trigger) Option {
	return func(t *Tree) {
		t.triggers = triggers
	}
}

// WithContext sets the parent context of async validators.
// Cancelling it cancels every in-flight validation.
func WithContext(ctx context.Context) Option {
	return func(t *Tree) {
		t.ctx = ctx
	}
}

// WithID overrides the generated tree identifier.
func WithID(id string) Option {
	return func(t *Tree) {
		t.id = id
	}
}

// NewTree creates a tree with an empty root form.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		id:       uuid.NewString(),
		ctx:      context.Background(),
		logger:   logging.NewNop(),
		triggers: domain.DefaultTriggers,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	t.logger = t.logger.With("tree", t.id)
	t.inbox.notify = make(chan struct{}, 1)

	t.root = NewForm("")
	t.root.root = true
	t.root.tree = t
	return t
}

// ID returns the tree identifier.
func (t *Tree) ID() string { return t.id }

// Root returns the root form.
func (t *Tree) Root() *Form { return t.root }

// Logger returns the tree logger.
func (t *Tree) Logger() *slog.Logger { return t.logger }

// ShowErrorsOn returns the default error-visibility policy.
func (t *Tree) ShowErrorsOn() []domain.Trigger { return t.triggers }

// SetShowErrorsOn replaces the default error-visibility policy.
func (t *Tree) SetShowErrorsOn(triggers ...domain.Trigger) {
	t.triggers = triggers
}

// Ready signals that async validation results are waiting for a Commit.
func (t *Tree) Ready() <-chan struct{} { return t.inbox.notify }

// Staged returns the number of operations waiting for a Commit.
func (t *Tree) Staged() int { return len(t.staged) }

// SetModelValues stages a write of the whole model through the root form.
func (t *Tree) SetModelValues(v any) error { return t.root.SetModelValues(v) }

// GetModelValues returns the composite value of the root form.
func (t *Tree) GetModelValues() any { return t.root.DeriveValue() }

// Mount attaches node to its parent form. With no parent the node attaches to
// the root; more than one distinct parent is an AmbiguousParentError.
// Mounting a node under the parent it already has is a no-op.
func (t *Tree) Mount(node Node, parents ...*Form) error {
	return t.MountAt(node, -1, parents...)
}

// MountAt is Mount with an explicit position among the parent's children.
// A negative index appends.
func (t *Tree) MountAt(node Node, index int, parents ...*Form) error {
	if node == nil || isNilNode(node) {
		return fmt.Errorf("mount: nil node")
	}
	parent, err := t.resolveParent(node, parents)
	if err != nil {
		return fmt.Errorf("mount %q: %w", node.Name(), err)
	}
	if parent.tree != nil && parent.tree != t {
		return fmt.Errorf("mount %q: parent form belongs to another tree", node.Name())
	}
	if f, ok := node.(*Form); ok {
		if f.root {
			return fmt.Errorf("mount: the root form cannot be mounted")
		}
		if f == parent || parent.descendsFrom(f) {
			return fmt.Errorf("mount %q: form cannot be mounted inside itself", f.name)
		}
	}
	if node.Parent() == parent {
		return nil
	}
	if node.Parent() != nil {
		t.Unmount(node)
	}

	parent.claimSlot(index)
	if err := parent.children.InsertAt(index, node); err != nil {
		return fmt.Errorf("mount %q: %w", node.Name(), err)
	}
	if parent.tree == nil {
		parent.tree = t
	}
	node.attach(t, parent)

	if err := t.seed(node, parent); err != nil {
		parent.releaseSlot(node)
		parent.children.Remove(node)
		node.detach()
		return fmt.Errorf("mount %q: %w", node.Name(), err)
	}

	path := Path(node)
	t.logger.Debug("node mounted", "path", path, "kind", node.Kind())
	if t.hooks.OnMount != nil {
		t.hooks.OnMount(t.ctx, &domain.NodeEvent{
			EventBase: t.event(domain.EventMount),
			Path:      path,
			Kind:      node.Kind(),
		})
	}
	return nil
}

// Unmount detaches node from its parent, discarding the value and state of
// every control it holds. It is a no-op for nodes that are not mounted.
func (t *Tree) Unmount(node Node) {
	if node == nil || isNilNode(node) {
		return
	}
	parent := node.Parent()
	if parent == nil {
		return
	}
	path := Path(node)
	parent.releaseSlot(node)
	parent.children.Remove(node)
	node.detach()

	t.logger.Debug("node unmounted", "path", path, "kind", node.Kind())
	if t.hooks.OnUnmount != nil {
		t.hooks.OnUnmount(t.ctx, &domain.NodeEvent{
			EventBase: t.event(domain.EventUnmount),
			Path:      path,
			Kind:      node.Kind(),
		})
	}
}

// Commit applies every staged operation, then the async results received so
// far, then validates and propagates the changes. Errors of individual
// operations are joined; the remaining operations still apply.
func (t *Tree) Commit() error {
	start := time.Now()
	ops := t.staged
	t.staged = nil

	p := newPass()
	var errs []error
	for _, op := range ops {
		if err := op.apply(p); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", op.label, op.path, err))
		}
	}

	results := t.inbox.drain()
	for _, r := range results {
		t.applyResult(r)
	}

	t.flush(p)

	err := errors.Join(errs...)
	changed := make([]string, 0, len(p.changed))
	for _, n := range p.changed {
		changed = append(changed, Path(n))
	}
	duration := time.Since(start)
	t.logger.Debug("commit applied",
		"operations", len(ops),
		"results", len(results),
		"changed", len(changed),
		"duration", duration)
	if err != nil {
		t.logger.Warn("commit finished with errors", "err", err)
	}
	if t.hooks.OnCommit != nil {
		t.hooks.OnCommit(t.ctx, &domain.CommitEvent{
			EventBase:  t.event(domain.EventCommit),
			Operations: len(ops),
			Results:    len(results),
			Changed:    changed,
			Duration:   duration,
			Failed:     err != nil,
		})
	}
	return err
}

// Settle commits until no async validator is running and every result has been
// applied. Commit errors do not stop it; they are joined with ctx.Err() when
// ctx ends first and returned.
func (t *Tree) Settle(ctx context.Context) error {
	var errs []error
	for {
		if err := t.Commit(); err != nil {
			errs = append(errs, err)
		}
		if t.inbox.idle() {
			return errors.Join(errs...)
		}
		select {
		case <-t.inbox.notify:
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		}
	}
}

type operation struct {
	label string
	path  string
	apply func(*pass) error
}

func (t *Tree) stage(label string, n Node, apply func(*pass) error) {
	t.staged = append(t.staged, operation{label: label, path: Path(n), apply: apply})
}

// flush validates the controls collected by p, then propagates its changes upward.
func (t *Tree) flush(p *pass) {
	for _, c := range p.revalidate {
		if c.Mounted() {
			t.validate(c)
		}
	}
	for _, n := range p.changed {
		t.propagate(n)
	}
}

// propagate overlays the value of n onto the model snapshot of every ancestor.
func (t *Tree) propagate(n Node) {
	var child Node = n
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		parent.overlay(child)
		child = parent
	}
}

// seed starts a freshly mounted node from its parent's model snapshot.
func (t *Tree) seed(node Node, parent *Form) error {
	p := newPass()
	fragment, ok := parent.fragmentFor(node)
	switch n := node.(type) {
	case *Control:
		if ok {
			n.assign(fragment, p)
		} else {
			p.markRevalidate(n)
		}
	case *Form:
		if ok {
			if err := n.check(fragment); err != nil {
				return err
			}
			if err := n.distribute(fragment, p); err != nil {
				return err
			}
		}
		n.walkControls(func(c *Control) { p.markRevalidate(c) })
	}
	t.flush(p)
	return nil
}

func (t *Tree) resolveParent(node Node, parents []*Form) (*Form, error) {
	var unique []*Form
	for _, p := range parents {
		if p == nil {
			continue
		}
		dup := false
		for _, u := range unique {
			if u == p {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, p)
		}
	}
	switch len(unique) {
	case 0:
		return t.root, nil
	case 1:
		return unique[0], nil
	}
	names := make([]string, len(unique))
	for i, u := range unique {
		names[i] = Path(u)
		if u.root {
			names[i] = "<root>"
		}
	}
	return nil, &domain.AmbiguousParentError{Node: node.Name(), Candidates: names}
}

func (t *Tree) event(typ domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: typ, TreeID: t.id}
}

func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Control:
		return v == nil
	case *Form:
		return v == nil
	}
	return false
}

// pass collects the effects of one commit or mount.
type pass struct {
	revalidate []*Control
	validated  map[*Control]bool
	changed    []Node
	seen       map[Node]bool
}

func newPass() *pass {
	return &pass{validated: make(map[*Control]bool), seen: make(map[Node]bool)}
}

// markRevalidate schedules c for validation and supersedes its in-flight async work.
func (p *pass) markRevalidate(c *Control) {
	if p.validated[c] {
		return
	}
	p.validated[c] = true
	c.supersede()
	p.revalidate = append(p.revalidate, c)
}

func (p *pass) markChanged(n Node) {
	if p.seen[n] {
		return
	}
	p.seen[n] = true
	p.changed = append(p.changed, n)
}
