package form

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/validation"
)

// bind copies cfg so later edits by the caller do not leak into the control.
func bind(cfg ControlConfig) ControlConfig {
	out := cfg
	out.Validators = maps.Clone(cfg.Validators)
	out.AsyncValidators = maps.Clone(cfg.AsyncValidators)
	out.Errors = slices.Clone(cfg.Errors)
	out.ShowErrorsOn = slices.Clone(cfg.ShowErrorsOn)
	return out
}

// validate evaluates the synchronous validators of c against its committed
// value and, when they all pass, dispatches its async validators.
func (t *Tree) validate(c *Control) {
	c.failing = nil
	c.asyncFailing = nil
	c.pending = nil
	if c.disabled {
		return
	}

	path := Path(c)
	for _, name := range validation.Keys(c.config.Validators) {
		passed := validation.Run(c.config.Validators[name], c.value)
		if !passed {
			if c.failing == nil {
				c.failing = make(map[string]bool)
			}
			c.failing[name] = true
		}
		t.emitValidate(path, name, false, passed, c.generation, false)
	}
	if len(c.failing) > 0 || len(c.config.AsyncValidators) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	c.cancel = cancel
	c.pending = make(map[string]bool, len(c.config.AsyncValidators))
	for _, name := range validation.Keys(c.config.AsyncValidators) {
		c.pending[name] = true
		t.dispatch(ctx, c, name, c.config.AsyncValidators[name])
	}
	t.logger.Debug("async validation dispatched",
		"path", path,
		"validators", len(c.pending),
		"generation", c.generation)
}

// dispatch runs fn in its own goroutine and delivers the outcome to the inbox.
// The value is captured now so later writes cannot race with the validator.
func (t *Tree) dispatch(ctx context.Context, c *Control, name string, fn validation.AsyncFunc) {
	value := c.value
	generation := c.generation
	t.inbox.begin()
	go func() {
		r := asyncResult{control: c, validator: name, generation: generation}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.err = fmt.Errorf("async validator %q panicked: %v", name, rec)
				}
			}()
			r.passed, r.err = fn(ctx, value)
		}()
		t.inbox.push(r)
	}()
}

// applyResult records one async outcome unless a newer value has superseded it.
func (t *Tree) applyResult(r asyncResult) {
	c := r.control
	path := Path(c)
	if !c.Mounted() || c.generation != r.generation || !c.pending[r.validator] {
		t.logger.Debug("stale async result discarded",
			"path", path,
			"validator", r.validator,
			"generation", r.generation,
			"current", c.generation)
		t.emitValidate(path, r.validator, true, r.passed, r.generation, true)
		return
	}

	delete(c.pending, r.validator)
	passed := r.passed && r.err == nil
	if r.err != nil {
		t.logger.Warn("async validator failed", "path", path, "validator", r.validator, "err", r.err)
	}
	if !passed {
		if c.asyncFailing == nil {
			c.asyncFailing = make(map[string]bool)
		}
		c.asyncFailing[r.validator] = true
	}
	if len(c.pending) == 0 && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	t.emitValidate(path, r.validator, true, passed, r.generation, false)
}

func (t *Tree) emitValidate(path, validator string, async, passed bool, generation uint64, discarded bool) {
	if t.hooks.OnValidate == nil {
		return
	}
	t.hooks.OnValidate(t.ctx, &domain.ValidationEvent{
		EventBase:  t.event(domain.EventValidate),
		Path:       path,
		Validator:  validator,
		Async:      async,
		Passed:     passed,
		Generation: generation,
		Discarded:  discarded,
	})
}
