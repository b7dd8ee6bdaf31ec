// Package validation provides the named validators and error tables bound to
// form controls.
//
// A validator is a predicate over a control's current value. Synchronous
// validators are plain functions; asynchronous ones receive a context and may
// take any amount of time, their results are applied by the owning tree.
//
// Tag-based validators reuse the go-playground/validator tag language, so a
// definition file can declare rules as strings:
//
//	validators, err := validation.ParseTagMap(map[string]string{
//	    "required": "required",
//	    "email":    "email",
//	    "short":    "min=3",
//	})
//
// A Table maps failing validator keys to messages. It is ordered: the first
// entry whose key is failing wins.
package validation
