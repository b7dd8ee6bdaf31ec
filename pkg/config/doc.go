// Package config loads form tree definitions from YAML or JSON documents.
//
// A definition describes the controls and sub-forms of a tree, their
// validators (go-playground/validator tags), error tables, visibility policy
// and an optional initial model. Documents are decoded into a generic map
// first and then into typed structs with mapstructure, so unknown keys are
// reported instead of silently dropped.
package config
