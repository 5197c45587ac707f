package discovery

import (
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// ImportDirective records a `<import from="./bar">` (or local-template
// `<template as-custom-element>`) visibility grant: the resource(s)
// exported by From become visible in OwnerScope (spec.md §4.D.4,
// §4.D "Local templates"). Imports do not define new resources
// themselves, so they are carried alongside discovery.Result's
// candidates rather than as a Candidate.
type ImportDirective struct {
	OwnerScope   ids.ResourceScopeID
	ResourceKind semantics.ResourceKind
	ResourceName string // best-effort resolved target resource name; "" if unresolved
	From         string
	FromSpan     span.Span
	As           string
}
