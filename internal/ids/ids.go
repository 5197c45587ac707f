// Package ids defines the branded identifier types shared across the
// semantic authority. Every cross-reference identity in the pipeline is one
// of these distinct string or integer types so that, for example, a
// FrameID can never be silently passed where a NodeID was expected.
package ids

import "fmt"

// ExprID identifies a single parsed expression (or interpolation part)
// within an IrModule's shared expression table.
type ExprID int

// NodeID identifies a DOM node within a single TemplateIR. NodeIDs are
// unique only within their owning template, assigned in deterministic
// walk order starting at 0 (the synthetic fragment root).
type NodeID int

// TemplateID identifies a TemplateIR within an IrModule. Unique within
// the module: the root template is always 0, nested templates (one per
// template-controller host) are assigned in lowering order.
type TemplateID int

// FrameID identifies a ScopeFrame within a ScopeTemplate.
type FrameID int

// SourceFileID identifies a source file (view-model or template) within
// a project. Stable for the lifetime of a workspace; never reused even
// if the underlying file is deleted and recreated under the same path.
type SourceFileID int

// DocumentURI is a canonicalized document URI as tracked by the
// workspace engine (e.g. "file:///project/src/app.html").
type DocumentURI string

// ResourceScopeID identifies a node in the resource graph's scope tree:
// "root", "local:<file>", or "local-template:<owner-uri>::<name>".
type ResourceScopeID string

// RootScopeID is the well-known identity of the project root scope.
const RootScopeID ResourceScopeID = "root"

// LocalScopeID builds the scope id for a component's own file-local scope.
func LocalScopeID(fileURI DocumentURI) ResourceScopeID {
	return ResourceScopeID(fmt.Sprintf("local:%s", fileURI))
}

// LocalTemplateScopeID builds the scope id for an inline
// `as-custom-element` local template nested within ownerURI.
func LocalTemplateScopeID(ownerURI DocumentURI, name string) ResourceScopeID {
	return ResourceScopeID(fmt.Sprintf("local-template:%s::%s", ownerURI, name))
}

// NoExpr is the zero value meaning "no expression id" in optional fields.
const NoExpr ExprID = -1

// NoNode is the zero value meaning "no node id" in optional fields.
const NoNode NodeID = -1

// NoFrame is the zero value meaning "no frame id" in optional fields.
const NoFrame FrameID = -1

// NoTemplate is the zero value meaning "no parent template" — the
// module's root ScopeTemplate has no enclosing template to walk to.
const NoTemplate TemplateID = -1
