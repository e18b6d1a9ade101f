// Package metadata holds the component documentation records that API blocks
// are built from.
//
// A Store maps an Identifier (the component's source path, such as
// "src/components/card/Card.js") to an opaque Record produced by an external
// extraction pipeline. The store is loaded once from a Source and is read-only
// afterwards, so a single loaded Store can back any number of concurrent page
// builds. Looking up an unknown identifier is not an error: Get reports absence
// and callers pass that through to the renderer.
package metadata
