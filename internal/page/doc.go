// Package page assembles documentation pages from declared entries.
//
// A Spec lists entries in the order they should render. The Assembler turns
// every entry into an immutable Block: examples, their highlighted source read
// byte-for-byte from disk, Markdown prose, and API reference blocks whose
// records come from a metadata.Store. A missing metadata record yields an API
// block marked absent; a missing source file fails the whole build before any
// block is produced.
package page
