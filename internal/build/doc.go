// Package build runs the page build pipeline: load the metadata store once,
// then for every page definition assemble the page, write it with its
// manifest and announce it.
//
// The CLI build and watch commands both route through Service.
package build
