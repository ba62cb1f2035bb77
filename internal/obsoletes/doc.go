// Package obsoletes computes the binaries a distribution still ships although
// no current source package builds them, and publishes them as the skip list
// that keeps them off the distribution media.
//
// The computation runs as a single forward pass: the package catalogs of the
// target and reference projects are canonicalized, the binaries built for
// every catalog project are collected into an inventory, the still-needed
// binaries are selected from that inventory, and whatever remains becomes the
// obsolete list.
package obsoletes
