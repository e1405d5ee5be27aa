// Package core implements the reactive heart of the Canopy runtime: the
// hook context, the scheduler, and the reconciler.
//
// A Root is mounted from an element tree and a host adapter. Component
// functions run under an active hook context; state setters mark the owning
// instance dirty and synchronously drive diff, layout, host mutation, and
// effect execution before returning. The runtime is single-threaded and
// cooperative: no background goroutine ever touches the element or instance
// trees, and commits are never interrupted or time-sliced.
package core
