// Package scope binds resource lifetimes to call frames. A frame scope
// created with New guarantees its teardowns run exactly once, in
// reverse binding order, when the frame exits through a deferred Close
// regardless of how the frame exits. The Global scope installs
// resources for the life of the process and never tears them down.
package scope
