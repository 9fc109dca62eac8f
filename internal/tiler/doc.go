// Package tiler enforces layout rules on the windows of tracked processes.
//
// A Worker owns one rule: it resizes matching windows to the rule's size on
// a fixed interval and can tile them side by side on demand. A Coordinator
// owns the set of running workers and chains their tile passes left to
// right. Neither type is safe for concurrent use; both must only be used
// from the runloop.Loop they were given.
package tiler
