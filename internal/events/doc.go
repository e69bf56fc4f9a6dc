// Package events provides a minimal publish/subscribe mechanism used to
// decouple the application store from side effects such as local state
// persistence. Handlers run synchronously on the emitting goroutine.
package events
