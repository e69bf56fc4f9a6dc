// Package task runs short background jobs on a fixed pool of workers fed by
// a bounded in-memory queue, so that slow side effects such as sending email
// never block HTTP request handling. Queued tasks are not persisted and are
// drained on Stop.
package task
