// Package service contains account use cases that sit between the HTTP layer
// and the relational stores: signup with default settings, login, email
// confirmation, password recovery and outgoing verification mail.
//
// Services receive their stores through constructor injection and apply
// transactional boundaries with store.RunInTransaction when an operation spans
// more than one store.
package service
