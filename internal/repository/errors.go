// Package repository implements the persistence layer over MySQL. This
// file defines sentinel errors shared across repositories so handlers can
// translate failures into the right HTTP status without inspecting driver
// error strings themselves.
package repository

import "errors"

// ErrNotFound is returned when a referenced record does not exist.
// Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration hits the unique email
// constraint. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state. Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")
