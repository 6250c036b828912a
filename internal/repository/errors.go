// Package repository contains data access logic separated from HTTP handlers.
// This file defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios, for example deleting a
// room that still has assigned guests versus deleting a room that does not
// exist.
package repository

import "errors"

// ErrConflict is returned when a delete cannot be performed because of
// dependent rows, such as removing a room while guests are still assigned
// to it. Handlers translate this into an HTTP 400 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an account with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")
