// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import "errors"

// ErrShareNotFound is returned by share lookups when no matching record
// exists (absent, expired, or tombstoned, depending on the query).
var ErrShareNotFound = errors.New("share not found")

// ErrStorageUnavailable is returned when the metadata or checkpoint store
// cannot be reached. It is fatal to a cleanup run and must propagate to the
// invoker rather than being suppressed.
var ErrStorageUnavailable = errors.New("storage unavailable")
