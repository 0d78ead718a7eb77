package storage

import "io"

// Sink hands out a fresh destination for each report cycle.
type Sink interface {
	Open() (Destination, error)
}

// Destination receives one report. Commit publishes it; Discard abandons a failed cycle.
type Destination interface {
	io.Writer
	Commit() error
	Discard() error
}
