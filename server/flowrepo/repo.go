// Package flowrepo keeps the login and registration flows of each browser session between
// requests.
package flowrepo

import (
	"context"
	"time"
)

type Kind string

const (
	KindLogin    Kind = "login"
	KindRegister Kind = "register"
)

// Flow is whatever the repo holds; Close is called when it is dropped.
type Flow interface {
	Close()
}

// Release unlocks a flow handed out by Acquire.
type Release func()

type Repo interface {
	// Acquire returns the flow stored under key and kind, locked for the caller. When none
	// exists and create is non-nil a new one is stored. ok is false when nothing was found or
	// created. Release must be called exactly once when ok is true.
	Acquire(key string, kind Kind, create func() Flow) (flow Flow, release Release, ok bool)
	// Delete closes and drops the flow. It waits for a caller holding the flow to release it.
	Delete(key string, kind Kind)
	// DeleteAll drops every flow stored under key.
	DeleteAll(key string)
	// Sweep closes and drops flows untouched for longer than idle. Flows in use are skipped.
	Sweep(idle time.Duration) int
	// Run sweeps every interval until ctx is done.
	Run(ctx context.Context, interval, idle time.Duration)
}
