// Package probe implements the readiness prober: a single bounded pass of
// fixed-interval polls over the stack's per-service state.
//
// The state machine is Waiting → {Ready, TimedOut}. Readiness is decided
// per service — every configured service must be observed up on the same
// tick. An aggregate "anything is up" match would report success while
// two of three tiers are still down, so it is deliberately not offered.
package probe

import (
	"context"
	"time"

	"github.com/shinji-kodama/stackup/internal/model"
)

// StatusSource produces one per-service snapshot of the stack. The Docker
// layer provides the real implementation; tests script snapshots.
type StatusSource interface {
	Snapshot(ctx context.Context) ([]model.ServiceStatus, error)
}

// SourceFunc adapts a plain function to the StatusSource interface.
type SourceFunc func(ctx context.Context) ([]model.ServiceStatus, error)

// Snapshot implements StatusSource.
func (f SourceFunc) Snapshot(ctx context.Context) ([]model.ServiceStatus, error) {
	return f(ctx)
}

// Result is the terminal outcome of one probe run: the phase reached, the
// snapshot from the final tick, and how many ticks ran.
type Result struct {
	Phase    model.ProbePhase
	Services []model.ServiceStatus
	Ticks    int
}

// Prober polls a StatusSource until every service is up or the deadline
// expires.
type Prober struct {
	source   StatusSource
	interval time.Duration
	ceiling  time.Duration

	// sleep is a seam for tests; the default is time.Sleep.
	sleep func(time.Duration)

	// onTick, when set, observes each tick's snapshot. The CLI uses it
	// for verbose progress output.
	onTick func(tick, maxTicks int, services []model.ServiceStatus)
}

// New creates a Prober with the given poll interval and total ceiling.
func New(source StatusSource, interval, ceiling time.Duration) *Prober {
	return &Prober{
		source:   source,
		interval: interval,
		ceiling:  ceiling,
		sleep:    time.Sleep,
	}
}

// OnTick registers a per-tick observer. Must be called before Wait.
func (p *Prober) OnTick(fn func(tick, maxTicks int, services []model.ServiceStatus)) {
	p.onTick = fn
}

// maxTicks is the termination bound: ceiling / interval, floored at one.
// With the default 5s interval and 60s ceiling this is exactly 12 ticks.
func (p *Prober) maxTicks() int {
	n := int(p.ceiling / p.interval)
	if n < 1 {
		n = 1
	}
	return n
}

// Wait runs the poll loop. The first snapshot is taken immediately; the
// fixed-interval sleep sits between ticks, not before the first or after
// the last, so a stack that is already up is Ready on tick one with no
// sleeping at all.
//
// Wait returns an error only when a snapshot itself fails or the context
// is cancelled — a timeout is a valid Result with PhaseTimedOut, carrying
// the final snapshot so the caller can show which tier never came up.
func (p *Prober) Wait(ctx context.Context) (*Result, error) {
	max := p.maxTicks()

	var last []model.ServiceStatus
	for tick := 1; tick <= max; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		services, err := p.source.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		last = services

		if p.onTick != nil {
			p.onTick(tick, max, services)
		}

		if allUp(services) {
			return &Result{Phase: model.PhaseReady, Services: services, Ticks: tick}, nil
		}

		if tick < max {
			p.sleep(p.interval)
		}
	}

	return &Result{Phase: model.PhaseTimedOut, Services: last, Ticks: max}, nil
}

// allUp reports whether every service in the snapshot is up. An empty
// snapshot is not up — it means the converge produced nothing to observe.
func allUp(services []model.ServiceStatus) bool {
	if len(services) == 0 {
		return false
	}
	for _, s := range services {
		if !s.Up() {
			return false
		}
	}
	return true
}
