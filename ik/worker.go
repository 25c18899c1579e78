package ik

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type MessageType int

const (
	MsgUpdateStructure MessageType = iota
	MsgUpdateSettings
	MsgStartSolve
	MsgEndSolve
)

// Request is a control message sent to the solver goroutine.
type Request struct {
	Type        MessageType
	StructureID uuid.UUID
	Chain       *Chain
	Options     Options
}

// Response is posted by the solver goroutine after every solve round.
type Response struct {
	StructureID uuid.UUID
	Status      Status
	Values      []float64
	Elapsed     time.Duration
}

type frameState struct {
	structureID uuid.UUID
	goal        Goal
}

// WorkerSolver runs a DLSSolver on its own goroutine. The caller never
// blocks: goals and responses travel over single-slot channels where the
// newest value replaces an unread one, and responses tagged with an outdated
// structure id are dropped.
type WorkerSolver struct {
	requests  chan Request
	frames    chan frameState
	responses chan Response
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	running     atomic.Bool
	structureID uuid.UUID
	rounds      atomic.Uint64
}

func NewWorkerSolver(opts Options) *WorkerSolver {
	w := &WorkerSolver{
		requests:  make(chan Request, 32),
		frames:    make(chan frameState, 1),
		responses: make(chan Response, 1),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(NewDLSSolver(opts))
	return w
}

// UpdateStructure replaces the chain the worker solves against. The chain's
// current values become the worker's starting point.
func (w *WorkerSolver) UpdateStructure(c *Chain) {
	w.structureID = uuid.New()
	w.running.Store(false)
	var clone *Chain
	if c != nil {
		clone = c.Clone()
	}
	w.send(Request{Type: MsgUpdateStructure, StructureID: w.structureID, Chain: clone})
}

func (w *WorkerSolver) SetOptions(o Options) {
	w.send(Request{Type: MsgUpdateSettings, Options: o})
}

// Solve publishes the goal and returns the latest finished round, if any.
// The worker owns the joint values after UpdateStructure, so current is only
// used by the synchronous solver.
func (w *WorkerSolver) Solve(_ []float64, goal Goal) Result {
	offer(w.frames, frameState{structureID: w.structureID, goal: goal})
	if !w.running.Load() {
		w.running.Store(true)
		w.send(Request{Type: MsgStartSolve})
	}
	return w.Poll()
}

// Poll returns the newest response without blocking.
func (w *WorkerSolver) Poll() Result {
	select {
	case resp := <-w.responses:
		if resp.StructureID != w.structureID {
			return Result{}
		}
		if resp.Status != Timeout {
			w.running.Store(false)
		}
		return Result{Values: resp.Values, Status: resp.Status, Done: true, Elapsed: resp.Elapsed}
	default:
		return Result{}
	}
}

// Running reports whether a solve loop was started and has not reported a
// final status yet.
func (w *WorkerSolver) Running() bool { return w.running.Load() }

// Rounds is the number of solve rounds the worker has completed.
func (w *WorkerSolver) Rounds() uint64 { return w.rounds.Load() }

// Stop asks the worker to end its solve loop. A round already in progress
// still completes and posts its response.
func (w *WorkerSolver) Stop() {
	w.running.Store(false)
	w.send(Request{Type: MsgEndSolve})
}

func (w *WorkerSolver) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
	})
}

func (w *WorkerSolver) send(r Request) {
	select {
	case w.requests <- r:
	case <-w.done:
	}
}

func (w *WorkerSolver) loop(solver *DLSSolver) {
	defer w.wg.Done()

	var (
		id      uuid.UUID
		values  []float64
		goal    *Goal
		solving bool
	)

	handle := func(r Request) {
		switch r.Type {
		case MsgUpdateStructure:
			id = r.StructureID
			solver.UpdateStructure(r.Chain)
			values = nil
			if r.Chain != nil {
				values = r.Chain.Values()
			}
			goal = nil
			solving = false
		case MsgUpdateSettings:
			solver.SetOptions(r.Options)
		case MsgStartSolve:
			solving = true
		case MsgEndSolve:
			solving = false
		}
	}
	takeFrame := func(f frameState) {
		if f.structureID == id {
			g := f.goal
			goal = &g
		}
	}

	for {
		if !solving || goal == nil {
			select {
			case <-w.done:
				return
			case r := <-w.requests:
				handle(r)
			case f := <-w.frames:
				takeFrame(f)
			}
			continue
		}

		// drain pending messages before each round
	drain:
		for {
			select {
			case <-w.done:
				return
			case r := <-w.requests:
				handle(r)
			case f := <-w.frames:
				takeFrame(f)
			default:
				break drain
			}
		}
		if !solving || goal == nil {
			continue
		}

		res := solver.Solve(values, *goal)
		values = res.Values
		w.rounds.Add(1)
		offer(w.responses, Response{
			StructureID: id,
			Status:      res.Status,
			Values:      append([]float64(nil), res.Values...),
			Elapsed:     res.Elapsed,
		})
		if res.Status != Timeout {
			solving = false
		}
	}
}

// offer puts v into a single-slot channel, replacing any unread value.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
