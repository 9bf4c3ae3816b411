// Package session implements the Loco session multiplexer: it lets many
// goroutines issue requests and await their responses concurrently, while a
// single background reader routes incoming frames to the right waiter or to
// a broadcast queue, over one shared duplex transport.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"lococlient/internal/command"
	"lococlient/internal/frame"
	"lococlient/internal/metrics"
	"lococlient/internal/middleware"
)

// ErrClosed marks a session that has been closed, either by the caller or
// by a fatal transport error. Once closed, Request and NextBroadcast return
// an error matching ErrClosed (via errors.Is), joined with the transport
// error when one closed the session. An Await still pending at that moment
// returns the transport error itself, or ErrClosed if Close was called.
var ErrClosed = errors.New("session: closed")

// closedError returns ErrClosed, joined with cause when the session was
// closed by an error other than Close.
func closedError(cause error) error {
	if cause == nil || errors.Is(cause, ErrClosed) {
		return ErrClosed
	}
	return errors.Join(ErrClosed, cause)
}

// Broadcast is an unsolicited command delivered outside of any pending
// request, in the order it was read from the wire.
type Broadcast struct {
	ID      int32
	Command command.Doc
}

// Ticket identifies one outstanding request, returned by Request and
// consumed by Await.
type Ticket struct {
	id    int32
	ch    chan result
	start time.Time
}

// ID returns the request id assigned to this ticket.
func (t Ticket) ID() int32 { return t.id }

type result struct {
	doc command.Doc
	err error
}

// Session multiplexes one command manager across concurrent requesters and
// one broadcast consumer.
type Session struct {
	manager *command.Manager

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[int32]chan result
	closed   bool
	closeErr error

	broadcastIn  chan Broadcast
	broadcastOut chan Broadcast
	pumpDone     chan struct{}

	readerDone chan struct{}

	limiter *middleware.RateLimiter
}

// Option configures a Session constructed by New.
type Option func(*sessionConfig)

type sessionConfig struct {
	frameOpts []frame.Option
	limiter   *middleware.RateLimiter
}

// WithFrameOptions passes codec options (max body size, buffer pool) through
// to the frame.Codec New wraps around the transport.
func WithFrameOptions(opts ...frame.Option) Option {
	return func(c *sessionConfig) { c.frameOpts = append(c.frameOpts, opts...) }
}

// WithRateLimiter throttles Request by command method using limiter, so a
// single noisy method cannot monopolize the outgoing write side. A nil
// limiter (the default) disables throttling.
func WithRateLimiter(limiter *middleware.RateLimiter) Option {
	return func(c *sessionConfig) { c.limiter = limiter }
}

// New constructs a Session from an already-connected transport. It starts
// the dedicated reader goroutine and the broadcast pump immediately; callers
// must eventually call Close.
func New(rw io.ReadWriter, opts ...Option) *Session {
	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	codec := frame.New(rw, cfg.frameOpts...)
	s := &Session{
		manager:      command.NewManager(codec),
		pending:      make(map[int32]chan result),
		broadcastIn:  make(chan Broadcast),
		broadcastOut: make(chan Broadcast),
		pumpDone:     make(chan struct{}),
		readerDone:   make(chan struct{}),
		limiter:      cfg.limiter,
	}
	go s.pumpBroadcasts()
	go s.readLoop()
	return s
}

// Request writes a command and registers a pending entry for its id. The
// returned Ticket must be passed to Await exactly once.
func (s *Session) Request(ctx context.Context, method string, dataType int8, data any) (Ticket, error) {
	s.mu.Lock()
	if s.closed {
		cause := s.closeErr
		s.mu.Unlock()
		return Ticket{}, closedError(cause)
	}
	s.mu.Unlock()

	if s.limiter != nil {
		if err := s.limiter.Allow(method); err != nil {
			return Ticket{}, err
		}
	}

	s.writeMu.Lock()
	id, err := s.manager.Write(command.Command[any]{Method: method, DataType: dataType, Data: data})
	s.writeMu.Unlock()
	if err != nil {
		return Ticket{}, err
	}

	ch := make(chan result, 1)
	s.mu.Lock()
	if s.closed {
		cause := s.closeErr
		s.mu.Unlock()
		return Ticket{}, closedError(cause)
	}
	s.pending[id] = ch
	s.mu.Unlock()

	metrics.RequestsIssued.Inc()
	metrics.PendingRequests.Set(float64(s.pendingCount()))

	return Ticket{id: id, ch: ch, start: time.Now()}, nil
}

// Await blocks until the ticket's response is delivered, the session
// closes, or ctx is cancelled. Cancelling removes the pending entry; a
// response that arrives after cancellation is routed to the broadcast queue
// instead of being dropped.
func (s *Session) Await(ctx context.Context, t Ticket) (command.Doc, error) {
	select {
	case r := <-t.ch:
		metrics.PendingRequests.Set(float64(s.pendingCount()))
		metrics.AwaitLatency.Observe(time.Since(t.start).Seconds())
		return r.doc, r.err
	case <-s.readerDone:
		s.mu.Lock()
		err := s.closeErr
		s.mu.Unlock()
		if err == nil {
			err = ErrClosed
		}
		select {
		case r := <-t.ch:
			metrics.AwaitLatency.Observe(time.Since(t.start).Seconds())
			return r.doc, r.err
		default:
		}
		return command.Doc{}, err
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.pending, t.id)
		s.mu.Unlock()
		metrics.PendingRequests.Set(float64(s.pendingCount()))
		return command.Doc{}, ctx.Err()
	}
}

// NextBroadcast blocks until a broadcast arrives, the session closes, or ctx
// is cancelled.
func (s *Session) NextBroadcast(ctx context.Context) (Broadcast, error) {
	select {
	case b, ok := <-s.broadcastOut:
		if !ok {
			s.mu.Lock()
			cause := s.closeErr
			s.mu.Unlock()
			return Broadcast{}, closedError(cause)
		}
		return b, nil
	case <-ctx.Done():
		return Broadcast{}, ctx.Err()
	}
}

// Close marks the session closed, fails every pending request with
// ErrClosed, and stops the broadcast pump once its queued broadcasts are
// consumed. It does not close the underlying transport; callers own that
// lifecycle, and the reader goroutine exits only when a read on the
// transport fails.
func (s *Session) Close() {
	s.failAll(ErrClosed)
}

func (s *Session) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingCount returns the number of requests currently awaiting a response.
func (s *Session) PendingCount() int {
	return s.pendingCount()
}

// readLoop is the session's single permanent reader: it is the only
// goroutine that ever reads the transport, so no additional synchronization
// is needed around manager.Read.
func (s *Session) readLoop() {
	defer close(s.readerDone)
	for {
		id, doc, err := s.manager.Read()
		if err != nil {
			var re *command.ReadError
			if errors.As(err, &re) {
				switch re.Kind {
				case command.ReadCorrupted, command.ReadDecodeFailure, command.ReadInvalidMethod:
					metrics.CorruptedFrames.WithLabelValues(readErrorKindLabel(re.Kind)).Inc()
					s.deliverOrDrop(id, command.Doc{}, err)
					continue
				}
			}
			s.failAll(err)
			return
		}
		s.deliverOrDrop(id, doc, nil)
	}
}

func (s *Session) deliverOrDrop(id int32, doc command.Doc, err error) {
	s.mu.Lock()
	ch, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}

	if ok {
		if err == nil {
			metrics.ResponsesDelivered.Inc()
		}
		ch <- result{doc: doc, err: err}
		return
	}

	if err != nil {
		// An error with no matching waiter has nowhere useful to go; it
		// named a specific request id that no longer has a claimant.
		return
	}

	metrics.BroadcastsDelivered.Inc()
	select {
	case s.broadcastIn <- Broadcast{ID: id, Command: doc}:
	case <-s.pumpDone:
	}
}

// pumpBroadcasts bridges the reader goroutine to NextBroadcast callers
// through an internal growable queue, so a slow or absent broadcast
// consumer never blocks the reader beyond one frame.
func (s *Session) pumpBroadcasts() {
	defer close(s.pumpDone)
	var queue []Broadcast
	for {
		if len(queue) == 0 {
			b, ok := <-s.broadcastIn
			if !ok {
				s.drainBroadcastOut(queue)
				return
			}
			queue = append(queue, b)
			continue
		}

		select {
		case b, ok := <-s.broadcastIn:
			if !ok {
				s.drainBroadcastOut(queue)
				return
			}
			queue = append(queue, b)
		case s.broadcastOut <- queue[0]:
			queue = queue[1:]
		}
	}
}

func (s *Session) drainBroadcastOut(queue []Broadcast) {
	for _, b := range queue {
		s.broadcastOut <- b
	}
	close(s.broadcastOut)
}

func (s *Session) failAll(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.closeErr = err
	pending := s.pending
	s.pending = make(map[int32]chan result)
	s.mu.Unlock()

	for _, ch := range pending {
		ch <- result{err: err}
	}
	close(s.broadcastIn)
}

func readErrorKindLabel(k command.ReadErrorKind) string {
	switch k {
	case command.ReadCorrupted:
		return "corrupted"
	case command.ReadInvalidMethod:
		return "invalid_method"
	case command.ReadDecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}
