package httpclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// TaskState tracks a request through created -> in_flight -> succeeded|failed.
type TaskState int

const (
	TaskCreated TaskState = iota
	TaskInFlight
	TaskSucceeded
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskCreated:
		return "created"
	case TaskInFlight:
		return "in_flight"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task is a snapshot of one submitted request.
type Task struct {
	ID         uint64
	Method     Method
	URL        string
	State      TaskState
	StatusCode int
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Submitter sends RequestSpecs over one shared Client and classifies the
// outcome. It is safe for concurrent use.
type Submitter struct {
	client Client
	log    Logger

	seq      atomic.Uint64
	mu       sync.Mutex
	last     Task
	hasLast  bool
	inflight sync.WaitGroup
}

// NewSubmitter wraps client. A nil client falls back to a RestyClient with
// DefaultTimeout.
func NewSubmitter(client Client, log Logger) *Submitter {
	if client == nil {
		client = NewRestyClient(DefaultTimeout)
	}
	return &Submitter{client: client, log: ensureLogger(log)}
}

// Submit sends spec on a new goroutine and calls completion exactly once,
// from that goroutine, with either ("", result) or (message, nil).
func (s *Submitter) Submit(ctx context.Context, spec *RequestSpec, completion Completion) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.dispatch(func() {
		res, err := s.Do(ctx, spec)
		if completion == nil {
			return
		}
		if err != nil {
			completion(err.Error(), nil)
			return
		}
		completion("", res)
	})
}

// Do sends spec and blocks until the response is classified and decoded.
func (s *Submitter) Do(ctx context.Context, spec *RequestSpec) (Result, error) {
	if spec == nil {
		return nil, ErrBuild
	}
	if ctx == nil {
		ctx = context.Background()
	}

	task := s.begin(spec)
	if spec.Timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout())
		defer cancel()
	}

	s.log.DebugObj("request submitted", "request_meta", map[string]any{
		"task_id": task.ID,
		"method":  task.Method,
		"url":     task.URL,
	})

	res, status, err := s.execute(ctx, spec)
	s.finish(task, status, err)
	return res, err
}

func (s *Submitter) execute(ctx context.Context, spec *RequestSpec) (Result, int, error) {
	resp, err := s.client.Execute(ctx, spec)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	if resp == nil {
		return nil, 0, ErrNoResponse
	}

	status := resp.StatusCode()
	if err := classifyStatus(status); err != nil {
		return nil, status, err
	}

	res, err := decodeResult(resp.Body())
	return res, status, err
}

// LastTask returns a snapshot of the most recently submitted request.
func (s *Submitter) LastTask() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Wait blocks until every asynchronous submission has delivered its completion.
func (s *Submitter) Wait() {
	s.inflight.Wait()
}

func (s *Submitter) dispatch(fn func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn()
	}()
}

func (s *Submitter) begin(spec *RequestSpec) Task {
	task := Task{
		ID:        s.seq.Add(1),
		Method:    spec.Method(),
		URL:       spec.URL(),
		State:     TaskCreated,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if !s.hasLast || task.ID > s.last.ID {
		s.last = task
		s.hasLast = true
	}
	s.mu.Unlock()

	task.State = TaskInFlight
	s.update(task)
	return task
}

func (s *Submitter) finish(task Task, status int, err error) {
	task.StatusCode = status
	task.Err = err
	task.FinishedAt = time.Now().UTC()
	task.State = TaskSucceeded
	if err != nil {
		task.State = TaskFailed
	}
	s.update(task)

	meta := map[string]any{
		"task_id":     task.ID,
		"method":      task.Method,
		"url":         task.URL,
		"status_code": status,
		"elapsed_ms":  task.FinishedAt.Sub(task.StartedAt).Milliseconds(),
	}
	if err == nil {
		s.log.InfoObj("request succeeded", "request_meta", meta)
		return
	}
	meta["error"] = err.Error()
	var te *TransportError
	if errors.As(err, &te) {
		s.log.ErrorObj("request transport failure", "request_meta", meta)
		return
	}
	s.log.WarnObj("request failed", "request_meta", meta)
}

// update stores task only if it is still the most recent one.
func (s *Submitter) update(task Task) {
	s.mu.Lock()
	if s.hasLast && s.last.ID == task.ID {
		s.last = task
	}
	s.mu.Unlock()
}
