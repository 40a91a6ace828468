package httpclient

import (
	"context"
)

// Requester composes Builder and Submitter into GET/POST calls.
type Requester struct {
	builder   *Builder
	submitter *Submitter
	log       Logger
}

// NewRequester builds a Requester sharing one session across all calls.
func NewRequester(client Client, defaults Defaults, log Logger) *Requester {
	log = ensureLogger(log)
	return &Requester{
		builder:   NewBuilder(defaults, log),
		submitter: NewSubmitter(client, log),
		log:       log,
	}
}

// HTTPGet issues a GET asynchronously. completion runs exactly once on a
// goroutine owned by the Requester, also when the request cannot be built.
func (r *Requester) HTTPGet(ctx context.Context, url string, extraHeaders map[string]string, completion Completion) {
	r.send(ctx, url, MethodGet, extraHeaders, nil, completion)
}

// HTTPPost issues a POST asynchronously. A nil body is sent as {}.
func (r *Requester) HTTPPost(ctx context.Context, url string, extraHeaders map[string]string, body any, completion Completion) {
	r.send(ctx, url, MethodPost, extraHeaders, body, completion)
}

// Get is the blocking form of HTTPGet.
func (r *Requester) Get(ctx context.Context, url string, extraHeaders map[string]string) (Result, error) {
	return r.Do(ctx, url, MethodGet, extraHeaders, nil)
}

// Post is the blocking form of HTTPPost.
func (r *Requester) Post(ctx context.Context, url string, extraHeaders map[string]string, body any) (Result, error) {
	return r.Do(ctx, url, MethodPost, extraHeaders, body)
}

// Do builds and submits a request, blocking until it completes.
func (r *Requester) Do(ctx context.Context, url string, method Method, extraHeaders map[string]string, body any) (Result, error) {
	spec, err := r.builder.Build(url, method, extraHeaders, body)
	if err != nil {
		r.logBuildFailure(url, method, err)
		return nil, err
	}
	return r.submitter.Do(ctx, spec)
}

// Send is the asynchronous form of Do.
func (r *Requester) Send(ctx context.Context, url string, method Method, extraHeaders map[string]string, body any, completion Completion) {
	r.send(ctx, url, method, extraHeaders, body, completion)
}

// Wait blocks until every pending completion has been delivered.
func (r *Requester) Wait() {
	r.submitter.Wait()
}

// LastTask exposes the submitter's most recent task.
func (r *Requester) LastTask() (Task, bool) {
	return r.submitter.LastTask()
}

func (r *Requester) send(ctx context.Context, url string, method Method, extraHeaders map[string]string, body any, completion Completion) {
	spec, err := r.builder.Build(url, method, extraHeaders, body)
	if err != nil {
		r.logBuildFailure(url, method, err)
		r.submitter.dispatch(func() {
			if completion != nil {
				completion(ErrBuild.Error(), nil)
			}
		})
		return
	}
	r.submitter.Submit(ctx, spec, completion)
}

func (r *Requester) logBuildFailure(url string, method Method, err error) {
	r.log.ErrorObj("request build failed", "request_build_error", map[string]any{
		"url":    url,
		"method": method,
		"error":  err.Error(),
	})
}
