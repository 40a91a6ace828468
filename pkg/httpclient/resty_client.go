package httpclient

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface. One
// RestyClient is the long-lived session shared by every request; resty.Client
// is safe for concurrent use.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Execute sends spec over the shared session. Headers are copied with Add so
// repeated keys keep every value.
func (r *RestyClient) Execute(ctx context.Context, spec *RequestSpec) (Response, error) {
	if spec == nil {
		return nil, errors.New("nil request spec")
	}

	req := r.client.R().SetContext(ctx)
	for key, values := range spec.Header() {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body := spec.Body(); len(body) > 0 {
		req.SetBody(body)
	}

	resp, err := req.Execute(string(spec.Method()), spec.URL())
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.RawResponse == nil {
		return nil, nil
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
