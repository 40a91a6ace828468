package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gonet/dgnet/internal/config"
	"github.com/gonet/dgnet/internal/logger"
	"github.com/gonet/dgnet/pkg/httpclient"
	"github.com/gonet/dgnet/pkg/publishers"
	"github.com/gonet/dgnet/pkg/requests"
)

// Runner submits every enabled request plan over one shared session, logs
// each outcome and forwards successful results to the configured publishers.
type Runner struct {
	plans     *requests.Registry
	requester *httpclient.Requester
	fanout    *publishers.Fanout
	log       logger.Logger
}

// Outcome is the terminal result of one plan.
type Outcome struct {
	PlanID    string
	Err       string
	Result    httpclient.Result
	Published int
}

// Summary aggregates the outcomes of a run in plan order.
type Summary struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}

// NewRunner builds a runner from config files.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	plans, err := requests.LoadRegistry(cfg.RequestsFile)
	if err != nil {
		return nil, fmt.Errorf("load requests registry: %w", err)
	}
	planIDs := make([]string, 0, len(plans.All()))
	for _, p := range plans.All() {
		planIDs = append(planIDs, p.ID)
	}
	log.InfoObj("requests registry loaded", "requests_meta", map[string]any{
		"count": len(planIDs),
		"ids":   planIDs,
	})

	fanout, err := loadFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	requester := NewRequester(cfg, log)
	return NewRunnerWith(plans, requester, fanout, log), nil
}

// NewRequester builds the shared-session requester from config.
func NewRequester(cfg *config.Config, log logger.Logger) *httpclient.Requester {
	defaults := httpclient.Defaults{
		Timeout: cfg.RequestTimeout,
		Header:  cfg.BaseHeaders,
	}
	return httpclient.NewRequester(httpclient.NewRestyClient(cfg.RequestTimeout), defaults, log)
}

// NewRunnerWith wires a runner from already-built parts. fanout may be nil.
func NewRunnerWith(plans *requests.Registry, requester *httpclient.Requester, fanout *publishers.Fanout, log logger.Logger) *Runner {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Runner{plans: plans, requester: requester, fanout: fanout, log: log}
}

func loadFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		log.InfoObj("no publishers file configured; results are not forwarded", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	}

	cfgs, err := publishers.LoadConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	enabled := cfgs.Enabled()
	fanout, err := publishers.BuildFanout(ctx, publishers.DefaultFactory(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return fanout, nil
}

// Run submits all enabled plans concurrently and waits for every completion.
// The returned error joins the failure messages; a partial failure still
// yields a full Summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r == nil || r.requester == nil || r.plans == nil {
		return Summary{}, fmt.Errorf("runner is not initialized")
	}
	defer r.closeFanout()

	plans := r.plans.Enabled()
	if len(plans) == 0 {
		r.log.WarnObj("no enabled requests configured; nothing to do", "requests_count", 0)
		return Summary{}, nil
	}

	start := time.Now()
	r.log.InfoObj("run started", "run_meta", map[string]any{
		"requests_count":   len(plans),
		"publishers_count": r.fanout.Size(),
	})

	var mu sync.Mutex
	outcomes := make([]Outcome, len(plans))
	for i, plan := range plans {
		i, plan := i, plan
		r.requester.Send(ctx, plan.URL, plan.HTTPMethod(), plan.Headers, plan.Body, func(errMsg string, result httpclient.Result) {
			out := r.handle(ctx, plan, errMsg, result)
			mu.Lock()
			outcomes[i] = out
			mu.Unlock()
		})
	}
	r.requester.Wait()

	summary := Summary{Outcomes: outcomes}
	var errs []error
	for _, out := range outcomes {
		if out.Err != "" {
			summary.Failed++
			errs = append(errs, fmt.Errorf("request[%s]: %s", out.PlanID, out.Err))
			continue
		}
		summary.Succeeded++
	}

	r.log.InfoObj("run completed", "run_meta", map[string]any{
		"succeeded":  summary.Succeeded,
		"failed":     summary.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return summary, errors.Join(errs...)
}

func (r *Runner) handle(ctx context.Context, plan requests.Plan, errMsg string, result httpclient.Result) Outcome {
	out := Outcome{PlanID: plan.ID, Err: errMsg, Result: result}
	if errMsg != "" {
		r.log.ErrorObj("request failed", "request_outcome", map[string]any{
			"request_id": plan.ID,
			"error":      errMsg,
		})
		return out
	}

	r.log.InfoObj("request completed", "request_outcome", map[string]any{
		"request_id": plan.ID,
		"fields":     selectFields(result, plan.Fields),
	})

	if r.fanout.Size() == 0 {
		return out
	}
	evt := publishers.NewEvent(plan.ID, plan.HTTPMethod(), plan.URL, result)
	published, err := r.fanout.Publish(ctx, evt)
	out.Published = published
	if err != nil {
		r.log.ErrorObj("publish failed", "publish_error", map[string]any{
			"request_id": plan.ID,
			"published":  published,
			"error":      err.Error(),
		})
	}
	return out
}

// selectFields picks the named members from result; missing members are
// reported as null.
func selectFields(result httpclient.Result, fields []string) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = result[f].Interface()
	}
	return out
}

func (r *Runner) closeFanout() {
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
}
