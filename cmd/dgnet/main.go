package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	docopt "github.com/docopt/docopt-go"
	"github.com/gonet/dgnet/internal/app"
	"github.com/gonet/dgnet/internal/config"
	"github.com/gonet/dgnet/internal/logger"
	"github.com/gonet/dgnet/pkg/httpclient"
	"github.com/gonet/dgnet/pkg/jsonvalue"
)

const (
	binName = "dgnet"
	version = "dgnet 0.1.0"
)

const usage = `dgnet: submit JSON HTTP requests over a shared session.

Usage:
  dgnet get <url> [-H <header>]...
  dgnet post <url> [-H <header>]... [-d <json>]
  dgnet run [--requests=<file>]
  dgnet -h | --help
  dgnet --version

Options:
  -H <header>          Extra request header, "Name: value". Repeatable.
  -d <json>            POST body as JSON text [default: {}].
  --requests=<file>    Request plans file (overrides REQUESTS_FILE).
  -h --help            Show this screen.
  --version            Show version.
`

type params struct {
	Get      bool
	Post     bool
	Run      bool
	URL      string   `docopt:"<url>"`
	Headers  []string `docopt:"-H"`
	Data     string   `docopt:"-d"`
	Requests string   `docopt:"--requests"`
	Help     bool     `docopt:"--help"`
	Version  bool     `docopt:"--version"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	parser := &docopt.Parser{HelpHandler: docopt.NoHelpHandler, SkipHelpFlags: true}
	opts, err := parser.ParseArgs(usage, argv, "")
	if err != nil {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var args params
	if err := opts.Bind(&args); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 2
	}
	if args.Help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if args.Version {
		fmt.Fprintln(stdout, version)
		return 0
	}

	if err := execute(args, stdout); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", binName, err)
		return 1
	}
	return 0
}

func execute(args params, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if args.Requests != "" {
		cfg.RequestsFile = args.Requests
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case args.Run:
		runner, err := app.NewRunner(ctx, cfg, log)
		if err != nil {
			return err
		}
		summary, err := runner.Run(ctx)
		for _, out := range summary.Outcomes {
			if out.Err != "" {
				continue
			}
			if werr := writeResult(stdout, out.PlanID, out.Result); werr != nil {
				return werr
			}
		}
		return err
	default:
		headers, err := parseHeaders(args.Headers)
		if err != nil {
			return err
		}
		requester := app.NewRequester(cfg, log)

		var errMsg string
		var result httpclient.Result
		done := func(msg string, res httpclient.Result) { errMsg, result = msg, res }
		if args.Post {
			body, err := parseBody(args.Data)
			if err != nil {
				return err
			}
			requester.HTTPPost(ctx, args.URL, headers, body, done)
		} else {
			requester.HTTPGet(ctx, args.URL, headers, done)
		}
		requester.Wait()

		if errMsg != "" {
			return fmt.Errorf("%s", errMsg)
		}
		return writeResult(stdout, "", result)
	}
}

// parseHeaders turns "Name: value" pairs into a map. A repeated name keeps
// the last value.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected \"Name: value\")", h)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

func parseBody(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := jsonvalue.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid -d body: %w", err)
	}
	return v, nil
}

func writeResult(w io.Writer, label string, result httpclient.Result) error {
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if label != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", label); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%s\n", raw)
	return err
}
