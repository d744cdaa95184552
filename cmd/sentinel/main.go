// Command sentinel is the SentinelLite triage client. It talks to the
// backend API when it is reachable and transparently falls back to the
// local synthetic dataset when it is not; either way the same commands
// work and print the same JSON shapes.
//
// Usage:
//
//	sentinel [flags] <command> [command flags] [args]
//
// Commands:
//
//	login <email> <password>   authenticate and persist the session
//	logout                     clear the session (best-effort remote notify)
//	whoami                     print the last-known user
//	health                     print the service health map
//	stats                      print the dashboard aggregate
//	logs                       list log entries (-page -limit -source -status -search)
//	review <log-id> <bool>     set the reviewed flag on a log entry
//	alerts                     list alerts (-severity -status)
//	triage <alert-id> <state>  set an alert's status
//	create-alert               create an alert (-reason -ip -severity -risk -rule -raw)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/sentinellite/sentinel/internal/client"
	"github.com/sentinellite/sentinel/internal/config"
	"github.com/sentinellite/sentinel/internal/model"
	"github.com/sentinellite/sentinel/internal/probe"
	"github.com/sentinellite/sentinel/internal/query"
	"github.com/sentinellite/sentinel/internal/session"
	"github.com/sentinellite/sentinel/internal/synthetic"
)

func main() {
	var (
		configPath string
		baseURL    string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&baseURL, "base-url", "", "override the API base URL")
	flag.StringVar(&logLevel, "log-level", "", "override the log level: debug | info | warn | error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.DefaultClientConfig()
	if configPath != "" {
		loaded, err := config.LoadClientConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if baseURL != "" {
		cfg.APIBaseURL = baseURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	sess, err := session.Open(cfg.SessionPath)
	if err != nil {
		logger.Error("failed to open session store", slog.Any("error", err))
		os.Exit(1)
	}
	defer sess.Close()

	p := probe.New(cfg.APIBaseURL, cfg.HealthTimeout.Std(), logger)
	c := client.New(cfg.APIBaseURL, p, sess, synthetic.NewStore(time.Now().UTC()),
		client.WithLatencyScale(cfg.LatencyScale),
		client.WithLogger(logger),
	)

	ctx := context.Background()
	if err := run(ctx, c, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sentinel:", err)
		os.Exit(1)
	}
}

// run dispatches one command against the resilient client.
func run(ctx context.Context, c *client.Client, command string, args []string) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: sentinel login <email> <password>")
		}
		user, err := c.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(user)

	case "logout":
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("session cleared")
		return nil

	case "whoami":
		user, ok := c.CurrentUser()
		if !ok {
			return fmt.Errorf("no active session; run 'sentinel login' first")
		}
		return printJSON(user)

	case "health":
		hs, err := c.Health(ctx)
		if err != nil {
			return err
		}
		return printJSON(hs)

	case "stats":
		stats, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)

	case "logs":
		fs := flag.NewFlagSet("logs", flag.ContinueOnError)
		page := fs.Int("page", 1, "1-based page number")
		limit := fs.Int("limit", 20, "page size")
		source := fs.String("source", "", "filter by source: SSH | Web | Auth | System")
		status := fs.String("status", "", "filter by status: Normal | Suspicious")
		search := fs.String("search", "", "case-insensitive substring search")
		if err := fs.Parse(args); err != nil {
			return err
		}
		pageResp, err := c.Logs(ctx, *page, *limit, query.LogFilter{
			Source: model.LogSource(*source),
			Status: model.LogStatus(*status),
			Search: *search,
		})
		if err != nil {
			return err
		}
		return printJSON(pageResp)

	case "review":
		if len(args) != 2 {
			return fmt.Errorf("usage: sentinel review <log-id> <true|false>")
		}
		reviewed, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("reviewed flag must be true or false: %w", err)
		}
		entry, err := c.UpdateLog(ctx, args[0], model.LogUpdate{IsReviewed: &reviewed})
		if err != nil {
			return err
		}
		return printJSON(entry)

	case "alerts":
		fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
		severity := fs.String("severity", "", "filter by severity: Low | Medium | High | Critical")
		status := fs.String("status", "", "filter by status: Open | Isolated | Resolved | 'False Positive'")
		if err := fs.Parse(args); err != nil {
			return err
		}
		alerts, err := c.Alerts(ctx, query.AlertFilter{
			Severity: model.Severity(*severity),
			Status:   model.AlertStatus(*status),
		})
		if err != nil {
			return err
		}
		return printJSON(alerts)

	case "triage":
		if len(args) != 2 {
			return fmt.Errorf("usage: sentinel triage <alert-id> <Open|Isolated|Resolved|'False Positive'>")
		}
		alert, err := c.UpdateAlert(ctx, args[0], model.AlertStatus(args[1]))
		if err != nil {
			return err
		}
		return printJSON(alert)

	case "create-alert":
		fs := flag.NewFlagSet("create-alert", flag.ContinueOnError)
		reason := fs.String("reason", "", "human-readable reason")
		ip := fs.String("ip", "", "origin IP address")
		severity := fs.String("severity", "", "severity: Low | Medium | High | Critical")
		risk := fs.Int("risk", -1, "risk score 0-100")
		rule := fs.String("rule", "", "detection rule identifier")
		raw := fs.String("raw", "", "raw evidence text")
		if err := fs.Parse(args); err != nil {
			return err
		}
		draft := model.AlertDraft{
			Reason:        *reason,
			IPAddress:     *ip,
			Severity:      model.Severity(*severity),
			RuleTriggered: *rule,
			RawLog:        *raw,
		}
		if *risk >= 0 {
			draft.RiskScore = risk
		}
		alert, err := c.CreateAlert(ctx, draft)
		if err != nil {
			return err
		}
		return printJSON(alert)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sentinel [flags] <command> [command flags] [args]

Commands:
  login <email> <password>   authenticate and persist the session
  logout                     clear the session
  whoami                     print the last-known user
  health                     print the service health map
  stats                      print the dashboard aggregate
  logs                       list log entries
  review <log-id> <bool>     set the reviewed flag on a log entry
  alerts                     list alerts
  triage <alert-id> <state>  set an alert's status
  create-alert               create an alert

Flags:
`)
	flag.PrintDefaults()
}

// newLogger constructs a *slog.Logger that writes JSON-structured log
// records to stderr at the requested minimum level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
