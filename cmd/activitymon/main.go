package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "activitymon"

// options holds the flags shared by every command.
type options struct {
	configPath string
	port       int
	jsonOutput bool
	limit      int
	userID     string
	teamID     string
	token      string
	clear      bool
	since      time.Duration
}

func parseFlags(command string, args []string) (*options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet(appName+" "+command, pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file (default: $ACTIVITYMON_CONFIG)")
	flagSet.IntVarP(&opts.port, "port", "p", 0, "override the web API port")
	flagSet.BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")
	flagSet.IntVarP(&opts.limit, "limit", "n", 20, "number of journal entries to show")
	flagSet.BoolVar(&opts.clear, "clear", false, "delete every journal entry")
	flagSet.DurationVar(&opts.since, "since", 0, "count journal entries recorded within this window, e.g. 24h")
	flagSet.StringVar(&opts.userID, "user-id", "", "start tracking immediately as this user")
	flagSet.StringVar(&opts.teamID, "team-id", "", "team to report to when tracking starts at boot")
	flagSet.StringVar(&opts.token, "token", os.Getenv("ACTIVITYMON_TOKEN"), "bearer token (default: $ACTIVITYMON_TOKEN)")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "help", "--help", "-h":
		printUsage()
		return
	case "version", "--version":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		return
	}

	opts, err := parseFlags(command, os.Args[2:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	switch command {
	case "start":
		err = startDaemon(opts)
	case "run":
		err = runForeground(opts)
	case "stop":
		err = stopDaemon(opts)
	case "status":
		err = showStatus(opts)
	case "current":
		err = showCurrent(opts)
	case "errors":
		err = showErrors(opts)
	case "watch":
		err = watchActivity(opts)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`activitymon - Active window sampler and team activity reporter

Usage:
  activitymon <command> [options]

Commands:
  start              Start the daemon in the background
  run                Run the daemon in the foreground
  stop               Stop the background daemon
  status             Show daemon status and tracking state
  current            Sample the active window once and print it
  errors             List recent probe and report failures
  watch              Print activity updates from the running daemon
  version            Show version information
  help               Show this help message

Options:
  -c, --config PATH  YAML config file
  -p, --port N       Override the web API port
      --json         Print JSON output
  -n, --limit N      Number of journal entries for "errors" (default 20)
      --clear        Delete every journal entry ("errors")
      --since DUR    Count journal entries within DUR, e.g. 24h ("errors")
      --user-id ID   Start tracking at boot as this user (start/run)
      --team-id ID   Team to report to (start/run)
      --token TOKEN  Bearer token (default $ACTIVITYMON_TOKEN)

Tracking is controlled through the web API while the daemon runs:
  POST /api/tracking/start   {"user_id","team_id","token"}
  POST /api/tracking/stop
  GET  /api/activity/current
  POST /api/activity/send
  GET  /api/activity/stream  activity-update server-sent events
  GET  /ws                   activity-update stream

Environment Variables:
  ACTIVITYMON_CONFIG          Config file path
  ACTIVITYMON_POLL_INTERVAL   Poll interval in seconds (10-300)
  ACTIVITYMON_AUTO_REPORT     Submit every sample automatically (true/false)
  ACTIVITYMON_API_URL         Backend base URL
  ACTIVITYMON_WEB_PORT        Web API port
  ACTIVITYMON_DB_PATH         Diagnostics database path
  ACTIVITYMON_DB_RETENTION    Prune journal entries older than this (e.g. 720h, 0 keeps all)
  ACTIVITYMON_PID_FILE        PID file path
  ACTIVITYMON_LOG_LEVEL       debug, info, warn or error
  ACTIVITYMON_REDIS_URL       Publish activity updates to redis

Version: %s
`, version)
}
