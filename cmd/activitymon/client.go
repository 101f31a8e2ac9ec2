package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/commands"
	"github.com/actionsum/activitymon/internal/daemon"
	"github.com/actionsum/activitymon/internal/database"
	"github.com/actionsum/activitymon/internal/events"
	"github.com/actionsum/activitymon/internal/models"
	"github.com/actionsum/activitymon/pkg/detector"
	"github.com/actionsum/activitymon/pkg/utils"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func showStatus(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}

	if !running {
		if opts.jsonOutput {
			return printJSON(map[string]interface{}{"running": false, "pid_file": dm.PIDFile()})
		}
		fmt.Println("Status: Not running")
		fmt.Printf("PID file: %s\n", dm.PIDFile())
		return nil
	}

	status, err := fetchStatus(cfg.Address())
	if err != nil {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Web API unreachable: %v\n", err)
		return nil
	}
	status["pid"] = pid

	if opts.jsonOutput {
		return printJSON(status)
	}

	fmt.Printf("Status: Running (PID: %d)\n", pid)
	fmt.Printf("Tracking: %v\n", status["tracking"])
	if user, ok := status["user_id"]; ok {
		fmt.Printf("User: %v (team %v)\n", user, status["team_id"])
		fmt.Printf("Session: %v\n", status["session_id"])
	}
	fmt.Printf("Platform: %v (%v)\n", status["platform"], status["session_type"])
	fmt.Printf("Poll Interval: %v\n", status["poll_interval"])
	fmt.Printf("Auto Report: %v\n", status["auto_report"])
	if last, ok := status["last_sample"].(map[string]interface{}); ok {
		fmt.Printf("\nLast Sample:\n")
		fmt.Printf("  App: %v\n", last["active_app"])
		fmt.Printf("  Title: %v\n", last["window_title"])
		if idle, ok := last["idle_time"].(float64); ok {
			fmt.Printf("  Idle: %s\n", utils.FormatIdleSeconds(idle))
		}
	}
	return nil
}

func fetchStatus(addr string) (map[string]interface{}, error) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, errors.Wrap(err, "failed to decode status")
	}
	return status, nil
}

func showCurrent(opts *options) error {
	probe := detector.New()
	sample, err := commands.Capture(probe, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to sample active window")
	}

	if opts.jsonOutput {
		return printJSON(sample)
	}
	printSample(sample, probe.Platform())
	return nil
}

func printSample(sample models.Sample, platform string) {
	fmt.Printf("App: %s\n", sample.AppName)
	fmt.Printf("Title: %s\n", sample.WindowTitle)
	fmt.Printf("Idle: %s\n", utils.FormatIdleSeconds(sample.IdleSeconds))
	fmt.Printf("Platform: %s\n", platform)
}

func showErrors(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("diagnostics journal is disabled")
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return err
	}

	repo := database.NewRepository(db, zap.NewNop())

	if opts.clear {
		if err := repo.Clear(); err != nil {
			return err
		}
		fmt.Println("Error journal cleared")
		return nil
	}

	if opts.since > 0 {
		count, err := repo.CountSince(time.Now().Add(-opts.since))
		if err != nil {
			return err
		}
		if opts.jsonOutput {
			return printJSON(map[string]interface{}{"since": opts.since.String(), "count": count})
		}
		fmt.Printf("%d errors in the last %s\n", count, opts.since)
		return nil
	}

	logs, err := repo.Recent(opts.limit)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return printJSON(logs)
	}
	if len(logs) == 0 {
		fmt.Println("No errors recorded")
		return nil
	}
	for _, entry := range logs {
		fmt.Printf("%s  %-6s  %s\n", entry.Timestamp.Local().Format(time.DateTime), entry.Source, entry.ErrorMsg)
	}
	return nil
}

// watchActivity follows the daemon's websocket stream until interrupted.
func watchActivity(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsURL := url.URL{Scheme: "ws", Host: cfg.Address(), Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to connect to daemon")
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if !opts.jsonOutput {
		fmt.Printf("Watching %s (Ctrl+C to quit)\n", wsURL.String())
	}
	for {
		var ev events.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "activity stream closed")
		}
		if opts.jsonOutput {
			if err := printJSON(ev); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%s  %s  %q  idle %s\n",
			time.Unix(ev.Payload.Timestamp, 0).Format(time.TimeOnly),
			ev.Payload.AppName,
			ev.Payload.WindowTitle,
			utils.FormatIdleSeconds(ev.Payload.IdleSeconds))
	}
}
