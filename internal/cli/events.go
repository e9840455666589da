package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool
	var player string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream board events",
		Long: `Connect to the SSE endpoint and stream events in real-time.

Events:
  - player_joined: a player was placed on the board
  - player_moved: a player moved one square

Events carry ciphertext handles only. Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), player, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&player, "player", "", "Only show events for this player ID")
	cmd.AddCommand(newEventsLogCmd())

	return cmd
}

func newEventsLogCmd() *cobra.Command {
	var from, limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Page through the persisted event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("from", strconv.Itoa(from))
			q.Set("limit", strconv.Itoa(limit))

			var result EventLog
			if err := client.Get("/api/v1/events/log?"+q.Encode(), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 1, "First sequence number")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum events to return")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	ID    string    `json:"id,omitempty"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, w io.Writer, player string, jsonOutput bool) error {
	target := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/events"
	if player != "" {
		target += "?player=" + url.QueryEscape(player)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Connected to event stream")
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	var current SSEEvent
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "id: "):
			current.ID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			current.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event; comment-only keepalives have no name
			if current.Event != "" {
				current.Data = strings.Join(dataLines, "\n")
				current.Time = time.Now()
				printEvent(w, current, jsonOutput)
			}
			current = SSEEvent{}
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, evt SSEEvent, jsonOutput bool) {
	if jsonOutput {
		jsonData, _ := json.Marshal(evt)
		fmt.Fprintln(w, string(jsonData))
		return
	}

	var e Event
	if err := json.Unmarshal([]byte(evt.Data), &e); err != nil {
		fmt.Fprintf(w, "[%s] %s: %s\n", evt.Time.Format("2006-01-02 15:04:05"), evt.Event, evt.Data)
		return
	}
	fmt.Fprintf(w, "[%s] #%d %s %s\n", evt.Time.Format("2006-01-02 15:04:05"), e.Seq, evt.Event, e.PlayerID)
}
