package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/eventbus"
	"github.com/spf13/cobra"
)

var watchFor time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the triggers and print notifications as they appear",
	Long: `Start the smart trigger detector and print each notification as it is
shown, snoozed or dismissed. Runs until interrupted or, with --for, until
the given time has passed.

Examples:
  flowstate notify watch
  flowstate notify watch --for 30m
  flowstate notify watch -v        # also print dismissals`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Detector == nil || app.Notifications == nil || app.Bus == nil {
			return fmt.Errorf("notifications require the trigger detector")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		out := &syncWriter{w: cmd.OutOrStdout()}
		printer := &eventPrinter{
			out:      out,
			active:   app.Notifications,
			location: app.Clock.Now().Location(),
			verbose:  cli.Verbose(),
		}
		app.Bus.Register(eventbus.ConsumerFunc{
			Keys: []string{
				notifications.RoutingKeyShown,
				notifications.RoutingKeySnoozed,
				notifications.RoutingKeyDismissed,
			},
			Fn: printer.handle,
		})

		if watchFor > 0 {
			timer := app.Clock.AfterFunc(watchFor, cancel)
			defer timer.Stop()
		}

		fmt.Fprintln(out, "Watching for notifications. Press Ctrl+C to stop.")
		if err := app.Detector.Start(ctx); err != nil {
			return fmt.Errorf("failed to start triggers: %w", err)
		}
		<-ctx.Done()
		app.Detector.Stop()

		fmt.Fprintf(out, "Stopped after %d notification(s).\n", printer.shownCount())
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "stop after this long (0 runs until interrupted)")
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type activeLookup interface {
	Get(id string) (notifications.Notification, bool)
}

// eventPrinter writes notification events as they are dispatched. Timer
// callbacks deliver events from other goroutines.
type eventPrinter struct {
	out      io.Writer
	active   activeLookup
	location *time.Location
	verbose  bool

	mu    sync.Mutex
	shown int
}

type notificationEvent struct {
	NotificationID string                      `json:"notification_id"`
	Kind           notifications.Kind          `json:"kind"`
	Title          string                      `json:"title"`
	Reason         notifications.DismissReason `json:"reason"`
	RefireAt       time.Time                   `json:"refire_at"`
}

func (p *eventPrinter) handle(_ context.Context, env *eventbus.Envelope) error {
	var event notificationEvent
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return fmt.Errorf("failed to decode %s: %w", env.RoutingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	at := env.OccurredAt.In(p.location).Format("15:04:05")
	switch env.RoutingKey {
	case notifications.RoutingKeyShown:
		p.shown++
		message := ""
		if n, ok := p.active.Get(event.NotificationID); ok {
			message = n.Message
		}
		fmt.Fprintf(p.out, "%s [%s] %s\n", at, event.Kind, event.Title)
		if message != "" {
			fmt.Fprintf(p.out, "         %s\n", message)
		}
	case notifications.RoutingKeySnoozed:
		fmt.Fprintf(p.out, "%s [%s] snoozed until %s\n", at, event.Kind, event.RefireAt.In(p.location).Format("15:04"))
	case notifications.RoutingKeyDismissed:
		if p.verbose {
			fmt.Fprintf(p.out, "%s [%s] dismissed (%s)\n", at, event.Kind, event.Reason)
		}
	}
	return nil
}

func (p *eventPrinter) shownCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown
}
