package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/alfredjeanlab/adcl/internal/events"
	"github.com/alfredjeanlab/adcl/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [query]",
	Short: "Re-render the tree whenever a new changelog is loaded",
	Long: `Re-render the tree whenever a new changelog is loaded.

With a NATS URL (ADCL_NATS_URL or the active remote) the tree is
refreshed on every changelog load event; otherwise the server is polled.`,
	GroupID: "views",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		display, _ := cmd.Flags().GetString("display")

		w := &treeWatcher{
			out: cmd.OutOrStdout(),
			req: &client.ViewRequest{Display: display},
		}
		if len(args) == 1 {
			w.req.Filter = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := w.refresh(ctx); err != nil {
			return err
		}
		if once {
			return nil
		}

		natsURL := os.Getenv("ADCL_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return w.watchNATS(ctx, natsURL)
		}
		return w.watchPoll(ctx, interval)
	},
}

// treeWatcher prints the tree of each changelog load once.
type treeWatcher struct {
	out        io.Writer
	req        *client.ViewRequest
	lastLoadID string
}

// refresh re-renders the tree if the loaded changelog changed since the
// last render. Having nothing loaded is not an error.
func (w *treeWatcher) refresh(ctx context.Context) error {
	summary, err := changelogClient.GetChangelog(ctx)
	if client.IsNotFound(err) {
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("fetching changelog: %w", err)
	}
	if summary.LoadID == w.lastLoadID {
		return nil
	}

	tree, err := viewClient.GetTree(ctx, w.req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("fetching tree: %w", err)
	}
	w.lastLoadID = summary.LoadID

	if jsonOutput {
		return printJSON(w.out, tree)
	}
	fmt.Fprintln(w.out, ui.RenderAccent(fmt.Sprintf("== %s@%s (%s) ==", summary.Project, summary.Version, summary.LoadID)))
	printTree(w.out, tree.Nodes)
	printDiagnostics(w.out, tree.Diagnostics)
	return nil
}

// watchNATS refreshes on changelog load events with debounce.
func (w *treeWatcher) watchNATS(ctx context.Context, natsURL string) error {
	// reconnectCh receives a signal when the NATS client reconnects, so
	// loads missed while disconnected are picked up immediately.
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	loads, err := events.SubscribeLoads(ctx, sub)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-loads:
			if !ok {
				return nil
			}
			if ev.LoadID != w.lastLoadID {
				debounce.Reset(200 * time.Millisecond)
			}
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			if err := w.refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// watchPoll refreshes at the given interval.
func (w *treeWatcher) watchPoll(ctx context.Context, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := w.refresh(ctx); err != nil {
			return err
		}
	}
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after the first render")
	watchCmd.Flags().StringP("display", "d", "", "display policy: standard, compact or flatten")
}
