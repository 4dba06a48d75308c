// fetch.go implements "nymview fetch", which prints one page without the UI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/backend"
	"github.com/olivoil/nymview/internal/browser"
	"github.com/olivoil/nymview/internal/logging"
)

// errServerError is returned when the page came back as an ERROR: payload.
var errServerError = errors.New("server returned an error")

func newFetchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch nym://server/page",
		Short: "Print a page to stdout",
		Long: `Fetch a single page over the mixnet and print its markdown source.
The exit status is non-zero when the page cannot be loaded or the server
answers with an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := f.load(cmd)
			if err != nil {
				return err
			}
			url := strings.TrimSpace(args[0])
			if _, _, ok := address.ParseNymURL(url); !ok {
				return fmt.Errorf("%q is not a nym:// address", url)
			}

			log, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
			if err != nil {
				return fmt.Errorf("failed to start logging: %w", err)
			}
			defer log.Sync()

			mgr := newManager(cfg, log)
			defer mgr.Close()
			return fetch(cmd.Context(), mgr, url, cmd.OutOrStdout(), log)
		},
	}
}

// pollInterval is how often fetch drains session events.
const pollInterval = 50 * time.Millisecond

// fetch drives a browser state without a UI: it connects, requests url once
// the client address is known and writes the page body to w.
func fetch(ctx context.Context, mgr *backend.Manager, url string, w io.Writer, log *zap.Logger) error {
	state := browser.New(mgr.Requests(), mgr.Inbox(), browser.WithLogger(log.Named("browser")))
	mgr.Init()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	requested := false
	for {
		state.Tick(time.Now())

		status := mgr.Status()
		switch {
		case status.State == backend.Failed:
			return fmt.Errorf("connect: %s", status.Reason)
		case state.Err() != nil:
			return state.Err()
		case !requested && state.ClientAddress() != "":
			if err := state.SubmitAddress(url); err != nil {
				return err
			}
			requested = true
		case requested && !state.PageLoading():
			page := state.Page()
			if _, err := io.WriteString(w, page.Body); err != nil {
				return err
			}
			if !strings.HasSuffix(page.Body, "\n") {
				_, _ = io.WriteString(w, "\n")
			}
			if page.Kind == backend.ResponseError {
				return errServerError
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
