package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/wastetrack/internal/client/auth"
	"github.com/iudanet/wastetrack/internal/client/session"
)

type snapshotStamp struct {
	At   time.Time
	Name string
}

type statusView struct {
	LastSync     time.Time
	TokenExpires *time.Time
	User         string
	State        session.State
	Snapshots    []snapshotStamp
	Pending      int
	Online       bool
}

func (c *Cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state, connectivity and pending requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			view := statusView{Online: c.session.IsOnline(ctx)}
			view.State = c.session.State()

			sess, err := c.auth.Session(ctx)
			switch {
			case err == nil:
				view.User = sess.UserName
				view.TokenExpires = sess.EndDate
			case !isNotLoggedIn(err):
				return err
			}

			if view.Pending, err = c.session.CountPendingRequests(ctx); err != nil {
				return err
			}
			if view.LastSync, err = c.session.LastSync(ctx); err != nil {
				return err
			}

			if p, ok := c.engine.Permissions(); ok {
				view.Snapshots = append(view.Snapshots, snapshotStamp{Name: "permissions", At: p.DownloadedAt})
			}
			if inv, ok := c.engine.Inventory(); ok {
				view.Snapshots = append(view.Snapshots, snapshotStamp{Name: "inventory", At: inv.DownloadedAt})
			}
			if md, ok := c.engine.MasterData(); ok {
				view.Snapshots = append(view.Snapshots, snapshotStamp{Name: "master data", At: md.DownloadedAt})
			}
			if op, ok := c.engine.Operation(); ok {
				view.Snapshots = append(view.Snapshots, snapshotStamp{Name: "operation", At: op.DownloadedAt})
			}

			if err := statusTmpl.Execute(c.io, view); err != nil {
				return fmt.Errorf("failed to render status: %w", err)
			}
			return nil
		},
	}
}

func (c *Cli) pendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List requests waiting for upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := c.queue.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := pendingTmpl.Execute(c.io, msgs); err != nil {
				return fmt.Errorf("failed to render pending requests: %w", err)
			}
			return nil
		},
	}
}

func isNotLoggedIn(err error) bool {
	return errors.Is(err, auth.ErrNotLoggedIn)
}
