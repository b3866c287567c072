package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kochabx/passport/core/auth/session"
)

func newSweepCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one pass of the orphaned session key sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			svc, err := c.deps.service(ctx, nil, nil)
			if err != nil {
				return err
			}
			sink, err := c.deps.auditSink()
			if err != nil {
				return err
			}
			sw, err := session.NewSweeper(svc.Config(), c.deps.cache, c.cfg.Sweeper,
				session.WithLogger(c.logger),
				session.WithAuditSink(sink),
			)
			if err != nil {
				return err
			}
			defer func() { _ = sw.Shutdown(context.Background()) }()

			ctx, cancel := context.WithTimeout(ctx, sw.Timeout())
			defer cancel()
			res, err := sw.Sweep(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}
