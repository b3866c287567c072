package main

import (
	"github.com/spf13/cobra"

	"github.com/kochabx/passport/errors"
)

func newMeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "me <uid>",
		Short: "Print the public profile of a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUID(args[0])
			if err != nil {
				return err
			}
			dir, err := c.deps.directory()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			svc, err := c.deps.service(ctx, dir, nil)
			if err != nil {
				return err
			}
			info, err := svc.GetUserMe(ctx, uid)
			if err != nil {
				return err
			}
			if info == nil {
				return errors.NotFound("user %d not found", uid)
			}
			return printJSON(cmd, info)
		},
	}
}

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Check credentials against the user directory and issue a token pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.deps.directory()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			svc, err := c.deps.service(ctx, dir, nil)
			if err != nil {
				return err
			}
			pair, err := svc.Login(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, pair)
		},
	}
}
