package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kochabx/passport/core/auth/session"
)

func parseUID(s string) (int64, error) {
	uid, err := strconv.ParseInt(s, 10, 64)
	if err != nil || uid <= 0 {
		return 0, fmt.Errorf("invalid uid %q", s)
	}
	return uid, nil
}

func newIssueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "issue <uid>",
		Short: "Issue an access/refresh token pair for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUID(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			svc, err := c.deps.service(ctx, nil, nil)
			if err != nil {
				return err
			}
			pair, err := svc.GenerateTokens(ctx, uid)
			if err != nil {
				return err
			}
			return printJSON(cmd, pair)
		},
	}
}

type verifyOutput struct {
	Valid     bool      `json:"valid"`
	Result    string    `json:"result"`
	UID       int64     `json:"uid,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

func newVerifyCmd(c *cli) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token's signature and expiry without consulting the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Session.Init(); err != nil {
				return err
			}
			v := session.NewVerifier(&c.cfg.Session, session.WithLogger(c.logger))

			var res session.Verification
			if refresh {
				res = v.VerifyRefreshToken(args[0])
			} else {
				res = v.VerifyAccessToken(args[0])
			}

			out := verifyOutput{Valid: res.OK(), Result: res.Failure.String()}
			if res.OK() {
				out.UID = res.Claims.UID
				if res.Claims.ExpiresAt != nil {
					out.ExpiresAt = res.Claims.ExpiresAt.Time
				}
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "verify as a refresh token")
	return cmd
}

func newLookupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <token>",
		Short: "Print the cached session payload for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			svc, err := c.deps.service(ctx, nil, nil)
			if err != nil {
				return err
			}
			p, err := svc.GetUserPayloadByToken(ctx, args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("session not found")
			}
			return printJSON(cmd, p)
		},
	}
}

func newRevokeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Remove the session owning the given access or refresh token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			svc, err := c.deps.service(ctx, nil, nil)
			if err != nil {
				return err
			}
			removed, err := svc.RemoveToken(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]bool{"removed": removed})
		},
	}
}
