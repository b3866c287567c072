package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kochabx/passport/config"
	"github.com/kochabx/passport/log"
)

const (
	appName   = "passport"
	envPrefix = "PASSPORT"
)

// cli 命令共享的状态
type cli struct {
	configFile string

	conf   *config.Config
	cfg    *Config
	logger *log.Logger
	deps   *deps
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Token session service",
		Long:          "passport issues, verifies, looks up and revokes token sessions backed by redis or etcd.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.init()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	cmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "passport.yaml", "config file path")

	cmd.AddCommand(
		newServeCmd(c),
		newIssueCmd(c),
		newVerifyCmd(c),
		newLookupCmd(c),
		newRevokeCmd(c),
		newMeCmd(c),
		newLoginCmd(c),
		newSweepCmd(c),
		newVersionCmd(),
	)
	return cmd
}

// init 加载配置并初始化全局日志
func (c *cli) init() error {
	c.cfg = &Config{}
	c.conf = config.New(c.cfg,
		config.WithFile(c.configFile, "."),
		config.WithEnvPrefix(envPrefix),
		config.WithOnChange(func(next any) {
			applyLogLevel(next.(*Config).Log.Level)
		}),
	)
	if err := c.conf.Load(); err != nil {
		return fmt.Errorf("load config %s: %w", c.configFile, err)
	}

	logger, err := log.NewFromConfig(c.cfg.Log)
	if err != nil {
		return err
	}
	log.SetGlobalLogger(logger)
	c.logger = logger
	c.deps = newDeps(c.cfg, logger)
	return nil
}

func (c *cli) close() error {
	var err error
	if c.deps != nil {
		err = c.deps.close()
	}
	if c.logger != nil {
		_ = c.logger.Close()
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
