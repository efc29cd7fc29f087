package main

import (
	"fmt"
	"time"

	"chat-widget/internal/chaturl"
	"chat-widget/internal/env"
	internaljwt "chat-widget/internal/jwt"
	"chat-widget/internal/model"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newURLCmd() *cobra.Command {
	var (
		configPath string
		platform   string
		legacy     bool
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the canonical surface URL for a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfiguration(configPath)
			if err != nil {
				return err
			}
			p, ok := model.ParsePlatform(platform)
			if !ok {
				return errors.Errorf("unknown platform %q", platform)
			}
			if !cfg.HasCredentials(p) {
				return errors.Errorf("configuration needs apiKey and the %s key", p)
			}

			encoding := chaturl.EncodingJSON
			if legacy {
				encoding = chaturl.EncodingFlattened
			}
			url, err := chaturl.Builder{Platform: p, Encoding: encoding}.Build(chaturl.BaseURL(cfg, env.Get(env.WidgetURL)), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "widget.yaml", "configuration file")
	cmd.Flags().StringVar(&platform, "platform", string(model.PlatformIOS), "ios or android")
	cmd.Flags().BoolVar(&legacy, "legacy-visitor", false, "flatten visitor fields into the query")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		tenant string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the host API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Require(env.HostSecret); err != nil {
				return err
			}
			internaljwt.Init(env.Get(env.HostSecret))

			res, err := internaljwt.CreateToken(internaljwt.Subject{TenantKey: tenant}, internaljwt.RoleOperator, time.Now().Add(ttl).Unix())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant key the token is scoped to")
	cmd.Flags().DurationVar(&ttl, "ttl", internaljwt.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
