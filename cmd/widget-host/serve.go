package main

import (
	"context"
	"os/signal"
	"syscall"

	"chat-widget/internal/api"
	"chat-widget/internal/api/router"
	"chat-widget/internal/chaturl"
	"chat-widget/internal/database"
	"chat-widget/internal/env"
	internaljwt "chat-widget/internal/jwt"
	"chat-widget/internal/model"
	"chat-widget/internal/queue"
	"chat-widget/internal/service/transcript"
	"chat-widget/internal/websocket"
	"chat-widget/internal/widget"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		workers int
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host API and renderer websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Require(env.ServeRequired...); err != nil {
				return err
			}
			if addr == "" {
				addr = env.GetOrDefault(env.HostAddr, ":8080")
			}
			return serve(cmd.Context(), addr, workers, origins)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to $HOST_ADDR or :8080)")
	cmd.Flags().IntVar(&workers, "workers", 10, "request queue workers")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", nil, "CORS origins allowed to call the API")
	return cmd
}

func serve(parent context.Context, addr string, workers int, origins []string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Logger
	internaljwt.Init(env.MustGet(env.HostSecret))

	platform := model.PlatformIOS
	if p, ok := model.ParsePlatform(env.Get(env.WidgetPlatform)); ok {
		platform = p
	}

	db, err := database.NewDatabase(ctx)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	transcripts := transcript.New(db)

	redisClient := websocket.NewRedisClient(env.MustGet(env.ChatRedisURL), env.Get(env.ChatRedisPass))
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis ping failed")
	}

	surfaceURL := env.GetOrDefault(env.WidgetURL, chaturl.DefaultBaseURL)
	registry := prometheus.NewRegistry()
	hub := websocket.NewHub(logger)
	surface := websocket.NewHandler(hub, websocket.NewRedisPublisher(redisClient), transcripts, websocket.HandlerOptions{
		DefaultBaseURL: surfaceURL,
		Metrics:        widget.NewMetrics(registry),
	}, logger)
	subscriber := websocket.NewIntentSubscriber(redisClient, hub, logger)

	requestQueue := queue.NewManager(workers, logger)
	defer requestQueue.Shutdown()

	server := api.NewAPIServer(api.ServerConfig{
		ListenAddr:      addr,
		Queue:           requestQueue,
		Transcripts:     transcripts,
		Hub:             hub,
		Surface:         surface,
		DefaultPlatform: platform,
		DefaultBaseURL:  surfaceURL,
		AllowedOrigins:  origins,
		Registry:        registry,
		Logger:          logger,
	}, router.HostRoutes(router.HostPrefix)...)

	logger.Info().
		Str("addr", addr).
		Str("platform", string(platform)).
		Str("surface", surfaceURL).
		Msg("starting widget host")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	eg.Go(func() error {
		return subscriber.Run(ctx)
	})
	eg.Go(func() error {
		return server.Run(ctx)
	})
	return eg.Wait()
}
