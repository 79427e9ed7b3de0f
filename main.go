package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spybot/internal/adapters/crypto"
	"spybot/internal/adapters/handler"
	"spybot/internal/adapters/sender"
	"spybot/internal/adapters/social"
	"spybot/internal/adapters/store"
	"spybot/internal/config"
	"spybot/internal/core/domain"
	"spybot/internal/core/domain/command"
	"spybot/internal/core/port"
	"spybot/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("spybot failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "spybot",
		Short:         "Chat bot for tracking and posting to a microblogging account",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing config.toml")

	root.AddCommand(
		newServeCommand(&configDir),
		newMigrateCommand(&configDir),
		newVersionCommand(),
	)

	return root
}

func newServeCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}

			return serve(ctx, cfg)
		},
	}
}

func newMigrateCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.StorageDriver, cfg.StorageDSN)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}

			log.Info().Str("driver", cfg.StorageDriver).Msg("migrations applied")
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spybot %s\n", domain.Version)
		},
	}
}

func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		log.Error().Err(err).Msg("could not load config")
		return nil, err
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return cfg, nil
}

func credentialCodec(cfg *config.Config) (port.CredentialCodec, error) {
	if cfg.CredentialSecret == "" {
		log.Warn().Msg("security.credential_secret is not set, stored passwords are only base64 encoded")
		return crypto.Base64Codec{}, nil
	}

	return crypto.NewSealedCodec(cfg.CredentialSecret)
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Info().Str("version", domain.Version).Msg("starting spybot...")

	if cfg.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}

	st, err := store.Open(cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	codec, err := credentialCodec(cfg)
	if err != nil {
		return fmt.Errorf("failed initializing credential codec: %w", err)
	}

	gateway := service.NewUserGateway(st, codec)

	interactive := service.NewWorkQueue(domain.Interactive, cfg.InteractiveWorkers, cfg.QueueBuffer)
	network := service.NewWorkQueue(domain.Network, cfg.NetworkWorkers, cfg.QueueBuffer)

	var commandHandler *handler.Command

	b, err := bot.New(cfg.BotToken, handler.BotOptions(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		commandHandler.Handle(ctx, b, update)
	})...)
	if err != nil {
		return fmt.Errorf("failed initializing telegram bot: %w", err)
	}

	messenger := sender.NewTelegram(b)

	registry := command.NewBuiltins(command.Deps{
		Messenger:  messenger,
		Gateway:    gateway,
		Authorizer: service.NewAuthorizer(messenger),
		Social:     social.NewFactory(cfg.SocialAPIURL, cfg.SocialUserAgent, cfg.SocialTimeout),
		Network:    network,
		Queues:     []port.QueueStats{interactive, network},
		WebURL:     cfg.SocialWebURL,
	})
	dispatcher := command.NewDispatcher(registry, messenger, gateway)
	commandHandler = handler.NewCommand(dispatcher, interactive, messenger, cfg.HandlerTimeout)

	interactive.Start(ctx)
	network.Start(ctx)

	log.Info().Strs("commands", registry.ListCommands()).Msg("bot listening")
	b.Start(ctx)

	log.Info().Msg("shutting down, draining queues")
	interactive.Stop()
	network.Stop()

	return nil
}
