package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"user-api/internal/api"
	"user-api/internal/config"
	"user-api/internal/repository"
	"user-api/internal/service"
)

var (
	flagConfig string
	flagPort   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "user-api",
	Short:         "In-memory user CRUD service",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServer,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides config and PORT)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		if err := cfg.WithPort(flagPort); err != nil {
			return err
		}
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize UserService
	var events service.EventWriter
	kafkaWriter := config.NewKafkaWriter(cfg.Kafka)
	if kafkaWriter != nil {
		events = kafkaWriter
		defer kafkaWriter.Close()
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msgf("Publishing user events to %s", cfg.Kafka.Topic)
	}

	userRepo := repository.NewUserRepository()
	userService := service.NewUserService(userRepo, events)
	userHandler := api.NewUserHandler(userService)

	e := api.NewRouter(cfg, userHandler, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Listening on %s", cfg.Addr())
		errCh <- e.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}
