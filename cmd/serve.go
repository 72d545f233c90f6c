package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saishankar404/tidy/pkg/analyzer"
	"github.com/saishankar404/tidy/pkg/chat"
	"github.com/saishankar404/tidy/pkg/config"
	"github.com/saishankar404/tidy/pkg/llm"
	"github.com/saishankar404/tidy/pkg/server"
	"github.com/saishankar404/tidy/pkg/store"
)

var (
	configPath   string
	addr         string
	serveVerbose bool
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Start the HTTP server that backs the editor: analysis runs,
chat sessions, per-user settings, and analysis history.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.tidy.yaml)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address override (e.g. :8790)")
	cmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Development logging")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	log, err := newLogger(serveVerbose)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client, err := llm.CreateFromEnv(cfg.Provider, cfg.Model)
	if err != nil {
		return err
	}

	analysisCfg := cfg.Analysis.AnalysisConfig()
	gateway := llm.NewGatewayWithWidth(client, analysisCfg.MaxConcurrency)
	orch := analyzer.NewOrchestrator(gateway, analysisCfg, log)
	assistant := chat.NewAssistant(gateway, log)

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := server.New(server.Options{
		Addr:           cfg.Addr,
		AllowedOrigins: cfg.AllowedOrigins,
	}, orch, assistant, st, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr), zap.String("provider", cfg.Provider))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
