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

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptflow/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long:  `Starts the promptflow HTTP server with the REST API, the chat surfaces WebSocket and generation history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort > 0 {
			cfg.Server.Port = serverPort
		}

		a, err := newApp(cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, server.Deps{
			Workflow:  a.workflow,
			Graph:     a.store,
			Embedding: a.embedding,
			History:   a.history,
		})

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "promptflow server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Model: %s (%s)\n", cfg.Model, cfg.Provider)
		fmt.Fprintf(os.Stderr, "  History: %s\n", cfg.HistoryPath())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
