package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creed-trivia/internal/app"
	transport "creed-trivia/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	svc, err := loadServices(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.Close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = svc.cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	wsHandler := transport.NewWSHandler(svc.engine, app.NewRunner())
	api := transport.NewAPIHandler(svc.board, svc.library, svc.leaderboardLimit())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(wsHandler, api),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
