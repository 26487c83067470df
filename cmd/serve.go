package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mock interview as a local browser form",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().Bool("feedback", false, "show feedback after every answer")

	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := setup(ctx)

	feedback := d.config.Interview.Feedback
	if f, _ := cmd.Flags().GetBool("feedback"); f {
		feedback = true
	}

	server, err := web.New(d.machine, web.Config{Feedback: feedback}, d.logger)
	if err != nil {
		d.logger.Fatal("building the web form", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              d.config.Serve.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		d.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	d.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		d.logger.Error("server forced to shutdown", zap.Error(err))
	}
}
