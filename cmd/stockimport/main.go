// Comando stockimport: aplica un archivo de stock contra la base configurada.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/pipr-api/pkg/config"
	"github.com/jhoicas/pipr-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stockimport",
		Short:        "Carga masiva de stock por CEDI",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newMigrateCmd())
	return root
}

// exitCodeError permite terminar con un código distinto de 1.
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string { return e.err.Error() }
func (e exitCodeError) Unwrap() error { return e.err }

const (
	exitRowErrors = 2
	exitCancelled = 130
)

func loadEnv() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "warn",
		Service: "stockimport",
		Output:  os.Stderr,
	})
	return cfg, log, nil
}
