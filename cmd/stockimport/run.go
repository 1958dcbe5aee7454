package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/pipr-api/internal/application/inventory"
	"github.com/jhoicas/pipr-api/internal/bootstrap"
	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
	"github.com/jhoicas/pipr-api/internal/infrastructure/postgres"
)

type runOptions struct {
	file   string
	user   string
	format string
	dryRun bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Procesa un archivo CSV/XLSX de stock",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := uuid.Parse(strings.TrimSpace(opts.user)); err != nil {
				return fmt.Errorf("--user inválido: %w", err)
			}
			switch strings.ToLower(opts.format) {
			case "", inventory.FormatCSV, inventory.FormatXLSX:
			default:
				return fmt.Errorf("--format no soportado: %s", opts.format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Archivo a procesar (requerido)")
	cmd.Flags().StringVar(&opts.user, "user", "", "UUID del usuario que ejecuta la carga (requerido)")
	cmd.Flags().StringVar(&opts.format, "format", "", "csv | xlsx (por defecto según la extensión)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Valida y simula sin modificar stock")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runImport(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("leer archivo: %w", err)
	}

	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	stockImport := bootstrap.NewStockImport(cfg, pool, log, nil)
	defer func() { _ = stockImport.Close() }()

	stderr := cmd.ErrOrStderr()
	out, err := stockImport.UseCase.Run(ctx, inventory.BulkInput{
		UserID:   strings.TrimSpace(opts.user),
		FileName: filepath.Base(opts.file),
		Format:   strings.ToLower(opts.format),
		Data:     data,
		DryRun:   opts.dryRun,
	}, func(p stockimport.Progress) {
		fmt.Fprintf(stderr, "\rProcesando %d/%d (%.0f%%)", p.Completed, p.Total, p.Percent())
	})
	if out != nil {
		fmt.Fprintln(stderr)
		printResults(cmd.OutOrStdout(), out)
	}
	switch {
	case errors.Is(err, domain.ErrBatchCancelled):
		return exitCodeError{code: exitCancelled, err: err}
	case err != nil:
		return err
	case out.Summary.ErrorCount > 0:
		return exitCodeError{code: exitRowErrors, err: fmt.Errorf("%d filas con error", out.Summary.ErrorCount)}
	}
	return nil
}

func printResults(w io.Writer, out *inventory.BulkOutput) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILA\tSKU\tESTADO\tSTOCK ANTERIOR\tSTOCK NUEVO\tMENSAJE")
	for _, r := range out.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Row, r.SKU, r.Status, decStr(r.OldStock), decStr(r.NewStock), r.Message)
	}
	_ = tw.Flush()

	mode := "aplicado"
	if out.DryRun {
		mode = "simulación"
	}
	fmt.Fprintf(w, "\nLote %s (CEDI %d, %s): %d exitosas, %d con error, %d advertencias, %d total\n",
		out.BatchID, out.CediID, mode,
		out.Summary.SuccessCount, out.Summary.ErrorCount, out.Summary.WarningCount, out.Summary.TotalCount)
}

func decStr(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
