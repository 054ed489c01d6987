package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"quote-service/internal/config"
	"quote-service/internal/fileio"
	"quote-service/internal/quote/model"
	"quote-service/internal/quote/service"
)

type reconcileOutput struct {
	model.ReconcileReport
	Quote *model.QuoteView `json:"quote,omitempty"`
}

func newReconcileCmd(cfgFile *string) *cobra.Command {
	var (
		catalogPath string
		docPath     string
		headerRow   int
		generate    bool
		customer    string
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match a document against a price list and print the cart as JSON",
		Long: `Loads the catalog (.xlsx, .xls or .csv), reconciles the document into a fresh cart
and prints the reconciliation report. With --generate the quote built from that cart is included.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
				With().Timestamp().Logger()

			if catalogPath == "" {
				catalogPath = cfg.CatalogFile
			}
			mapping := cfg.CatalogMapping()
			if headerRow > 0 {
				mapping.HeaderRow = headerRow
			}
			cat, err := service.LoadCatalogFile(catalogPath, mapping)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			eng := service.NewEngine(cat, cfg.MatchOptions())

			f, err := os.Open(docPath)
			if err != nil {
				return err
			}
			defer f.Close()
			text, err := fileio.ReadDocument(f, filepath.Base(docPath))
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}

			sess := service.NewSession()
			out := reconcileOutput{ReconcileReport: sess.UploadDocument(eng, text)}
			logger.Info().
				Int("products", cat.Len()).
				Int("resolutions", len(out.Resolutions)).
				Int("items", out.Cart.Items).
				Msg("document reconciled")

			if generate {
				q, err := sess.GenerateQuote(time.Now(), customer)
				if err != nil {
					return err
				}
				out.Quote = &q
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "price list file (defaults to CATALOG_FILE)")
	cmd.Flags().StringVar(&docPath, "doc", "", "document to reconcile (text, .csv, .xlsx, .xls)")
	cmd.Flags().IntVar(&headerRow, "header-row", 0, "1-based header row of the price list (defaults to CATALOG_HEADER_ROW)")
	cmd.Flags().BoolVar(&generate, "generate", false, "also generate a quote from the reconciled cart")
	cmd.Flags().StringVar(&customer, "customer", "", "customer name recorded on the generated quote")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}
