package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

var pdfGetManPath string

func init() {
	pdfGetManCmd.Flags().StringVar(&pdfGetManPath, "path", "", "Path of the manually retrieved PDF (omit to mark pdf_not_available)")
	rootCmd.AddCommand(pdfGetCmd)
	rootCmd.AddCommand(pdfGetManCmd)
	rootCmd.AddCommand(pdfPrepCmd)
	rootCmd.AddCommand(pdfPrepManCmd)
}

var pdfGetCmd = &cobra.Command{
	Use:   "pdf-get",
	Short: "Link PDFs from the pdf directory to prescreened records",
	Long: `Link each prescreened record to data/pdfs/<ID>.pdf when the file
exists. Records without a PDF move to pdf_needs_retrieval on the first
pass and to pdf_needs_manual_retrieval on the next.`,
	RunE: runPdfGet,
}

func runPdfGet(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.PdfGet(cmd.Context(), mgr); err != nil {
		exitWithError(err)
	}
	return nil
}

var pdfGetManCmd = &cobra.Command{
	Use:   "pdf-get-man <record-id>",
	Short: "Record the outcome of manual PDF retrieval",
	Args:  cobra.ExactArgs(1),
	RunE:  runPdfGetMan,
}

func runPdfGetMan(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.PdfGetMan(cmd.Context(), mgr, args[0], pdfGetManPath); err != nil {
		exitWithError(err)
	}
	if pdfGetManPath == "" {
		fmt.Printf("%s marked pdf_not_available\n", args[0])
	}
	return nil
}

var pdfPrepCmd = &cobra.Command{
	Use:   "pdf-prep",
	Short: "Run the pdf quality model over imported PDFs",
	Long: `Check each imported PDF for extractable text, page-count coverage, and
incompleteness markers. Clean records advance to pdf_prepared.`,
	RunE: runPdfPrep,
}

func runPdfPrep(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.PdfPrep(cmd.Context(), mgr, nil); err != nil {
		exitWithError(err)
	}
	return nil
}

var pdfPrepManCmd = &cobra.Command{
	Use:   "pdf-prep-man",
	Short: "Re-evaluate manually prepared PDFs",
	RunE:  runPdfPrepMan,
}

func runPdfPrepMan(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.PdfPrepMan(cmd.Context(), mgr, nil); err != nil {
		exitWithError(err)
	}
	return nil
}
