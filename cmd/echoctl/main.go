package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"echoreport/internal/app"
	"echoreport/internal/config"
	"echoreport/internal/form"
	"echoreport/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "echoctl",
		Short: "Echo report catalogue and report store tools",
	}

	rootCmd.AddCommand(
		newLintCmd(),
		newFieldsCmd(),
		newExportCmd(),
		newSeedCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [catalogue.yaml]",
		Short: "Check a catalogue file for schema errors",
		Long: `Load a catalogue the way the server does and report every problem found.

Without an argument the built-in catalogue is checked.

Example: echoctl lint ./catalogue.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := app.LoadCatalogue(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d fields, %d derivations, %d columns\n",
				cat.Schema.Len(), len(cat.Schema.Derivations()), len(cat.Mapper.Columns()))
			return nil
		},
	}
}

func newFieldsCmd() *cobra.Command {
	var schemaPath string
	var section string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List catalogue fields in declaration order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := app.LoadCatalogue(schemaPath)
			if err != nil {
				return err
			}
			return printFields(cmd, cat, section)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", os.Getenv("SCHEMA_PATH"), "Catalogue file (default: built-in)")
	cmd.Flags().StringVar(&section, "section", "", "Only list fields of this section")
	return cmd
}

func printFields(cmd *cobra.Command, cat *form.Catalogue, section string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tFIELD\tKIND\tFLAGS\tSHOWN WHEN")
	for _, f := range cat.Schema.Fields() {
		if section != "" && f.Section != section {
			continue
		}
		var flags []string
		if f.Required {
			flags = append(flags, "required")
		}
		if f.Computed {
			flags = append(flags, "computed")
		}
		when := "-"
		if f.Conditional() {
			when = fmt.Sprintf("%s in [%s]", f.ControlledBy, strings.Join(f.ActivatedBy, ", "))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.Section, f.Name, f.Kind, strings.Join(flags, ","), when)
	}
	return w.Flush()
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stored report to a spreadsheet",
		Long: `Write all submitted reports to an .xlsx workbook, one row per report.

The store is chosen by STORAGE_BACKEND (mongo or sqlite).

Example: STORAGE_BACKEND=sqlite echoctl export --out reports.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "echo_reports.xlsx", "Output file path")
	return cmd
}

func runExport(ctx context.Context, out string) error {
	cfg := config.Load()
	cat, err := app.LoadCatalogue(cfg.SchemaPath)
	if err != nil {
		return err
	}
	reports, closeReports, err := app.OpenReports(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeReports()

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	n, err := service.NewReportService(reports, cat).ExportXLSX(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d reports to %s\n", n, out)
	return nil
}

func newSeedCmd() *cobra.Command {
	var clinicianID string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Submit a complete demo report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			sessions := service.NewSessionService(a.Catalogue, a.Drafts, a.Reports)
			res, err := app.SeedDemo(ctx, sessions, clinicianID)
			if err != nil {
				return err
			}
			fmt.Printf("Created report %s\n", res.ReportID)
			return nil
		},
	}

	cmd.Flags().StringVar(&clinicianID, "clinician", "clinician_seed", "Clinician recorded as the report author")
	return cmd
}
