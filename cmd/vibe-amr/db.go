package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-amr/internal/duckdb"
	"github.com/inodb/vibe-amr/internal/output"
	"github.com/inodb/vibe-amr/internal/vcf"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Query the DuckDB store of translated variants",
		Long:  "Query, list inputs of, or clear the DuckDB file written by translate --db.",
		Example: `  vibe-amr db query --db amr.duckdb --gene rpoB --mutation 450SL
  vibe-amr db query --db amr.duckdb --isolate 01.02.1234.ABC.7.8.9.10
  vibe-amr db sources --db amr.duckdb
  vibe-amr db clear --db amr.duckdb`,
	}
	cmd.PersistentFlags().String("db", "", "DuckDB file (default: db.path from config)")
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := c.Root().PersistentPreRunE(c, args); err != nil {
			return err
		}
		return viper.BindPFlag(keyDBPath, cmd.PersistentFlags().Lookup("db"))
	}

	cmd.AddCommand(newDBQueryCmd())
	cmd.AddCommand(newDBSourcesCmd())
	cmd.AddCommand(newDBClearCmd())
	return cmd
}

func openConfiguredDB() (*duckdb.Store, error) {
	path := viper.GetString(keyDBPath)
	if path == "" {
		return nil, fmt.Errorf("no database: use --db or set %s", keyDBPath)
	}
	return duckdb.Open(path)
}

func newDBQueryCmd() *cobra.Command {
	var gene, mutation, isolate string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print stored rows as a variant table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredDB()
			if err != nil {
				return err
			}
			defer store.Close()
			return runDBQuery(cmd.OutOrStdout(), store, gene, mutation, isolate)
		},
	}

	cmd.Flags().StringVar(&gene, "gene", "", "Only rows of this gene")
	cmd.Flags().StringVar(&mutation, "mutation", "", "Only rows with this mutation label (needs --gene)")
	cmd.Flags().StringVar(&isolate, "isolate", "", "Only rows of this isolate")
	return cmd
}

func runDBQuery(w io.Writer, store *duckdb.Store, gene, mutation, isolate string) error {
	var (
		rows []*vcf.Row
		err  error
	)
	switch {
	case mutation != "" && gene == "":
		return fmt.Errorf("--mutation needs --gene")
	case mutation != "":
		rows, err = store.SearchByMutation(gene, mutation)
	case gene != "":
		rows, err = store.SearchByGene(gene)
	case isolate != "":
		rows, err = store.SearchByIsolate(isolate)
	default:
		rows, err = store.LoadRows()
	}
	if err != nil {
		return err
	}

	if isolate != "" && gene != "" {
		kept := rows[:0]
		for _, r := range rows {
			if r.UniqueID == isolate {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	return output.NewTabWriter(w).WriteAll(rows)
}

func newDBSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List ingested input files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredDB()
			if err != nil {
				return err
			}
			defer store.Close()

			sources, err := store.Sources()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range sources {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Path, formatSize(s.Size), s.ModTime.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}

func newDBClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all stored rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredDB()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Count()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d rows from %s\n", n, store.Path())
			return nil
		},
	}
}
