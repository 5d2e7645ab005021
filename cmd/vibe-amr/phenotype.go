package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/duckdb"
	"github.com/inodb/vibe-amr/internal/output"
	"github.com/inodb/vibe-amr/internal/phenotype"
	"github.com/inodb/vibe-amr/internal/vcf"
	"github.com/inodb/vibe-amr/internal/xio"
)

type phenotypeInput struct {
	tables    []string
	samples   string
	gene      string
	ecoff     float64
	threshold int
	output    string
}

var phenotypeBindings = map[string]string{
	keyGenesForward:    "forward",
	keyGenesComplement: "complement",
	keyDBPath:          "db",
}

func newPhenotypeCmd() *cobra.Command {
	var in phenotypeInput

	cmd := &cobra.Command{
		Use:   "phenotype [flags] [table]...",
		Short: "Summarise phenotypes and MICs of translated variants",
		Long: `Join translated variants with an isolate sample table (UNIQUEID, PHENOTYPE,
METHOD_MIC) and report R/S isolate and variant counts per gene. With --gene
the solo mutations, frequent mutation MICs and an R/S tabulation at --ecoff
are reported too. Variants come from the table arguments or from --db.`,
		Example: `  vibe-amr phenotype --db amr.duckdb --samples samples.tsv
  vibe-amr phenotype --samples samples.csv --gene rpoB --ecoff 0.5 translated.tsv`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, phenotypeBindings)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			in.tables = args
			return runPhenotype(s, in)
		},
	}

	f := cmd.Flags()
	f.StringSlice("forward", nil, "Genes on the forward strand")
	f.StringSlice("complement", nil, "Genes on the reverse strand")
	f.String("db", "", "DuckDB file holding translated rows")
	f.StringVar(&in.samples, "samples", "", "Sample table with UNIQUEID, PHENOTYPE and METHOD_MIC columns")
	f.StringVar(&in.gene, "gene", "", "Gene to extract solos and MICs for")
	f.Float64Var(&in.ecoff, "ecoff", 1.0, "Epidemiological cutoff: MICs above it are resistant")
	f.IntVar(&in.threshold, "threshold", phenotype.DefaultThreshold, "Minimum observations of a mutation to report its MICs")
	f.StringVarP(&in.output, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("samples")

	return cmd
}

func runPhenotype(s *settings, in phenotypeInput) error {
	rows, err := loadTranslated(s, in.tables)
	if err != nil {
		return err
	}
	samples, err := phenotype.ReadSamples(in.samples)
	if err != nil {
		return err
	}

	obs, dropped, err := phenotype.Join(rows, samples)
	if err != nil {
		return err
	}
	logger.Info("joined phenotypes",
		zap.Int("rows", len(rows)),
		zap.Int("samples", len(samples)),
		zap.Int("without_sample", dropped))

	genes := s.Genes.Genes()
	if len(genes) == 0 {
		genes = observedGenes(obs)
	}

	w, err := xio.Create(in.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeReport(w, obs, genes, in); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func loadTranslated(s *settings, tables []string) ([]*vcf.Row, error) {
	if len(tables) == 0 {
		if s.DBPath == "" {
			return nil, errors.New("no variants: pass translated tables or --db")
		}
		store, err := duckdb.Open(s.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadRows()
	}

	var rows []*vcf.Row
	for _, path := range tables {
		tr, err := output.NewTableReader(path)
		if err != nil {
			return nil, err
		}
		r, err := vcf.ReadAll(tr)
		tr.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, r...)
	}
	return rows, nil
}

type reportSection struct {
	title string
	write func() error
}

func writeReport(w io.Writer, obs []phenotype.Observation, genes []string, in phenotypeInput) error {
	sections := []reportSection{
		{"isolates", func() error { return output.WriteCountTable(w, phenotype.IsolateTable(obs, genes)) }},
		{"variants", func() error { return output.WriteCountTable(w, phenotype.VariantTable(obs, genes)) }},
	}

	if in.gene != "" {
		solos, soloIDs := phenotype.ExtractSolos(in.gene, obs)
		mics := phenotype.ExtractMICs(in.gene, obs, in.threshold, soloIDs)
		tab := phenotype.Tabulate(mics, solos, soloIDs, obs, in.ecoff)
		sections = append(sections,
			reportSection{"solos " + in.gene, func() error { return output.WriteMICs(w, in.gene, solos) }},
			reportSection{"mics " + in.gene, func() error { return output.WriteMICs(w, in.gene, mics) }},
			reportSection{fmt.Sprintf("tabulation %s ecoff=%g", in.gene, in.ecoff), func() error { return output.WriteTabulation(w, tab) }},
		)
	}

	for i, sec := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", sec.title); err != nil {
			return err
		}
		if err := sec.write(); err != nil {
			return fmt.Errorf("write %s: %w", sec.title, err)
		}
	}
	return nil
}

func observedGenes(obs []phenotype.Observation) []string {
	seen := make(map[string]bool)
	var genes []string
	for _, o := range obs {
		if o.Gene != "" && !seen[o.Gene] {
			seen[o.Gene] = true
			genes = append(genes, o.Gene)
		}
	}
	sort.Strings(genes)
	return genes
}
