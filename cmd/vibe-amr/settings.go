package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-amr/internal/translate"
	"github.com/inodb/vibe-amr/internal/vcf"
)

// Config keys
const (
	keyReferenceDir      = "reference.dir"
	keyAllowPartialCodon = "reference.allow_partial_codon"
	keyGenesForward      = "genes.forward"
	keyGenesComplement   = "genes.complement"
	keyUnmapped          = "translate.unmapped"
	keyNotation          = "translate.notation"
	keyWorkers           = "translate.workers"
	keySkipErrors        = "translate.skip_errors"
	keyDialect           = "vcf.dialect"
	keyDBPath            = "db.path"
)

func setDefaults() {
	viper.SetDefault(keyReferenceDir, "reference")
	viper.SetDefault(keyAllowPartialCodon, false)
	viper.SetDefault(keyUnmapped, "pass")
	viper.SetDefault(keyNotation, "protein")
	viper.SetDefault(keyWorkers, 0)
	viper.SetDefault(keySkipErrors, false)
	viper.SetDefault(keyDialect, "cryptic1")
}

// settings is the resolved configuration shared by the commands.
type settings struct {
	ReferenceDir      string
	AllowPartialCodon bool
	Genes             translate.GeneStrands
	Unmapped          translate.UnmappedPolicy
	Notation          translate.Notation
	Workers           int
	SkipErrors        bool
	Dialect           vcf.Dialect
	DBPath            string
}

func loadSettings() (*settings, error) {
	genes, err := geneStrands(viper.GetStringSlice(keyGenesForward), viper.GetStringSlice(keyGenesComplement))
	if err != nil {
		return nil, err
	}
	unmapped, err := translate.ParseUnmappedPolicy(viper.GetString(keyUnmapped))
	if err != nil {
		return nil, err
	}
	notation, err := translate.ParseNotation(viper.GetString(keyNotation))
	if err != nil {
		return nil, err
	}
	dialect, err := vcf.LookupDialect(viper.GetString(keyDialect))
	if err != nil {
		return nil, err
	}

	return &settings{
		ReferenceDir:      viper.GetString(keyReferenceDir),
		AllowPartialCodon: viper.GetBool(keyAllowPartialCodon),
		Genes:             genes,
		Unmapped:          unmapped,
		Notation:          notation,
		Workers:           viper.GetInt(keyWorkers),
		SkipErrors:        viper.GetBool(keySkipErrors),
		Dialect:           dialect,
		DBPath:            viper.GetString(keyDBPath),
	}, nil
}

// geneStrands builds the gene to strand mapping. Lists keep the gene
// symbol case, which viper map keys would not.
func geneStrands(forward, complement []string) (translate.GeneStrands, error) {
	genes := make(translate.GeneStrands, len(forward)+len(complement))
	for _, g := range forward {
		genes[g] = false
	}
	for _, g := range complement {
		if _, dup := genes[g]; dup {
			return nil, fmt.Errorf("gene %q is listed as both forward and complement", g)
		}
		genes[g] = true
	}
	return genes, nil
}

// bindFlags binds command flags to config keys. Binding happens per command
// run because several commands share a key.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
