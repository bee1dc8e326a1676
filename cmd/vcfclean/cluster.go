package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vcfclean/internal/cluster"
	"vcfclean/internal/genome"
	"vcfclean/internal/store"
	"vcfclean/internal/vcf"
)

type clusterOptions struct {
	target       string
	pValue       float64
	minThreshold int64
	faiPath      string
	outputPath   string
	statsDB      string
}

func newClusterCmd() *cobra.Command {
	var opts clusterOptions

	cmd := &cobra.Command{
		Use:   "cluster <input.vcf[.gz]>",
		Short: "Remove clusters of variants spaced too tightly to be independent",
		Long: `Estimates a per-region variant density from a first pass over the input,
derives a minimum safe inter-variant spacing from it (spacings whose
probability under a random Poisson model falls below the p-value cutoff are
considered non-random), then streams the input a second time removing every
chain of records that violates the spacing. The target chromosome gets its
own density and threshold, so a structurally divergent region earns a more
permissive spacing than the genomic background.

Input must be sorted by position within each chromosome, and must be a
regular file: both passes re-open it, so stdin is not supported. Header
lines pass through verbatim; kept records are emitted byte for byte in
input order.`,
		Example: `  vcfclean cluster calls.vcf.gz > filtered.vcf
  vcfclean cluster --target-chrom Chr1_RagTag --fai ref.fa.fai -p 0.01 calls.vcf
  vcfclean cluster --stats-db ~/.vcfclean/runs.duckdb calls.vcf.gz -o filtered.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyClusterConfig(cmd, &opts)
			return runCluster(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.target, "target-chrom", "Chr1_RagTag", "target-region chromosome, given its own density and threshold")
	cmd.Flags().Float64VarP(&opts.pValue, "p-value", "p", 0.05, "statistical cutoff probability; spacings less likely than this are clustered")
	cmd.Flags().Int64Var(&opts.minThreshold, "min-threshold", 10, "floor on the spacing threshold in bases")
	cmd.Flags().StringVar(&opts.faiPath, "fai", "", "fai index with chromosome lengths (takes precedence over header contigs)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.statsDB, "stats-db", "", "DuckDB file to append the run summary to (optional)")

	return cmd
}

// applyClusterConfig fills in defaults from ~/.vcfclean.yaml for flags the
// user did not set.
func applyClusterConfig(cmd *cobra.Command, opts *clusterOptions) {
	if !cmd.Flags().Changed("target-chrom") && viper.IsSet("cluster.target-chrom") {
		opts.target = viper.GetString("cluster.target-chrom")
	}
	if !cmd.Flags().Changed("p-value") && viper.IsSet("cluster.p-value") {
		opts.pValue = viper.GetFloat64("cluster.p-value")
	}
	if !cmd.Flags().Changed("min-threshold") && viper.IsSet("cluster.min-threshold") {
		opts.minThreshold = viper.GetInt64("cluster.min-threshold")
	}
	if !cmd.Flags().Changed("fai") && viper.IsSet("cluster.fai") {
		opts.faiPath = viper.GetString("cluster.fai")
	}
	if !cmd.Flags().Changed("stats-db") && viper.IsSet("stats-db") {
		opts.statsDB = viper.GetString("stats-db")
	}
}

// validate rejects parameter values the threshold math cannot handle:
// -ln(1-p) is infinite at p=1 and undefined beyond it.
func (o clusterOptions) validate() error {
	if o.pValue <= 0 || o.pValue >= 1 {
		return fmt.Errorf("p-value must be strictly between 0 and 1, got %g", o.pValue)
	}
	return nil
}

// checkTwoPassInput rejects inputs that cannot be read twice. The density
// pass and the filter pass must see the same ordered records, so the input
// has to be a re-openable regular file — draining stdin on the first pass
// would leave nothing for the second.
func checkTwoPassInput(path string) error {
	if path == "-" {
		return fmt.Errorf("cluster reads its input twice and cannot use stdin; provide a file path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cluster reads its input twice and requires a regular file: %s", path)
	}
	return nil
}

func runCluster(input string, opts clusterOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := checkTwoPassInput(input); err != nil {
		return err
	}

	logger := newLogger()
	defer logger.Sync()

	var faiTable genome.LengthTable
	if opts.faiPath != "" {
		t, err := genome.ReadFai(opts.faiPath)
		if err != nil {
			return err
		}
		logger.Info("loaded fai index",
			zap.String("path", opts.faiPath),
			zap.Int("contigs", len(t)))
		faiTable = t
	}

	// Pass 1: contig lengths from the header, then a full density scan.
	r1, err := vcf.NewReader(input)
	if err != nil {
		return err
	}
	lengths := genome.Merge(faiTable, vcf.ContigLengths(r1.Header()))

	est := cluster.NewEstimator(opts.target, lengths)
	est.SetLogger(logger)
	if err := est.Scan(r1); err != nil {
		r1.Close()
		return err
	}
	r1.Close()

	densityTarget, densityOther := est.Densities()
	threshTarget := cluster.Threshold(densityTarget, opts.pValue, opts.minThreshold)
	threshOther := cluster.Threshold(densityOther, opts.pValue, opts.minThreshold)

	logger.Info("target region density",
		zap.String("chrom", opts.target),
		zap.Float64("density", densityTarget),
		zap.Int64("bases_per_variant", int64(1/densityTarget)),
		zap.Int64("threshold_bp", threshTarget))
	logger.Info("background density",
		zap.Float64("density", densityOther),
		zap.Int64("bases_per_variant", int64(1/densityOther)),
		zap.Int64("threshold_bp", threshOther))
	logger.Info("filter parameters",
		zap.Float64("p_value", opts.pValue),
		zap.Int64("min_threshold_bp", opts.minThreshold))

	// Pass 2: the filtering pass over the same ordered records.
	out := os.Stdout
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)

	r2, err := vcf.NewReader(input)
	if err != nil {
		return err
	}
	defer r2.Close()

	for _, line := range r2.Header() {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	engine := cluster.NewEngine(bw, opts.target, threshTarget, threshOther)
	engine.SetLogger(logger)
	if err := engine.Run(r2); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	sum := engine.Summary()
	logger.Info("filtering complete",
		zap.Int64("kept", sum.Kept),
		zap.Int64("removed", sum.Removed),
		zap.Int("malformed_lines_skipped", r2.Skipped()))

	if opts.statsDB != "" {
		if err := recordRun(opts, input, densityTarget, densityOther, threshTarget, threshOther, sum); err != nil {
			// The filtered output is already written; a stats failure is
			// not worth a non-zero exit.
			logger.Warn("could not record run summary", zap.Error(err))
		}
	}

	return nil
}

func recordRun(opts clusterOptions, input string, densityTarget, densityOther float64, threshTarget, threshOther int64, sum cluster.Summary) error {
	s, err := store.Open(opts.statsDB)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.WriteRunSummary(store.RunSummary{
		RunAt:           time.Now(),
		Input:           input,
		TargetChrom:     opts.target,
		PValue:          opts.pValue,
		MinThreshold:    opts.minThreshold,
		DensityTarget:   densityTarget,
		DensityOther:    densityOther,
		ThresholdTarget: threshTarget,
		ThresholdOther:  threshOther,
		Kept:            sum.Kept,
		Removed:         sum.Removed,
	})
}
