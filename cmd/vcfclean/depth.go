package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vcfclean/internal/depth"
	"vcfclean/internal/vcf"
)

func newDepthCmd() *cobra.Command {
	var (
		sv         bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "depth <input.vcf[.gz]>",
		Short: "Depth-of-coverage statistics and DP filter recommendation",
		Long: `Collects FORMAT/DP values from the first sample of every record and
reports summary statistics, quantiles, a recommended strict filter window
anchored on the median, and an ASCII depth histogram.

With --sv, records lacking a usable DP fall back to balanced DR+DV
extraction for SV callers (cuteSV, Sniffles2) that report supporting reads
instead of depth; heavily imbalanced DR/DV pairs are excluded.`,
		Example: `  vcfclean depth calls.vcf.gz
  vcfclean depth --sv sv_calls.vcf.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDepth(args[0], sv, outputPath)
		},
	}

	cmd.Flags().BoolVar(&sv, "sv", false, "balanced DR+DV extraction when FORMAT/DP is absent or zero")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runDepth(input string, sv bool, outputPath string) error {
	logger := newLogger()
	defer logger.Sync()

	r, err := vcf.NewReader(input)
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Info("reading VCF", zap.String("path", input), zap.Bool("sv_mode", sv))

	collector := depth.NewCollector(sv)
	for {
		rec, err := r.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		collector.Add(rec)
	}

	stats, err := depth.NewStats(collector.Values())
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	depth.WriteReport(out, stats, input)
	return nil
}
