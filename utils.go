package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/martinerrazquin/utils/pkg"
)

func KnnCommand() *cobra.Command {
	var params pkg.KnnParameters

	var cmd = &cobra.Command{
		Use:   "knn -i trainData -t targetColumn [--test-file testData]",
		Short: "Scores a k-nearest-neighbours classifier for every k and weighting on a validation set, searching neighbours only once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := pkg.RunKnn(params)
			return err
		},
	}

	cmd.Flags().StringVarP(&params.TrainFile, "train-file", "i", "", "name of train file")
	cmd.Flags().StringVarP(&params.TestFile, "test-file", "", "", "name of test file (optional, holds out part of the train file if not present)")
	cmd.Flags().Float64VarP(&params.TestFraction, "test-fraction", "", 0.2, "fraction of the train file held out when there is no test file")
	cmd.Flags().StringVarP(&params.TargetColumn, "target-column", "t", "", "target column")
	cmd.Flags().StringSliceVarP(&params.CategoricalColumns, "categorical-columns", "", nil, "list of columns holding categorical data")
	cmd.Flags().Int64VarP(&params.RndSeed, "random-seed", "x", 42, "random seed")

	cmd.Flags().StringVarP(&params.Metric, "metric", "m", "euclidean", "distance metric: euclidean, manhattan, chebyshev or cosine")
	cmd.Flags().IntVarP(&params.Workers, "workers", "w", 0, "number of neighbour search workers (0 uses every CPU)")
	cmd.Flags().IntSliceVarP(&params.Ks, "k", "k", []int{5}, "numbers of neighbours to evaluate")
	cmd.Flags().StringSliceVarP(&params.Weightings, "weighting", "", []string{"uniform"}, "neighbour weightings to evaluate: uniform, inverse or root-inverse")
	cmd.Flags().IntVarP(&params.MaxK, "max-k", "", 0, "number of neighbours to search (defaults to the largest k)")

	cmd.Flags().StringVarP(&params.CacheFile, "cache-file", "c", "", "file to store the neighbour search in and reuse on later runs (optional)")
	cmd.Flags().StringVarP(&params.Compression, "compression", "", "none", "cache file compression: none, zstd or lz4")
	cmd.Flags().StringVarP(&params.PredictionsFile, "output", "o", "", "name of predictions output file (optional)")
	cmd.Flags().StringVarP(&params.CurvesFile, "curves-file", "", "", "name of precision-recall curves output file, binary targets only (optional)")

	_ = cmd.MarkFlagRequired("train-file")
	_ = cmd.MarkFlagRequired("target-column")

	return cmd
}

func DescribeCommand() *cobra.Command {
	var params pkg.DescribeParameters
	var fillValue string

	var cmd = &cobra.Command{
		Use:   "describe -i data [-t targetColumn]",
		Short: "Logs cardinality, modes and value counts of every column, and target statistics per column value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("fill-value") {
				params.FillValue = &fillValue
			}
			_, err := pkg.RunDescribe(params)
			return err
		},
	}

	cmd.Flags().StringVarP(&params.DataFile, "input", "i", "", "name of data input file")
	cmd.Flags().StringSliceVarP(&params.Columns, "columns", "", nil, "columns to describe (defaults to all)")
	cmd.Flags().StringVarP(&fillValue, "fill-value", "f", "", "value replacing empty cells (rows with empty cells are skipped if not present)")
	cmd.Flags().BoolVarP(&params.Strict, "strict", "", false, "skip rows with empty cells even when a fill value is given")
	cmd.Flags().StringVarP(&params.TargetColumn, "target-column", "t", "", "numeric target column to group by every other column (optional)")
	cmd.Flags().BoolVarP(&params.BinaryTarget, "binary", "b", false, "target holds 0/1 values, enables the binomial test")
	cmd.Flags().IntVarP(&params.Decimals, "decimals", "d", 3, "decimals of reported ratios")
	cmd.Flags().IntVarP(&params.TopValues, "top-values", "", 10, "most frequent values logged per column at debug level")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

var logLevel string
var logFormat string

func RootCommand() *cobra.Command {
	root := &cobra.Command{Use: "utils", PersistentPreRunE: setupLogging, SilenceUsage: true}

	root.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info error or debug")
	root.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	root.AddCommand(KnnCommand())
	root.AddCommand(DescribeCommand())
	return root
}

func main() {
	if err := RootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("")
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {

	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		return fmt.Errorf("invalid logging level %s", logLevel)
	}

	switch logFormat {
	case "pretty":
		setupPrettyLogging()
	case "json":
	default:
		return fmt.Errorf("invalid log format %s", logFormat)
	}
	return nil
}

func setupPrettyLogging() {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		default:
			return fmt.Sprintf("%s", i)
		}

	}
	log.Logger = log.Output(writer)

}
