package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pixel-processing/internal/algorithms"
	"pixel-processing/internal/core"
	"pixel-processing/internal/imageio"
	"pixel-processing/internal/metrics"
)

var categoryOrder = []string{
	algorithms.CategoryPointwise,
	algorithms.CategoryFilters,
	algorithms.CategoryEdges,
	algorithms.CategoryThresholding,
	algorithms.CategoryMorphology,
	algorithms.CategoryGeometry,
	algorithms.CategorySegmentation,
}

type app struct {
	debug  bool
	report bool
	gray   bool
	logger *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pixelproc",
		Short:         "Apply pixel processing algorithms to image files",
		Version:       AppVersion,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = initLogger(a.debug)
			if a.debug {
				algorithms.SetLogger(a.logger)
			}
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug mode with verbose logging")
	root.PersistentFlags().BoolVar(&a.gray, "gray", false, "Load the input as a single-channel grayscale image")
	root.PersistentFlags().BoolVar(&a.report, "report", false, "Print a YAML quality report after processing")

	root.AddCommand(a.listCommand(), a.runCommand(), a.pipelineCommand())
	return root
}

func (a *app) listCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered algorithms by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeAlgorithmList(cmd.OutOrStdout(), verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show parameters")
	return cmd
}

func writeAlgorithmList(w io.Writer, verbose bool) {
	byCategory := algorithms.GetAlgorithmsByCategory()
	for _, category := range categoryOrder {
		fmt.Fprintf(w, "%s:\n", category)
		for _, name := range byCategory[category] {
			alg, _ := algorithms.Get(name)
			fmt.Fprintf(w, "  %-24s %s\n", name, alg.GetDescription())
			if !verbose {
				continue
			}
			for _, p := range alg.GetParameterInfo() {
				fmt.Fprintf(w, "      %s (%s, default %v)", p.Name, p.Type, p.Default)
				if len(p.Options) > 0 {
					fmt.Fprintf(w, " one of %s", strings.Join(p.Options, ", "))
				}
				fmt.Fprintln(w)
			}
		}
	}
}

func (a *app) runCommand() *cobra.Command {
	var in, out, algorithm string
	var params []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply a single algorithm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseParams(params)
			if err != nil {
				return err
			}
			steps := []core.ProcessingStep{{Algorithm: algorithm, Parameters: parsed, Enabled: true}}
			return a.process(cmd.Context(), cmd.OutOrStdout(), in, out, steps)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Input image")
	cmd.Flags().StringVar(&out, "out", "", "Output image")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Algorithm name, see list")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Algorithm parameter as name=value, repeatable")
	for _, f := range []string{"in", "out", "algorithm"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) pipelineCommand() *cobra.Command {
	var in, out, config string
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Apply the steps of a YAML pipeline in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := core.LoadSteps(config)
			if err != nil {
				return err
			}
			return a.process(cmd.Context(), cmd.OutOrStdout(), in, out, steps)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Input image")
	cmd.Flags().StringVar(&out, "out", "", "Output image")
	cmd.Flags().StringVarP(&config, "config", "c", "", "Pipeline YAML file")
	for _, f := range []string{"in", "out", "config"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// parseParams turns name=value pairs into raw parameters. Values stay
// strings; the registry converts them to each parameter's type.
func parseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", pair)
		}
		params[name] = strings.TrimSpace(value)
	}
	return params, nil
}

func (a *app) process(ctx context.Context, w io.Writer, in, out string, steps []core.ProcessingStep) error {
	loader := imageio.NewImageLoader(a.logger)
	load := loader.LoadImage
	if a.gray {
		load = loader.LoadImageGrayscale
	}
	src, err := load(in)
	if err != nil {
		return err
	}

	img := core.NewImageData()
	if err := img.SetOriginal(src, in); err != nil {
		return err
	}
	pipeline := core.NewPipeline(img, a.logger)
	if err := pipeline.SetSteps(steps); err != nil {
		return err
	}

	result, err := pipeline.Process(ctx)
	if err != nil {
		return err
	}
	if err := loader.SaveImage(result.Output, out); err != nil {
		return err
	}

	writeResult(w, result)
	if a.report {
		return writeReport(w, metrics.NewEvaluator().GenerateReport(src, result.Output))
	}
	return nil
}

// writeResult prints per-step timings and the final metrics. PSNR may be
// +Inf, so metrics are printed rather than logged.
func writeResult(w io.Writer, result *core.Result) {
	for i, s := range result.Steps {
		fmt.Fprintf(w, "step %d %-24s %v%s\n", i+1, s.Algorithm, s.Duration, formatMetrics(s.Metrics))
	}
	fmt.Fprintf(w, "result%s\n", formatMetrics(result.Metrics))
}

func formatMetrics(values map[string]float64) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%.4f", name, values[name])
	}
	return sb.String()
}

func writeReport(w io.Writer, report metrics.QualityReport) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(report)
}
