package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/born-ml/peek/internal/config"
	"github.com/born-ml/peek/internal/format"
	"github.com/born-ml/peek/internal/logger"
	"github.com/born-ml/peek/internal/manifest"
	"github.com/born-ml/peek/internal/safetensors"
	"github.com/born-ml/peek/internal/stats"
	"github.com/born-ml/peek/internal/tensor"
)

func (a *app) newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file] [tensor]",
		Short: "Print the leading values of a flattened tensor",
		Example: `  peek dump
  peek dump net.safetensors _conv_stem -n 32 -f np`,
		Args: cobra.MaximumNArgs(2),
		RunE: a.runDump,
	}
	a.addDumpFlags(cmd)
	return cmd
}

func (a *app) runDump(cmd *cobra.Command, args []string) error {
	fw, err := a.framework()
	if err != nil {
		return err
	}
	name := a.cfg.Tensor
	if len(args) > 1 {
		name = args[1]
	}

	f, err := a.open(args)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.TensorInfo(name)
	if err != nil {
		return err
	}
	values, err := f.Head(name, a.cfg.Count, a.cfg.Strict)
	if err != nil {
		return err
	}
	if len(values) < a.cfg.Count {
		logger.Log.Warn("tensor is shorter than requested",
			"tensor", name, "elements", info.NumElements(), "requested", a.cfg.Count)
	}

	out, err := format.Sprint(fw, info.DType, values)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func (a *app) newListCmd() *cobra.Command {
	var checksums bool
	cmd := &cobra.Command{
		Use:   "list [file]",
		Short: "List tensor names, dtypes, shapes and sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(args)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if checksums {
				fmt.Fprintln(w, "NAME\tDTYPE\tSHAPE\tSIZE\tSHA256")
			} else {
				fmt.Fprintln(w, "NAME\tDTYPE\tSHAPE\tSIZE")
			}
			for _, name := range f.TensorNames() {
				info, err := f.TensorInfo(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s",
					name, info.DType, info.Shape, humanize.IBytes(uint64(info.ByteLen()))) //nolint:gosec // G115: validated non-negative.
				if checksums {
					sum, err := f.Checksum(name)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "\t%s", sum)
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&checksums, "sha256", false, "Add a SHA-256 column of each tensor's bytes")
	return cmd
}

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Describe a container: sizes, dtypes and metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(args)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			var params int
			dtypes := make(map[tensor.DataType]int)
			for name, info := range f.Header().Tensors {
				numel, err := info.Shape.CheckedNumElements()
				if err != nil {
					return fmt.Errorf("tensor %s: %w", name, err)
				}
				params += numel
				dtypes[info.DType]++
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Path:\t%s\n", f.Path())
			fmt.Fprintf(w, "Reader:\t%s\n", f.Source())
			fmt.Fprintf(w, "Header:\t%s\n", humanize.IBytes(f.HeaderSize()))
			fmt.Fprintf(w, "Data:\t%s\n", humanize.IBytes(uint64(f.DataSize()))) //nolint:gosec // G115: sizes are non-negative.
			fmt.Fprintf(w, "Tensors:\t%d\n", f.Len())
			fmt.Fprintf(w, "Parameters:\t%s\n", humanize.Comma(int64(params)))

			kinds := make([]string, 0, len(dtypes))
			for dt, n := range dtypes {
				kinds = append(kinds, fmt.Sprintf("%s=%d", dt, n))
			}
			sort.Strings(kinds)
			fmt.Fprintf(w, "DTypes:\t%s\n", strings.Join(kinds, " "))

			meta := f.Metadata()
			keys := make([]string, 0, len(meta))
			for k := range meta {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "Metadata[%s]:\t%s\n", k, meta[k])
			}
			return w.Flush()
		},
	}
}

func (a *app) newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [file] [tensor...]",
		Short: "Summarize tensor values: min, max, mean, std, zeros, NaN and Inf",
		Long: `Summarize decodes each tensor in full and reports value statistics.
With no tensor names every tensor in the container is summarized.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f, err := a.open(args)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			names := f.TensorNames()
			if len(args) > 1 {
				names = args[1:]
			}
			summaries, err := stats.Summarize(ctx, f, names, a.cfg.Workers)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "NAME\tDTYPE\tCOUNT\tMIN\tMAX\tMEAN\tSTD\tZEROS\tNAN\tINF\t")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.6g\t%.6g\t%.6g\t%.6g\t%d\t%d\t%d\t\n",
					s.Name, s.DType, s.Count, s.Min, s.Max, s.Mean, s.Std, s.Zeros, s.NaNs, s.Infs)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&a.flags.Workers, "workers", "j", config.Default().Workers, "Tensors summarized in parallel")
	return cmd
}

func (a *app) newVerifyCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check a container against an exported net.json manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(modelPath)
			if err != nil {
				return err
			}
			f, err := a.open(args)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			problems, err := manifest.Check(m, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if unused := manifest.Unused(m, f); len(unused) > 0 {
				logger.Log.Info("tensors not referenced by the manifest", "count", len(unused), "tensors", unused)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s: %d problem(s) found", f.Path(), len(problems))
			}
			fmt.Fprintf(out, "ok: %d weight buffers match %s\n", len(m.Weights()), f.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "net.json", "Path to the net.json manifest")
	return cmd
}

func (a *app) newExtractCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract [file] tensor... -o out.safetensors",
		Short: "Copy selected tensors into a new container",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("an output path is required (-o)")
			}
			return safetensors.WithFile(args[0], func(f *safetensors.File) error {
				tensors := make([]*tensor.RawTensor, 0, len(args)-1)
				for _, name := range args[1:] {
					raw, err := f.Tensor(name)
					if err != nil {
						return err
					}
					tensors = append(tensors, raw)
				}
				if err := safetensors.Write(output, tensors, f.Metadata()); err != nil {
					return err
				}
				logger.Log.Info("extracted tensors", "count", len(tensors), "output", output)
				return nil
			}, a.openOptions()...)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination container")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "peek %s\n", version)
		},
	}
}
