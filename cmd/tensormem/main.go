// Package main provides the tensormem CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/tensormem/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		klog.Exit(err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tensormem",
		Short:         "tensormem inspects tensor descriptors, views and legacy matrix layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(newVersionCmd(), newDemoCmd(), newLayoutCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tensormem %s\n", version)
		},
	}
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Zero the inner 2x2 block of a 4x4 matrix through a view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := tensor.LoadSettings()
			if err != nil {
				return err
			}
			devices := tensor.NewRegistry(settings)
			defer func() {
				if err := devices.Close(); err != nil {
					klog.Warningf("closing devices: %v", err)
				}
			}()
			return runDemo(cmd.OutOrStdout(), tensor.NewHost(), devices)
		},
	}
}

func runDemo(w io.Writer, host *tensor.Host, devices *tensor.Registry) error {
	x := tensor.NewWith(host, devices, tensor.HostConfig(tensor.Float32, 4, 4), tensor.HostMemory)
	defer x.Free()

	tensor.Zero(x)
	data := x.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}
	fmt.Fprintf(w, "%s\n", x)
	printGrid(w, data, 4)

	v := tensor.NewView(x, tensor.MakeDims(1, 1), tensor.MakeDims(2, 2))
	defer v.Free()
	tensor.Zero(v)
	fmt.Fprintf(w, "\nafter zeroing view %v at offset %v (start %d):\n", v.Dims(), v.Offset().Slice(), v.Start())
	printGrid(w, x.AsFloat32(), 4)

	stats := host.Stats()
	fmt.Fprintf(w, "\nhost: %d allocs, %s live, %s peak\n",
		stats.Allocs, humanize.IBytes(uint64(stats.LiveBytes)), humanize.IBytes(uint64(stats.PeakBytes)))
	return nil
}

func printGrid(w io.Writer, data []float32, cols int) {
	for r := 0; r*cols < len(data); r++ {
		row := make([]string, cols)
		for c := range cols {
			row[c] = fmt.Sprintf("%4g", data[r*cols+c])
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}
}

func newLayoutCmd() *cobra.Command {
	var (
		channels, cols, rows int
		dtypeName            string
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the legacy dense matrix layout of a host tensor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dtype, err := tensor.ParseDataType(dtypeName)
			if err != nil {
				return err
			}
			if channels <= 0 || cols <= 0 || rows <= 0 {
				return errors.Errorf("channels, cols and rows must be positive, got %d, %d, %d", channels, cols, rows)
			}
			return printLayout(cmd.OutOrStdout(), tensor.HostConfig(dtype, channels, cols, rows))
		},
	}
	cmd.Flags().IntVar(&channels, "channels", 1, "Channels per element, the fastest axis")
	cmd.Flags().IntVar(&cols, "cols", 1, "Columns")
	cmd.Flags().IntVar(&rows, "rows", 1, "Rows")
	cmd.Flags().StringVar(&dtypeName, "dtype", "float32", "Data type: float32, float64, float16, int32, int64 or uint8")
	return cmd
}

func printLayout(w io.Writer, cfg tensor.Config) error {
	x := tensor.New(cfg, tensor.HostMemory)
	defer x.Free()
	fmt.Fprintf(w, "config:  %s\n", x.Config())
	fmt.Fprintf(w, "size:    %s\n", humanize.IBytes(uint64(x.ByteSize())))
	fmt.Fprintf(w, "storage: %s\n", humanize.IBytes(uint64(x.Config().StorageSize())))
	fmt.Fprintf(w, "bridged: %t\n", x.IsBridged())
	fmt.Fprintf(w, "tag:     %#08x\n", x.Tag().Pack())
	if !x.IsBridged() {
		return nil
	}
	h := x.MatrixHeader()
	fmt.Fprintf(w, "matrix:  %d rows x %d cols, step %d bytes\n", h.Rows, h.Cols, h.Step)
	return nil
}
