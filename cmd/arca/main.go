// Package main provides the arca command-line tool for working with
// .arca snapshot files.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arca-ml/arca/checkpoint"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("Arca %s (format version %d)\n", version, checkpoint.FormatVersion)
	case "inspect":
		err = runInspect(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "export-safetensors":
		err = runExport(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("arca - snapshot tool for .arca files")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Usage:")
	fmt.Println("  arca inspect <file>                    Print header and tensor table")
	fmt.Println("  arca verify <file>                     Validate structure and checksum")
	fmt.Println("  arca export-safetensors <file> <out>   Convert a snapshot to safetensors")
	fmt.Println("  arca version                           Show version")
}

// runInspect prints the header summary without requiring a valid
// checksum, so damaged files can still be examined.
func runInspect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: arca inspect <file>")
	}
	path := args[0]

	r, err := checkpoint.OpenWithOptions(path, checkpoint.ReaderOptions{
		SkipChecksumValidation: true,
		ValidationLevel:        checkpoint.ValidationNormal,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	header := r.Header()
	fmt.Printf("file:     %s\n", path)
	fmt.Printf("format:   v%d", r.Version())
	if header.ArcaVersion != "" {
		fmt.Printf(" (written by arca %s)", header.ArcaVersion)
	}
	fmt.Println()
	fmt.Printf("layout:   %s\n", r.Layout())
	if !header.CreatedAt.IsZero() {
		fmt.Printf("created:  %s\n", header.CreatedAt.Format(time.RFC3339))
	}
	if header.SnapshotID != "" {
		fmt.Printf("snapshot: %s\n", header.SnapshotID)
	}

	var total int64
	for _, meta := range header.Tensors {
		total += meta.Size
	}
	fmt.Printf("tensors:  %d (%s)\n", len(header.Tensors), formatBytes(total))
	for _, meta := range header.Tensors {
		fmt.Printf("  %-32s %-8s %-16v %s\n", meta.Name, meta.DType, meta.Shape, formatBytes(meta.Size))
	}

	if len(header.Metadata) > 0 {
		fmt.Println("metadata:")
		for key, value := range header.Metadata {
			fmt.Printf("  %s = %s\n", key, value)
		}
	}

	if meta := header.Checkpoint; meta != nil {
		fmt.Printf("checkpoint: epoch=%d step=%d loss=%g\n", meta.Epoch, meta.Step, meta.Loss)
		if meta.ModelType != "" {
			fmt.Printf("  model:     %s\n", meta.ModelType)
		}
		if meta.OptimizerType != "" {
			fmt.Printf("  optimizer: %s %v\n", meta.OptimizerType, meta.OptimizerConfig)
		}
	}
	return nil
}

// runVerify opens the file with strict validation, which checks the
// header structure, tensor offsets, and the data checksum.
func runVerify(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: arca verify <file>")
	}
	path := args[0]

	r, err := checkpoint.OpenWithOptions(path, checkpoint.ReaderOptions{
		ValidationLevel: checkpoint.ValidationStrict,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer func() {
		_ = r.Close()
	}()

	fmt.Printf("OK: %s (%d tensors, sha256 %x)\n", path, len(r.TensorNames()), r.Checksum())
	return nil
}

func runExport(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: arca export-safetensors <file> <out>")
	}
	path, out := args[0], args[1]

	snap, err := checkpoint.Load(path)
	if err != nil {
		return err
	}
	if err := checkpoint.ExportSafeTensors(out, snap.Named(), snap.Metadata()); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d tensors)\n", out, snap.Len())
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
