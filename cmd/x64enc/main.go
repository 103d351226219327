package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/MasterTaffer/x86-64-encoder/pkg/asm"
	"github.com/MasterTaffer/x86-64-encoder/pkg/ir"
	"github.com/MasterTaffer/x86-64-encoder/pkg/jit"
	"github.com/MasterTaffer/x86-64-encoder/pkg/lifetime"
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "x64enc",
		Short: "x86-64 machine-code encoder and IR lifetime analyzer",
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", env.Bool("X64ENC_VERBOSE"), "Verbose diagnostics")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	}

	// factorial command
	var output string
	var imagePath string
	var run bool

	factorialCmd := &cobra.Command{
		Use:   "factorial [n ...]",
		Short: "Emit the demo factorial routine; optionally execute it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := asm.New()
			buildFactorial(a, run)
			log.WithFields(logrus.Fields{
				"bytes":  a.Len(),
				"labels": len(a.Labels()),
				"relocs": len(a.Relocs()),
			}).Debug("emitted factorial")

			if imagePath != "" {
				if err := asm.SaveImage(imagePath, a.Image()); err != nil {
					return err
				}
				fmt.Printf("Image written to %s\n", imagePath)
			}

			if output != "" {
				img := a.Image()
				if err := img.Link(0); err != nil {
					return err
				}
				if err := os.WriteFile(output, img.Code, 0o644); err != nil {
					return err
				}
				fmt.Printf("Linked binary written to %s (%d bytes)\n", output, len(img.Code))
			}

			if !run {
				img := a.Image()
				if err := img.Link(0); err != nil {
					return err
				}
				hexDump(img.Code)
				return nil
			}

			region, err := jit.Alloc(a.Len())
			if err != nil {
				return fmt.Errorf("allocating executable memory: %w", err)
			}
			defer region.Close()
			if err := a.LinkTo(region.Bytes()); err != nil {
				return err
			}
			if err := region.Finalize(); err != nil {
				return err
			}
			log.WithField("addr", fmt.Sprintf("%#x", region.Addr())).Debug("linked into executable region")

			fn := region.Func1()
			ns := args
			if len(ns) == 0 {
				ns = []string{"0", "1", "5", "10", "14"}
			}
			for _, s := range ns {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return fmt.Errorf("bad argument %q: %w", s, err)
				}
				fmt.Printf("factorial(%d) = %d\n", n, fn(n))
			}
			return nil
		},
	}
	factorialCmd.Flags().StringVar(&output, "out", "", "Write the linked flat binary to a file")
	factorialCmd.Flags().StringVar(&imagePath, "image", "", "Write the unlinked image (gob) to a file")
	factorialCmd.Flags().BoolVar(&run, "run", false, "Map executable memory and call the routine (linux/amd64)")

	// analyze command
	var workers int
	var analysisOut string

	analyzeCmd := &cobra.Command{
		Use:   "analyze [functions.json]",
		Short: "Run lifetime analysis over IR functions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fns, err := ir.ReadJSON(f)
			if err != nil {
				return fmt.Errorf("reading functions: %w", err)
			}
			for i := range fns {
				if err := fns[i].Validate(); err != nil {
					return fmt.Errorf("function %d: %w", i, err)
				}
			}
			log.WithFields(logrus.Fields{"functions": len(fns), "workers": workers}).Debug("starting analysis")

			results := lifetime.AnalyseAll(fns, workers)
			for i, an := range results {
				printAnalysis(&fns[i], an)
			}

			if analysisOut != "" {
				out, err := os.Create(analysisOut)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := writeAnalysisJSON(out, results); err != nil {
					return err
				}
				fmt.Printf("Analysis written to %s\n", analysisOut)
			}
			return nil
		},
	}
	analyzeCmd.Flags().IntVar(&workers, "workers", env.Int("X64ENC_WORKERS", 0), "Number of workers (0 = NumCPU)")
	analyzeCmd.Flags().StringVar(&analysisOut, "output", "", "Write analysis results as JSON")

	// inspect command
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the demo routine's label and relocation tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := asm.New()
			buildFactorial(a, false)

			fmt.Printf("Code: %d bytes, %d labels, %d relocations\n\n", a.Len(), len(a.Labels()), len(a.Relocs()))
			fmt.Println("Labels:")
			for id, off := range a.Labels() {
				fmt.Printf("  L%d @ %#04x\n", id, off)
			}

			relocs := a.Relocs()
			sort.Slice(relocs, func(i, j int) bool { return relocs[i].Offset < relocs[j].Offset })
			fmt.Println("Relocations:")
			for _, r := range relocs {
				kind := "abs64"
				if r.Relative {
					kind = "rel32"
				}
				fmt.Printf("  %#04x %s -> L%d\n", r.Offset, kind, r.Label)
			}

			img := a.Image()
			if err := img.Link(0); err != nil {
				return err
			}
			fmt.Println("\nLinked at base 0:")
			hexDump(img.Code)
			return nil
		},
	}

	rootCmd.AddCommand(factorialCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func hexDump(code []byte) {
	for i := 0; i < len(code); i += 16 {
		end := i + 16
		if end > len(code) {
			end = len(code)
		}
		fmt.Printf("%#06x:", i)
		for _, b := range code[i:end] {
			fmt.Printf(" %02X", b)
		}
		fmt.Println()
	}
}

func printAnalysis(fn *ir.Function, an *lifetime.FunctionAnalysis) {
	fmt.Printf("function %d: %d ops, %d vars\n", fn.ID, len(fn.Ops), len(fn.Vars))
	for i, op := range fn.Ops {
		info := an.Ops[i]
		fmt.Printf("  %3d: %-28s", i, op.String())
		if info.JumpFrom != -1 {
			fmt.Printf("  <- jump from %d", info.JumpFrom)
		}
		fmt.Println()
	}
	for id, v := range an.Vars {
		switch {
		case v.Eternal():
			fmt.Printf("  v%d: eternal%s\n", id, flagSuffix(v.Flags))
		case v.Start == -1:
			fmt.Printf("  v%d: never used\n", id)
		default:
			fmt.Printf("  v%d: [%d,%d)%s\n", id, v.Start, v.End, flagSuffix(v.Flags))
		}
	}
}

func writeAnalysisJSON(w io.Writer, results []*lifetime.FunctionAnalysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func flagSuffix(flags uint8) string {
	s := ""
	if flags&lifetime.FlagUninitialized != 0 {
		s += " uninitialized"
	}
	if flags&lifetime.FlagUnused != 0 {
		s += " unused"
	}
	return s
}
