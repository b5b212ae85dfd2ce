package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/palette"
	"github.com/AnyUserName/gridframe-cli/internal/source"
)

var paletteJSON bool

var paletteCmd = &cobra.Command{
	Use:   "palette <file>",
	Short: "Print the dominant colour and swatches of a photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runPalette,
}

var detectCmd = &cobra.Command{
	Use:   "detect <file|dir>...",
	Short: "Print each photo's size and the closest Instagram format",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported output formats",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println()
		for _, f := range format.All() {
			s := f.Spec()
			fmt.Printf("  %-10s %4d × %-4d  ratio %.2f\n", s.Name, s.Width, s.Height, s.Ratio)
		}
		fmt.Println()
	},
}

func init() {
	paletteCmd.Flags().BoolVar(&paletteJSON, "json", false, "print JSON")
	rootCmd.AddCommand(paletteCmd, detectCmd, formatsCmd)
}

func runPalette(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	img, err := source.Decode(data)
	if err != nil {
		return err
	}
	p, err := palette.Extract(img)
	if err != nil {
		return err
	}

	if paletteJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	fmt.Println()
	fmt.Printf("  Dominant: %s\n", describeColour(p.Dominant.Hex()))
	fmt.Println("  Swatches:")
	for i, c := range p.Swatches {
		fmt.Printf("    %d. %s\n", i+1, describeColour(c.Hex()))
	}
	fmt.Println()
	return nil
}

// describeColour prints hex plus HSL so swatches are easier to compare.
func describeColour(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	h, s, l := c.Hsl()
	return fmt.Sprintf("%s  hsl(%3.0f, %3.0f%%, %3.0f%%)", hex, h, s*100, l*100)
}

func runDetect(_ *cobra.Command, args []string) error {
	srcs, err := source.Collect(args)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, src := range srcs {
		f, err := source.Load(src)
		if err != nil {
			return err
		}
		img, err := source.Decode(f.Data)
		if err != nil {
			fmt.Printf("  ✗ %-32s %v\n", truncKey(src.RelPath, 32), err)
			continue
		}
		b := img.Bounds()
		det := format.Detect(b.Dx(), b.Dy())
		fmt.Printf("  %-32s %5d × %-5d  ratio %.3f  → %s\n",
			truncKey(src.RelPath, 32), b.Dx(), b.Dy(), float64(b.Dx())/float64(b.Dy()), det)
	}
	fmt.Println()
	return nil
}
