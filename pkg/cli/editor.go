package cli

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
	"github.com/Fepozopo/lunaratelier/pkg/imagesrc"
	"github.com/Fepozopo/lunaratelier/pkg/stdimg"
)

// paramFlags binds the six adjustment parameters and --preset to a command.
type paramFlags struct {
	params adjust.Parameters
	preset string
}

func addParamFlags(cmd *cobra.Command, pf *paramFlags) {
	n := adjust.Neutral()
	f := cmd.Flags()
	f.Float64Var(&pf.params.Brightness, "brightness", n.Brightness, "brightness in percent (50-200)")
	f.Float64Var(&pf.params.Contrast, "contrast", n.Contrast, "contrast in percent (50-200)")
	f.Float64Var(&pf.params.Saturation, "saturate", n.Saturation, "saturation in percent (0-200)")
	f.Float64Var(&pf.params.BlurRadius, "blur", n.BlurRadius, "blur radius in pixels (0-10)")
	f.Float64Var(&pf.params.HueRotation, "hue", n.HueRotation, "hue rotation in degrees (-180-180)")
	f.Float64Var(&pf.params.Temperature, "temperature", n.Temperature, "colour temperature (-50-50)")
	f.StringVarP(&pf.preset, "preset", "p", "", "use a named preset instead of the individual values")
}

// resolve returns the preset's settings when one was named, otherwise the
// flag values clamped to their domains.
func (pf *paramFlags) resolve(cat *adjust.Catalog) (adjust.Parameters, error) {
	if pf.preset != "" {
		p, ok := cat.Lookup(pf.preset)
		if !ok {
			return adjust.Parameters{}, fmt.Errorf("unknown preset %q", pf.preset)
		}
		return p.Settings, nil
	}
	return pf.params.Clamp(), nil
}

func (a *app) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.cfg.Catalog()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tBRIGHTNESS\tCONTRAST\tSATURATE\tBLUR\tHUE\tTEMPERATURE")
			for _, p := range cat.All() {
				s := p.Settings
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%g\t%g\t%g\n",
					p.Name, p.Label, s.Brightness, s.Contrast, s.Saturation, s.BlurRadius, s.HueRotation, s.Temperature)
			}
			return tw.Flush()
		},
	}
}

func (a *app) compileCommand() *cobra.Command {
	var (
		pf     paramFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the filter pipeline for a set of adjustments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.cfg.Catalog()
			if err != nil {
				return err
			}
			p, err := pf.resolve(cat)
			if err != nil {
				return err
			}
			pl := adjust.Compile(p)
			if asJSON {
				enc := json.NewEncoder(out(cmd))
				enc.SetIndent("", "  ")
				return enc.Encode(pl)
			}
			fmt.Fprintf(out(cmd), "preview: %s\nexport:  %s\n", pl.Preview(), pl.Export())
			return nil
		},
	}
	addParamFlags(cmd, &pf)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the pipeline as JSON")
	return cmd
}

func (a *app) loader() *imagesrc.Loader {
	return imagesrc.NewLoader(a.cfg.Images.FetchTimeout, a.cfg.Server.MaxBodyBytes).WithMaxPixels(a.cfg.Images.MaxPixels)
}

func (a *app) histogramCommand() *cobra.Command {
	var pngOut string
	cmd := &cobra.Command{
		Use:   "histogram <image>",
		Short: "Sample the RGB histogram of an image file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.loader().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			h, err := stdimg.SampleHistogram(img)
			if err != nil {
				return err
			}
			w := out(cmd)
			fmt.Fprintf(w, "sampled %dx%d (source %dx%d), max bin count %d\n",
				h.Width, h.Height, img.Bounds().Dx(), img.Bounds().Dy(), h.MaxCount)
			for _, ch := range []string{"red", "green", "blue"} {
				fmt.Fprintf(w, "%-6s mean %6.2f\n", ch, stdimg.Mean(h.Channel(ch)))
			}
			if pngOut != "" {
				if err := writePNG(pngOut, stdimg.RenderHistogramImage(h, 512, 160)); err != nil {
					return err
				}
				fmt.Fprintf(w, "histogram written to %s\n", pngOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pngOut, "png", "", "also render the histogram to this PNG file")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var (
		pf      paramFlags
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "export <image> <out.png>",
		Short: "Apply adjustments to an image and write a PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.cfg.Catalog()
			if err != nil {
				return err
			}
			p, err := pf.resolve(cat)
			if err != nil {
				return err
			}
			img, err := a.loader().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			pl := adjust.Compile(p)
			a.log.Debug("rendering", zap.String("pipeline", pl.Export()))
			rendered, err := stdimg.Render(img, pl)
			if err != nil {
				return err
			}
			if err := writePNG(args[1], rendered); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "wrote %s (%s)\n", args[1], pl.Export())
			if preview {
				pv := newPreviewer(out(cmd), a.log, a.cfg.Logging.PreviewDebug)
				if err := pv.Show(rendered); err != nil {
					a.log.Warn("terminal preview failed", zap.Error(err))
				}
			}
			return nil
		},
	}
	addParamFlags(cmd, &pf)
	cmd.Flags().BoolVar(&preview, "preview", false, "show the result inline in kitty or iTerm2 compatible terminals")
	return cmd
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imagesrc.EncodePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
