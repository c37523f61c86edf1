// Command bloom applies the spiral bloom filter to an image.
//
// The image is run through the filter for -frames frames at -fps, as a
// real-time host would, and the last frame is written to -out:
//
//	bloom -in scene.png -out scene-bloom.webp -threshold 0.6 -disk 48
//
// Settings may also come from a JSON file (-config); flags take priority.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/internal/config"
	"github.com/gogpu/bloom/internal/imageio"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bloom: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("bloom", flag.ContinueOnError)
	var (
		configFile = fs.String("config", "", "path to a JSON config file")
		input      = fs.String("in", "", "input image (png, jpeg, tga, webp)")
		output     = fs.String("out", "", "output image (default: <in>-bloom.<ext>)")
		width      = fs.Int("width", 0, "resize to this width before filtering")
		height     = fs.Int("height", 0, "resize to this height before filtering")
		pixelSize  = fs.Int("pixel-size", 0, "device pixel size (default 1)")
		frames     = fs.Int("frames", 0, "number of frames to render (default 1)")
		fps        = fs.Float64("fps", 0, "simulated frame rate (default 60)")
		workers    = fs.Int("workers", 0, "CPU worker goroutines (default: NumCPU)")
		backend    = fs.String("backend", "", "auto, cpu or gpu (default auto)")
		verbose    = fs.Bool("v", false, "verbose (debug) logging")
		blend      = fs.String("blend", "", "blend mode: additive or screen")
	)
	fs.Bool("hud", false, "draw a stats label on the output")
	fs.Bool("linear", false, "decode sRGB input to linear light and re-encode on output")
	d := bloom.DefaultParams()
	fs.Float64("strength", float64(d.Strength), "dry/wet mix of the bloom")
	fs.Float64("threshold", float64(d.Threshold), "luminance threshold in [0,1]")
	fs.Float64("smooth-width", float64(d.SmoothWidth), "soft threshold width")
	fs.Float64("disk", float64(d.Disk), "spiral radius in pixels")
	fs.Int("samples", d.Samples, "spiral taps per level of detail")
	fs.Int("lods", d.Lods, "number of levels of detail")
	fs.Float64("lod-steps", float64(d.LodSteps), "mip level step between levels of detail")
	fs.Float64("compression", float64(d.Compression), "divisor of the accumulated bloom")
	fs.Float64("saturation", float64(d.Saturation), "bloom color gain")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	bloom.SetLogger(logger)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return err
		}
	}

	flags := config.Flags{
		Input:     *input,
		Output:    *output,
		Width:     *width,
		Height:    *height,
		PixelSize: *pixelSize,
		Frames:    *frames,
		FPS:       *fps,
		Workers:   *workers,
		Backend:   *backend,
		Blend:     *blend,
	}
	if err := explicitFlags(fs, &flags); err != nil {
		return err
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	img, err := imageio.Load(cfg.Input)
	if err != nil {
		return err
	}
	img = imageio.Resize(img, cfg.Width, cfg.Height)

	var src *bloom.Frame
	if cfg.Linear {
		src, err = bloom.FromImageLinear(img)
	} else {
		src, err = bloom.FromImage(img)
	}
	if err != nil {
		return err
	}

	filter, err := newFilter(cfg, params, logger)
	if err != nil {
		return err
	}
	passes := []bloom.Pass{filter}
	if cfg.Linear {
		passes = append(passes, bloom.NewOutputPass())
	}
	chain := bloom.NewComposer(passes...)
	defer chain.Release()

	w, h := src.Width(), src.Height()
	if err := chain.Configure(w, h, cfg.PixelSize); err != nil {
		return err
	}

	dst, err := bloom.NewFrame(w, h)
	if err != nil {
		return err
	}
	dt := time.Duration(float64(time.Second) / cfg.FPS)
	start := time.Now()
	for i := range cfg.Frames {
		if err := chain.Apply(dst, src, dt); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	elapsed := time.Since(start)

	out := dst.ToNRGBA()
	perFrame := elapsed / time.Duration(cfg.Frames)
	if cfg.HUD {
		hud := []string{
			fmt.Sprintf("%s %dx%d", filter.Backend(), w, h),
			fmt.Sprintf("%.2f ms/frame", float64(perFrame.Microseconds())/1000),
			fmt.Sprintf("t=%.2fs", filter.Elapsed().Seconds()),
		}
		if err := imageio.Label(out, hud); err != nil {
			return err
		}
	}
	if err := imageio.Save(cfg.Output, out); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Printf("%s: %d frames of %dx%d on %s in %v (%.2f ms/frame)\n",
		cfg.Output, cfg.Frames, w, h, filter.Backend(), elapsed.Round(time.Millisecond),
		float64(perFrame.Microseconds())/1000)
	return nil
}

// explicitFlags copies the flags the user actually set into the pointer
// fields of f, so an explicit zero overrides the config file.
func explicitFlags(fs *flag.FlagSet, f *config.Flags) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		v := fl.Value.String()
		switch fl.Name {
		case "hud":
			f.HUD, err = parseBool(v)
		case "linear":
			f.Linear, err = parseBool(v)
		case "strength":
			f.Strength, err = parseFloat(fl.Name, v)
		case "threshold":
			f.Threshold, err = parseFloat(fl.Name, v)
		case "smooth-width":
			f.SmoothWidth, err = parseFloat(fl.Name, v)
		case "disk":
			f.Disk, err = parseFloat(fl.Name, v)
		case "lod-steps":
			f.LodSteps, err = parseFloat(fl.Name, v)
		case "compression":
			f.Compression, err = parseFloat(fl.Name, v)
		case "saturation":
			f.Saturation, err = parseFloat(fl.Name, v)
		case "samples":
			f.Samples, err = parseInt(fl.Name, v)
		case "lods":
			f.Lods, err = parseInt(fl.Name, v)
		}
	})
	return err
}

func parseBool(s string) (*bool, error) {
	v, err := strconv.ParseBool(s)
	return &v, err
}

func parseFloat(name, s string) (*float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return nil, fmt.Errorf("-%s: %w", name, err)
	}
	f := float32(v)
	return &f, nil
}

func parseInt(name, s string) (*int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("-%s: %w", name, err)
	}
	return &v, nil
}

// newFilter creates the bloom filter on the configured backend. In auto
// mode an unusable GPU is reported once and the CPU is used instead.
func newFilter(cfg config.Config, params bloom.Params, logger *slog.Logger) (*bloom.Filter, error) {
	opts := []bloom.Option{
		bloom.WithParams(params),
		bloom.WithWorkers(cfg.Workers),
	}
	if cfg.Backend == config.BackendCPU {
		return bloom.New(opts...)
	}

	accel := newAccelerator()
	if accel == nil {
		if cfg.Backend == config.BackendGPU {
			return nil, fmt.Errorf("%w: built without GPU support", bloom.ErrUnsupportedEnvironment)
		}
		return bloom.New(opts...)
	}

	f, err := bloom.New(append(opts, bloom.WithAccelerator(accel))...)
	if err == nil || cfg.Backend == config.BackendGPU || !errors.Is(err, bloom.ErrUnsupportedEnvironment) {
		return f, err
	}
	logger.Warn("GPU not available, rendering on the CPU", "err", err)
	return bloom.New(opts...)
}
