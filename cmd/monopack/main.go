package main

import (
	"fmt"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/bodgit/monopack"
	"github.com/bodgit/monopack/bitmap"
	"github.com/bodgit/monopack/codec"
	"github.com/bodgit/monopack/stats"
	"github.com/google/renameio"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func conversionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "encoding",
			Aliases: []string{"e"},
			Value:   codec.Auto,
			Usage:   "pixel encoding: auto, raw or rlc",
		},
		&cli.IntFlag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Value:   bitmap.DefaultThreshold,
			Usage:   "luminance (0-255) above which a pixel is on",
		},
		&cli.BoolFlag{
			Name:  "invert",
			Usage: "swap on and off pixels",
		},
		&cli.BoolFlag{
			Name:  "quantize",
			Usage: "reduce to two colors before thresholding",
		},
		&cli.BoolFlag{
			Name:  "dither",
			Usage: "dither when quantizing",
		},
		&cli.BoolFlag{
			Name:  "flush-trailing",
			Usage: "write the final partial byte or run",
		},
	}
}

func options(c *cli.Context) (*monopack.Options, error) {
	threshold := c.Int("threshold")
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold %d out of range", threshold)
	}
	o := &monopack.Options{
		Encoding: c.String("encoding"),
		Bitmap: &bitmap.Options{
			Threshold: uint8(threshold),
			Invert:    c.Bool("invert"),
			Quantize:  c.Bool("quantize") || c.Bool("dither"),
			Dither:    c.Bool("dither"),
		},
		FlushTrailing: c.Bool("flush-trailing"),
		Binary:        c.Bool("binary"),
	}
	if c.Bool("stats") {
		o.Stats = stats.New()
	}
	return o, nil
}

func newConverter(c *cli.Context) (*monopack.Converter, func(), error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	if c.String("cache") == "" {
		return monopack.New(nil, logger), func() {}, nil
	}

	cache, err := monopack.NewCache(c.String("cache"))
	if err != nil {
		return nil, nil, err
	}
	return monopack.New(cache, logger), func() { cache.Close() }, nil
}

func printStats(s *stats.Stats) error {
	if s == nil {
		return nil
	}
	for _, key := range s.Keys() {
		if err := s.WriteHistogram(os.Stdout, key, 0); err != nil {
			return err
		}
	}
	return nil
}

func preview(m bitmap.Image) string {
	var b strings.Builder
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Bit(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func writePNG(file string, m *bitmap.Bitmap) error {
	t, err := renameio.TempFile("", file)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if err := png.Encode(t, m); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

func main() {
	app := cli.NewApp()

	app.Name = "monopack"
	app.Usage = "Monochrome firmware image converter"
	app.Version = monopack.Version

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"MONOPACK_CACHE"},
			Usage:   "path to conversion cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert images to C source",
			Description: "Writes NAME.c and NAME.h, or NAME.bin with --binary, for each FILE.",
			ArgsUsage:   "FILE...",
			Flags: append(conversionFlags(),
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output directory, defaults to that of each FILE",
				},
				&cli.BoolFlag{
					Name:  "binary",
					Usage: "write header and data as a binary file",
				},
				&cli.BoolFlag{
					Name:  "stats",
					Usage: "print histograms of the encoded data",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, done, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer done()

				for _, file := range c.Args().Slice() {
					if err := m.Generate(file, c.String("output"), o); err != nil {
						return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
					}
				}

				if err := printStats(o.Stats); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "estimate",
			Usage:       "Print the encoded size of images",
			Description: "",
			ArgsUsage:   "FILE...",
			Flags:       conversionFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, done, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer done()

				for _, file := range c.Args().Slice() {
					k, trials, err := m.Estimate(file, o)
					if err != nil {
						return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
					}
					for _, t := range trials {
						marker := ""
						if t.Kind == k {
							marker = " *"
						}
						fmt.Printf("%s\t%s\t%d%s\n", file, t.Kind, t.Size, marker)
					}
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Convert every image under a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: append(conversionFlags(),
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output directory, defaults to that of each image",
				},
				&cli.BoolFlag{
					Name:  "binary",
					Usage: "write header and data as a binary file",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, done, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer done()

				if err := m.Scan(c.Args().First(), c.String("output"), o); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "preview",
			Usage:       "Decode the encoded stream of an image and show it",
			Description: "Prints the pixels the firmware would draw, '#' for on.",
			ArgsUsage:   "FILE",
			Flags: append(conversionFlags(),
				&cli.StringFlag{
					Name:  "png",
					Usage: "also write the decoded image to this PNG file",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				o, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				m, done, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer done()

				r, err := m.Convert(c.Args().First(), o)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				bm, err := codec.Unpack(r.Image.Encoding, r.Image.Data, r.Image.Width, r.Image.Height)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("%s: %dx%d %s, %d bytes\n", r.Image.Name, r.Image.Width, r.Image.Height, r.Image.Encoding, r.Image.Size)
				fmt.Print(preview(bm))

				if file := c.String("png"); file != "" {
					if err := writePNG(file, bm); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "purge",
			Usage:       "Empty the conversion cache",
			Description: "",
			Action: func(c *cli.Context) error {
				if c.String("cache") == "" {
					return cli.NewExitError("no cache configured", 1)
				}

				cache, err := monopack.NewCache(c.String("cache"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer cache.Close()

				if err := cache.Purge(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
