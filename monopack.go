/*
Package monopack converts images into packed monochrome pixel streams for
the firmware image library and emits them as C source or binary blobs.
*/
package monopack

import (
	"crypto/sha1"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/monopack/bitmap"
	"github.com/bodgit/monopack/codec"
	"github.com/bodgit/monopack/emit"
	"github.com/bodgit/monopack/stats"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

// Version is recorded in generated files.
const Version = "1.0.0"

// Converter turns image files into encoded images, optionally caching the
// results.
type Converter struct {
	cache  *Cache
	logger *log.Logger
}

// New returns a Converter. cache may be nil to disable caching and logger
// may be nil to discard log output.
func New(cache *Cache, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Converter{
		cache:  cache,
		logger: logger,
	}
}

// Options control a conversion. A nil *Options uses automatic encoding
// selection and the default threshold.
type Options struct {
	// Encoding is "auto" (or empty), or an encoding name understood by
	// codec.ParseKind.
	Encoding string
	// Bitmap controls the reduction to one bit per pixel.
	Bitmap *bitmap.Options
	// FlushTrailing writes the trailing partial byte or run.
	FlushTrailing bool
	// Binary makes Generate write a .bin file instead of C source.
	Binary bool
	// Stats, if set, receives the emitted bytes and the size of every
	// trial. Caching is bypassed so every conversion is observed.
	Stats *stats.Stats
}

func (o *Options) config() codec.Config {
	if o == nil {
		return codec.Config{}
	}
	return codec.Config{Encoding: o.Encoding}
}

func (o *Options) bitmapOptions() *bitmap.Options {
	if o == nil {
		return nil
	}
	return o.Bitmap
}

func (o *Options) codec() *codec.Options {
	co := new(codec.Options)
	if o == nil {
		return co
	}
	co.FlushTrailing = o.FlushTrailing
	if o.Stats != nil {
		co.Observer = o.Stats.Observer()
	}
	return co
}

// key identifies the options affecting the output, for caching
func (o *Options) key() string {
	bo := bitmap.Options{Threshold: bitmap.DefaultThreshold}
	var encoding string
	var flush bool
	if o != nil {
		if o.Bitmap != nil {
			bo = *o.Bitmap
		}
		encoding, flush = o.Encoding, o.FlushTrailing
	}
	if strings.TrimSpace(encoding) == "" {
		encoding = codec.Auto
	}
	return fmt.Sprintf("encoding=%s flush=%t threshold=%d invert=%t quantize=%t dither=%t",
		strings.ToLower(strings.TrimSpace(encoding)), flush, bo.Threshold, bo.Invert, bo.Quantize, bo.Dither)
}

// Result is the outcome of converting one file.
type Result struct {
	Image  *emit.Image
	Trials []codec.Trial // only set when this call selected the encoding, so never for cached results
	Cached bool
}

func (c *Converter) decode(file string) (image.Image, string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	h := sha1.New()
	r := io.TeeReader(f, h)
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	// Hash anything the decoder didn't need
	if _, err := io.Copy(ioutil.Discard, r); err != nil {
		return nil, "", err
	}
	return m, fmt.Sprintf("%X", h.Sum(nil)), nil
}

func (c *Converter) load(file string, o *Options) (*bitmap.Bitmap, string, error) {
	m, sha, err := c.decode(file)
	if err != nil {
		return nil, "", err
	}
	bm, err := bitmap.FromImage(m, o.bitmapOptions())
	if err != nil {
		return nil, "", err
	}
	return bm, sha, nil
}

// Convert decodes file and encodes it according to o.
func (c *Converter) Convert(file string, o *Options) (*Result, error) {
	// Reject bad configurations before touching the file
	kind, auto, err := o.config().Validate()
	if err != nil {
		return nil, err
	}

	m, sha, err := c.decode(file)
	if err != nil {
		return nil, err
	}

	name, source := emit.Identifier(file), filepath.Base(file)

	useCache := c.cache != nil && (o == nil || o.Stats == nil)
	if useCache {
		e, err := c.cache.Lookup(sha, o.key())
		if err != nil {
			return nil, err
		}
		if e != nil {
			c.logger.Printf("Using cached conversion of \"%s\" with SHA1 \"%s\"\n", file, sha)
			img := emit.New(codec.NewMetadata(name, source, e.Width, e.Height, e.Kind), e.Data, Version)
			img.Lines = e.Lines
			return &Result{
				Image:  img,
				Cached: true,
			}, nil
		}
	}

	bm, err := bitmap.FromImage(m, o.bitmapOptions())
	if err != nil {
		return nil, err
	}

	// The header must be representable before any encoding happens
	if _, err := codec.NewHeader(bm.Width(), bm.Height(), codec.Raw); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	co := o.codec()

	var trials []codec.Trial
	if auto {
		kind, trials, err = codec.Select(bm, co)
		if err != nil {
			return nil, err
		}
		for _, t := range trials {
			c.logger.Printf("\"%s\": %s encoding is %d bytes\n", file, t.Kind, t.Size)
		}
		if o != nil && o.Stats != nil {
			o.Stats.AddTrials(trials)
		}
	}

	data, lines, err := codec.PackLines(bm, kind, co)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Encoded \"%s\" as %s, %d bytes\n", file, kind, codec.HeaderSize+len(data))

	img := emit.New(codec.NewMetadata(name, source, bm.Width(), bm.Height(), kind), data, Version)
	img.Lines = lines
	r := &Result{
		Image:  img,
		Trials: trials,
	}

	if useCache {
		if err := c.cache.Store(sha, o.key(), &Entry{Kind: kind, Width: bm.Width(), Height: bm.Height(), Data: data, Lines: lines}); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Estimate returns the estimated size of file under every encoding,
// without emitting anything, and the encoding Convert would use: the
// requested one, or the selected one if the encoding is automatic.
func (c *Converter) Estimate(file string, o *Options) (codec.Kind, []codec.Trial, error) {
	kind, auto, err := o.config().Validate()
	if err != nil {
		return 0, nil, err
	}
	bm, _, err := c.load(file, o)
	if err != nil {
		return 0, nil, err
	}
	var co *codec.Options
	if o != nil {
		co = &codec.Options{FlushTrailing: o.FlushTrailing}
	}
	selected, trials, err := codec.Select(bm, co)
	if err != nil {
		return 0, nil, err
	}
	if auto {
		kind = selected
	}
	return kind, trials, nil
}

// Generate converts file and writes the result into dir, which defaults to
// the directory containing file.
func (c *Converter) Generate(file, dir string, o *Options) error {
	r, err := c.Convert(file, o)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = filepath.Dir(file)
	}
	if o != nil && o.Binary {
		c.logger.Printf("Writing \"%s.bin\" to \"%s\"\n", r.Image.Name, dir)
		return emit.WriteBinaryFile(dir, r.Image)
	}
	c.logger.Printf("Writing \"%s.c\" and \"%s.h\" to \"%s\"\n", r.Image.Name, r.Image.Name, dir)
	return emit.WriteFiles(dir, r.Image)
}
