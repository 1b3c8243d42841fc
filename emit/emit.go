/*
Package emit renders encoded images as C source for the firmware image
library, or as a flat binary blob.

The C output is a pair of files: an implementation defining a const image_t
initialised with the header fields and pixel data, and a header declaring
it. The binary output is the seven byte codec.Header followed by the data.
*/
package emit

import (
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/bodgit/monopack/codec"
	"github.com/google/renameio"
)

// Kind selects which of the two C files to render.
type Kind int

const (
	// C is the implementation file.
	C Kind = iota
	// H is the header file.
	H
)

// Ext returns the file extension for k.
func (k Kind) Ext() string {
	if k == H {
		return ".h"
	}
	return ".c"
}

// Image is an encoded image ready for rendering.
type Image struct {
	codec.Metadata
	Data []byte
	// Lines, if set, holds the number of bytes of Data emitted for each
	// source line and groups the C data by line.
	Lines   []int
	Size    int    // header plus data, in bytes
	Version string // of the generating tool
}

// New returns an Image for data, computing Size.
func New(md codec.Metadata, data []byte, version string) *Image {
	return &Image{
		Metadata: md,
		Data:     data,
		Size:     codec.HeaderSize + len(data),
		Version:  version,
	}
}

//go:embed templates/*.tmpl
var files embed.FS

func batch(b []byte, n int) [][]byte {
	var out [][]byte
	for len(b) > n {
		out = append(out, b[:n])
		b = b[n:]
	}
	if len(b) > 0 {
		out = append(out, b)
	}
	return out
}

func lines(b []byte, n []int) [][]byte {
	out := make([][]byte, 0, len(n))
	for _, l := range n {
		if l > len(b) {
			l = len(b)
		}
		out = append(out, b[:l])
		b = b[l:]
	}
	return out
}

func guard(name string) string {
	return strings.ToUpper(name) + "_H"
}

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"batch": batch,
	"guard": guard,
	"hex2":  func(b byte) string { return fmt.Sprintf("%02x", b) },
	"hex4":  func(v int) string { return fmt.Sprintf("%04x", v) },
	"inc":   func(i int) int { return i + 1 },
	"lines": lines,
}).ParseFS(files, "templates/*.tmpl"))

// Render writes the C file of kind k for m to w.
func Render(w io.Writer, k Kind, m *Image) error {
	name := "image.c.tmpl"
	if k == H {
		name = "image.h.tmpl"
	}
	return templates.ExecuteTemplate(w, name, m)
}

// Reserved words of C up to C23, plus the standard macros that would break
// a declaration of the same name
var reserved = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		alignas alignof auto bool break case char const constexpr continue
		default do double else enum extern false float for goto if inline
		int long nullptr register restrict return short signed sizeof
		static static_assert struct switch thread_local true typedef typeof
		typeof_unqual union unsigned void volatile while
		_Alignas _Alignof _Atomic _BitInt _Bool _Complex _Decimal128
		_Decimal32 _Decimal64 _Generic _Imaginary _Noreturn _Static_assert
		_Thread_local NULL offsetof
	`) {
		reserved[w] = struct{}{}
	}
}

// Identifier turns a file name into a C identifier: the extension is
// dropped, anything outside [A-Za-z0-9_] becomes an underscore, a
// leading digit is prefixed with one and a reserved word gets one
// appended.
func Identifier(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for i, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || r == '_'):
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	if _, ok := reserved[b.String()]; ok {
		b.WriteByte('_')
	}
	return b.String()
}

func writeFile(path string, fn func(io.Writer) error) error {
	t, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if err := fn(t); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

// WriteFiles renders both C files for m into dir as <name>.c and <name>.h.
// Each file is replaced atomically.
func WriteFiles(dir string, m *Image) error {
	for _, k := range []Kind{C, H} {
		if err := writeFile(filepath.Join(dir, m.Name+k.Ext()), func(w io.Writer) error {
			return Render(w, k, m)
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteBinary writes the header for m followed by its data.
func WriteBinary(w io.Writer, m *Image) error {
	h, err := m.Header()
	if err != nil {
		return err
	}
	b, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write(m.Data)
	return err
}

// WriteBinaryFile writes the binary form of m into dir as <name>.bin,
// replacing any existing file atomically.
func WriteBinaryFile(dir string, m *Image) error {
	return writeFile(filepath.Join(dir, m.Name+".bin"), func(w io.Writer) error {
		return WriteBinary(w, m)
	})
}
