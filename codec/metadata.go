package codec

// Values for the non-indexed images produced by this package.
const (
	PixelTypeRaw = "IMAGE_PIXELTYPE_RAW"
	PaletteNone  = "NULL"
)

// Metadata describes an encoded image to the code emitter.
type Metadata struct {
	Name      string // C identifier
	Source    string // base name of the source file
	BPP       int
	Palette   string
	Encoding  Kind
	PixelType string
	Width     int
	Height    int
}

// NewMetadata returns the Metadata for a monochrome image of the given size
// encoded with k.
func NewMetadata(name, source string, width, height int, k Kind) Metadata {
	return Metadata{
		Name:      name,
		Source:    source,
		BPP:       1,
		Palette:   PaletteNone,
		Encoding:  k,
		PixelType: PixelTypeRaw,
		Width:     width,
		Height:    height,
	}
}

// Header returns the binary header for md.
func (md Metadata) Header() (Header, error) {
	return NewHeader(md.Width, md.Height, md.Encoding)
}
