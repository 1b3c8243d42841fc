package bitmap

// Len returns the number of bits in the image, which is also the length of
// the bit sequence produced by EachRow.
func Len(m Image) int {
	return m.Width() * m.Height()
}

// EachRow calls fn once for every row of m, top to bottom, with the bits of
// that row from left to right. The rows are meant to be consumed as one
// continuous sequence; there is nothing between the last bit of one row and
// the first bit of the next.
//
// The slice passed to fn is reused, fn must not retain it. EachRow stops at
// and returns the first error returned by fn.
func EachRow(m Image, fn func(row []bool) error) error {
	row := make([]bool, m.Width())
	for y := 0; y < m.Height(); y++ {
		for x := range row {
			row[x] = m.Bit(x, y)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}
