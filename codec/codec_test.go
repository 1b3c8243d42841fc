package codec

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/bodgit/monopack/bitmap"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fromRows builds a bitmap from rows of '0' and '1' characters
func fromRows(rows ...string) *bitmap.Bitmap {
	m := bitmap.New(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			m.Set(x, y, c == '1')
		}
	}
	return m
}

func uniform(width, height int, on bool) *bitmap.Bitmap {
	m := bitmap.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, on)
		}
	}
	return m
}

func checkerboard(width, height int) *bitmap.Bitmap {
	m := bitmap.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, (x+y)&1 == 1)
		}
	}
	return m
}

func random(r *rand.Rand, width, height int) *bitmap.Bitmap {
	m := bitmap.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, r.Intn(2) == 1)
		}
	}
	return m
}

func TestPack(t *testing.T) {
	for _, test := range []struct {
		name  string
		image *bitmap.Bitmap
		kind  Kind
		flush bool
		want  []byte
	}{
		{
			name:  "raw 16x1",
			image: fromRows("1111000011111111"),
			kind:  Raw,
			want:  []byte{0xf0, 0xff},
		},
		{
			name:  "rlc 16x1 final run dropped",
			image: fromRows("1111000011111111"),
			kind:  RunLength,
			want:  []byte{9, 8},
		},
		{
			name:  "rlc 16x1 flushed",
			image: fromRows("1111000011111111"),
			kind:  RunLength,
			flush: true,
			want:  []byte{9, 8, 17},
		},
		{
			name:  "raw 9x1 trailing bit dropped",
			image: fromRows("111111111"),
			kind:  Raw,
			want:  []byte{0xff},
		},
		{
			name:  "raw 9x1 flushed",
			image: fromRows("111111111"),
			kind:  Raw,
			flush: true,
			want:  []byte{0xff, 0x80},
		},
		{
			name:  "raw 8x1 all zero",
			image: fromRows("00000000"),
			kind:  Raw,
			want:  []byte{0x00},
		},
		{
			name:  "raw bytes straddle rows",
			image: fromRows("101", "110", "011"),
			kind:  Raw,
			want:  []byte{0xb9}, // 10111001b
		},
		{
			name:  "rlc runs continue across rows",
			image: fromRows("11", "11", "00", "01"),
			kind:  RunLength,
			want:  []byte{EncodeRun(true, 4), EncodeRun(false, 3)},
		},
		{
			name:  "rlc full run keeps its bit open",
			image: fromRows(strings.Repeat("1", 127) + "0"),
			kind:  RunLength,
			want:  []byte{0xff, EncodeRun(true, 0)},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := PackBytes(test.image, test.kind, &Options{FlushTrailing: test.flush})
			require.NoError(t, err)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("PackBytes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPackLines(t *testing.T) {
	for _, test := range []struct {
		name      string
		m         bitmap.Image
		kind      Kind
		flush     bool
		wantData  []byte
		wantLines []int
	}{
		{"raw straddling rows", fromRows("111100001111", "000011110000"), Raw, false, []byte{0xf0, 0xf0, 0xf0}, []int{1, 2}},
		{"rlc dropped", fromRows("1100", "0011"), RunLength, false, []byte{5, 8}, []int{1, 1}},
		{"rlc flushed", fromRows("1100", "0011"), RunLength, true, []byte{5, 8, 5}, []int{1, 2}},
		{"raw narrow rows", fromRows("101", "010", "111"), Raw, true, []byte{0xab, 0x80}, []int{0, 0, 2}},
	} {
		t.Run(test.name, func(t *testing.T) {
			data, lines, err := PackLines(test.m, test.kind, &Options{FlushTrailing: test.flush})
			require.NoError(t, err)
			assert.Equal(t, test.wantData, data)
			assert.Equal(t, test.wantLines, lines)

			b, err := PackBytes(test.m, test.kind, &Options{FlushTrailing: test.flush})
			require.NoError(t, err)
			assert.Equal(t, b, data)
		})
	}

	_, _, err := PackLines(fromRows("1"), Kind(9), nil)
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
}

func TestRawPackerState(t *testing.T) {
	b := new(bytes.Buffer)
	p := NewRawPacker(b, nil)
	require.NoError(t, p.WriteRow([]bool{true, true, true, true, true}))
	assert.Equal(t, RawState{Filled: 5, Acc: 0x1f}, p.State)
	require.NoError(t, p.WriteRow([]bool{true, true, true, true}))
	assert.Equal(t, []byte{0xff}, b.Bytes())
	require.NoError(t, p.Close())

	// The trailing bit is retained, not written
	assert.Equal(t, RawState{Filled: 1, Acc: 0x01}, p.State)
	assert.Equal(t, 1, b.Len())
}

func TestRunLengthPackerState(t *testing.T) {
	b := new(bytes.Buffer)
	p := NewRunLengthPacker(b, nil)
	require.NoError(t, p.WriteRow([]bool{false, false, true}))
	require.NoError(t, p.Close())
	assert.Equal(t, []byte{EncodeRun(false, 2)}, b.Bytes())
	assert.Equal(t, RunState{Open: true, Bit: true, Length: 1}, p.State)
}

func TestRawLength(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, size := range [][2]int{{1, 1}, {7, 1}, {8, 1}, {9, 3}, {13, 17}, {64, 64}, {95, 33}} {
		m := random(r, size[0], size[1])
		first, err := PackBytes(m, Raw, nil)
		require.NoError(t, err)
		assert.Len(t, first, size[0]*size[1]/8, "%dx%d", size[0], size[1])

		second, err := PackBytes(m, Raw, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second, "%dx%d", size[0], size[1])
	}
}

func TestRunLengthUniform(t *testing.T) {
	for _, length := range []int{1, 126, 127, 128, 254, 300, 381, 1000} {
		for _, on := range []bool{false, true} {
			got, err := PackBytes(uniform(length, 1, on), RunLength, nil)
			require.NoError(t, err)
			require.Len(t, got, length/MaxRun, "length %d", length)
			for _, b := range got {
				bit, n := DecodeRun(b)
				assert.Equal(t, on, bit)
				assert.Equal(t, MaxRun, n)
			}
		}
	}
}

func TestRunLengthNeverExceedsMaxRun(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	m := bitmap.New(200, 50)
	for y := 0; y < 50; y++ {
		on := r.Intn(2) == 1
		for x := 0; x < 200; x++ {
			if r.Intn(150) == 0 {
				on = !on
			}
			m.Set(x, y, on)
		}
	}
	got, err := PackBytes(m, RunLength, &Options{FlushTrailing: true})
	require.NoError(t, err)
	for _, b := range got {
		_, n := DecodeRun(b)
		assert.LessOrEqual(t, n, MaxRun)
	}
}

func TestEncodeRun(t *testing.T) {
	assert.Equal(t, byte(9), EncodeRun(true, 4))
	assert.Equal(t, byte(8), EncodeRun(false, 4))
	assert.Equal(t, byte(17), EncodeRun(true, 8))
	assert.Equal(t, byte(0xff), EncodeRun(true, MaxRun))
	assert.Panics(t, func() { EncodeRun(true, MaxRun+1) })
	assert.Panics(t, func() { EncodeRun(false, -1) })

	bit, n := DecodeRun(0xfe)
	assert.False(t, bit)
	assert.Equal(t, MaxRun, n)
}

func TestNewPackerUnknown(t *testing.T) {
	_, err := NewPacker(Kind(7), new(bytes.Buffer), nil)
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
}

func TestObserver(t *testing.T) {
	var seen []byte
	o := &Options{
		Observer: ObserverFunc(func(k Kind, b byte) {
			assert.Equal(t, RunLength, k)
			seen = append(seen, b)
		}),
	}
	got, err := PackBytes(fromRows("1111000011111111"), RunLength, o)
	require.NoError(t, err)
	assert.Equal(t, got, seen)
}

func TestUnpack(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, k := range Kinds {
		for _, size := range [][2]int{{1, 1}, {9, 1}, {16, 16}, {37, 11}} {
			m := random(r, size[0], size[1])
			data, err := PackBytes(m, k, &Options{FlushTrailing: true})
			require.NoError(t, err)

			got, err := Unpack(k, data, size[0], size[1])
			require.NoError(t, err)
			assert.True(t, bitmap.Equal(m, got), "%v %dx%d", k, size[0], size[1])
		}
	}
}

func TestUnpackDropped(t *testing.T) {
	got, err := Unpack(Raw, []byte{0xff}, 9, 1)
	require.NoError(t, err)
	assert.True(t, bitmap.Equal(fromRows("111111110"), got))

	got, err = Unpack(RunLength, []byte{9, 8}, 16, 1)
	require.NoError(t, err)
	assert.True(t, bitmap.Equal(fromRows("1111000000000000"), got))
}

func TestUnpackTooMuchData(t *testing.T) {
	_, err := Unpack(Raw, []byte{0xff, 0xff}, 8, 1)
	assert.Equal(t, ErrTooMuchData, err)

	_, err = Unpack(RunLength, []byte{EncodeRun(true, 9)}, 8, 1)
	assert.Equal(t, ErrTooMuchData, err)

	_, err = Unpack(Kind(3), nil, 8, 1)
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
}
