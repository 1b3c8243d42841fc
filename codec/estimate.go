package codec

import (
	"github.com/bodgit/monopack/bitmap"
	"golang.org/x/sync/errgroup"
)

// Estimate returns the total size in bytes, header included, of m encoded
// with k. The stream itself is counted and discarded.
func Estimate(m bitmap.Image, k Kind, o *Options) (int, error) {
	var n counter
	if err := Pack(m, k, &n, o.trial()); err != nil {
		return 0, err
	}
	return HeaderSize + int(n), nil
}

// Trial is the estimated size of an image under one encoding.
type Trial struct {
	Kind Kind
	Size int
}

// Select returns the encoding from Kinds that gives the smallest output for
// m, along with the estimate for every candidate.
func Select(m bitmap.Image, o *Options) (Kind, []Trial, error) {
	return SelectFrom(m, Kinds, o)
}

// SelectFrom is like Select but only considers kinds. Each candidate gets
// its own full pass over m; the passes run concurrently as they share
// nothing but the read-only image. Ties go to the candidate listed first.
func SelectFrom(m bitmap.Image, kinds []Kind, o *Options) (Kind, []Trial, error) {
	if len(kinds) == 0 {
		return 0, nil, ErrUnsupported
	}
	for _, k := range kinds {
		if !k.valid() {
			return 0, nil, ErrUnknownEncoding
		}
	}

	trials := make([]Trial, len(kinds))

	var g errgroup.Group
	for i, k := range kinds {
		i, k := i, k
		g.Go(func() error {
			size, err := Estimate(m, k, o)
			if err != nil {
				return err
			}
			trials[i] = Trial{Kind: k, Size: size}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	best := trials[0]
	for _, t := range trials[1:] {
		if t.Size < best.Size {
			best = t
		}
	}
	return best.Kind, trials, nil
}
