package monopack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const numWorkers = 4

var imageExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
}

func isImage(file string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(file))]
	return ok
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || !isImage(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// outputDir mirrors the directory of file relative to base under dir, so
// images with the same name in different directories don't collide
func outputDir(base, dir, file string) (string, error) {
	if dir == "" {
		return "", nil
	}
	rel, err := filepath.Rel(base, filepath.Dir(file))
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, rel)
	if err := os.MkdirAll(out, 0755); err != nil {
		return "", err
	}
	return out, nil
}

func (c *Converter) imageWorker(ctx context.Context, in <-chan string, base, dir string, o *Options) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if ctx.Err() != nil {
				return
			}
			out, err := outputDir(base, dir, file)
			if err != nil {
				errc <- err
				return
			}
			if err := c.Generate(file, out, o); err != nil {
				c.logger.Printf("Failed to convert \"%s\": %s\n", file, err)
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan converts every image file found under path. Output goes next to
// each image if dir is empty, otherwise into the same relative directory
// under dir. Hidden files and directories are
// skipped. The first error stops the scan.
func (c *Converter) Scan(path, dir string, o *Options) error {
	base, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, base)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := c.imageWorker(ctx, files, base, dir, o)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
