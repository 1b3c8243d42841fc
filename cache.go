package monopack

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bodgit/monopack/codec"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Cache remembers previous conversions, keyed by the SHA1 of the source
// file and the options used. Pixel data is stored zstd compressed.
type Cache struct {
	db *sql.DB
}

var errBadLines = errors.New("monopack: corrupt line counts in cache")

// Entry is a cached conversion.
type Entry struct {
	Kind   codec.Kind
	Width  int
	Height int
	Data   []byte
	Lines  []int // bytes of Data per source line
}

func encodeLines(lines []int) []byte {
	var b []byte
	for _, n := range lines {
		b = binary.AppendUvarint(b, uint64(n))
	}
	return b
}

func decodeLines(b []byte) ([]int, error) {
	var lines []int
	for len(b) > 0 {
		n, i := binary.Uvarint(b)
		if i <= 0 {
			return nil, errBadLines
		}
		lines = append(lines, int(n))
		b = b[i:]
	}
	return lines, nil
}

// NewCache opens or creates the cache database in file.
func NewCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, options TEXT NOT NULL, encoding INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL, lines BLOB, UNIQUE(sha1, options))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached conversion for sha and options, or nil if there
// isn't one.
func (c *Cache) Lookup(sha, options string) (*Entry, error) {
	var e Entry
	var kind int
	var data, lines []byte
	switch err := c.db.QueryRow("SELECT encoding, width, height, data, lines FROM conversion WHERE sha1 = ? AND options = ?", sha, options).Scan(&kind, &e.Width, &e.Height, &data, &lines); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
		if e.Lines, err = decodeLines(lines); err != nil {
			return nil, err
		}
		e.Kind, e.Data = codec.Kind(kind), b
		return &e, nil
	default:
		return nil, err
	}
}

// Store records a conversion, replacing any previous one for the same sha
// and options.
func (c *Cache) Store(sha, options string, e *Entry) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO conversion (sha1, options, encoding, width, height, data, lines) VALUES (?, ?, ?, ?, ?, ?, ?)", sha, options, int(e.Kind), e.Width, e.Height, encoder.EncodeAll(e.Data, nil), encodeLines(e.Lines)); err != nil {
		return err
	}
	return nil
}

// Purge removes every cached conversion.
func (c *Cache) Purge() error {
	_, err := c.db.Exec("DELETE FROM conversion")
	return err
}
