// Package share loads point datasets and solves them for their secret.
package share

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"slices"
	"strconv"
	"strings"

	"hashira/internal/ctxlog"
	"hashira/internal/lagrange"
	"hashira/internal/radix"
	"hashira/internal/rec"

	"github.com/goccy/go-yaml"
)

const keysEntry = "keys"

var (
	ErrMissingKeys  = errors.New("missing keys entry")
	ErrInvalidKeys  = errors.New("invalid keys")
	ErrInvalidX     = errors.New("invalid x coordinate")
	ErrInvalidEntry = errors.New("invalid entry")
)

type Keys struct {
	N int
	K int
}

// Entry is one undecoded point: the y coordinate is Value read in Base.
type Entry struct {
	X     *big.Int
	Base  int
	Value string
}

type Dataset struct {
	Keys    Keys
	Entries []Entry
}

// parseBase accepts either a YAML integer or a string holding a decimal integer.
func parseBase(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d", radix.ErrInvalidBase, t)
		}
		return int(t), nil
	case uint64:
		if t > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d", radix.ErrInvalidBase, t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", radix.ErrInvalidBase, t)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %v", radix.ErrInvalidBase, v)
}

// rawEntry holds either the keys entry or a point entry.
type rawEntry struct {
	N     *int    `yaml:"n"`
	K     *int    `yaml:"k"`
	Base  any     `yaml:"base"`
	Value *string `yaml:"value"`
}

// Parse reads a dataset document. JSON input is accepted since it is valid YAML.
func Parse(r io.Reader) (Dataset, error) {
	// Keys are decoded untyped so that plain YAML integer keys keep their value.
	var raw map[any]rawEntry
	err := yaml.NewDecoder(r, yaml.Strict()).Decode(&raw)
	if err != nil {
		return Dataset{}, fmt.Errorf("yaml: %w", err)
	}

	keys, ok := raw[keysEntry]
	if !ok {
		return Dataset{}, ErrMissingKeys
	}
	if keys.N == nil || keys.K == nil || keys.Base != nil || keys.Value != nil {
		return Dataset{}, fmt.Errorf("%w: keys entry must hold exactly n and k", ErrInvalidKeys)
	}

	ds := Dataset{
		Keys: Keys{N: *keys.N, K: *keys.K},
	}
	if ds.Keys.K < 1 || ds.Keys.N < ds.Keys.K {
		return Dataset{}, fmt.Errorf("%w: n=%d k=%d", ErrInvalidKeys, ds.Keys.N, ds.Keys.K)
	}

	for key, e := range raw {
		if key == keysEntry {
			continue
		}
		name := fmt.Sprint(key)

		x, ok := big.NewInt(0).SetString(name, 10)
		if !ok {
			return Dataset{}, fmt.Errorf("%w: %q", ErrInvalidX, name)
		}
		if e.Base == nil || e.Value == nil || e.N != nil || e.K != nil {
			return Dataset{}, fmt.Errorf("%w: x=%s must hold exactly base and value", ErrInvalidEntry, name)
		}

		base, err := parseBase(e.Base)
		if err != nil {
			return Dataset{}, fmt.Errorf("x=%s: %w", name, err)
		}

		ds.Entries = append(ds.Entries, Entry{
			X:     x,
			Base:  base,
			Value: *e.Value,
		})
	}

	slices.SortFunc(ds.Entries, func(a, b Entry) int {
		return a.X.Cmp(b.X)
	})

	return ds, nil
}

func Load(ctx context.Context, filename string) (ds Dataset, err error) {
	defer rec.Wrap(&err, "load %q: %w", filename)

	file, err := os.Open(filename)
	if err != nil {
		return Dataset{}, err
	}
	defer ctxlog.Close(ctx, "dataset file", file)

	return Parse(file)
}

// Points decodes every entry into a point.
func (ds Dataset) Points() ([]lagrange.Point, error) {
	points := make([]lagrange.Point, 0, len(ds.Entries))
	for _, e := range ds.Entries {
		y, err := radix.Decode(e.Value, e.Base)
		if err != nil {
			return nil, fmt.Errorf("decode x=%s: %w", e.X, err)
		}
		points = append(points, lagrange.Point{X: e.X, Y: y})
	}
	return points, nil
}

// Digest identifies the dataset by content, independent of entry order and formatting.
func (ds Dataset) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "n=%d;k=%d", ds.Keys.N, ds.Keys.K)

	entries := slices.Clone(ds.Entries)
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.X.Cmp(b.X)
	})
	for _, e := range entries {
		fmt.Fprintf(h, ";%s:%d:%s", e.X, e.Base, strings.ToLower(e.Value))
	}

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
