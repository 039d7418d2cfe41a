package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := Store(context.Background(), slog.New(slog.NewJSONHandler(buf, nil)))

	ctx = With(ctx, "dataset", "testcase1.json")
	Get(ctx).Info("solved")

	if have := buf.String(); !strings.Contains(have, `"dataset":"testcase1.json"`) {
		t.Fatalf("log line %q lacks dataset attribute", have)
	}
}

func TestGetDefault(t *testing.T) {
	if Get(context.Background()) != slog.Default() {
		t.Fatal("Get without a stored logger must return the default logger")
	}
}

func TestClose(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := Store(context.Background(), slog.New(slog.NewJSONHandler(buf, nil)))

	errClose := errors.New("close failed")
	err := Close(ctx, "db", closerFunc(func() error { return errClose }))
	if !errors.Is(err, errClose) {
		t.Fatalf("Close error %v, want %v", err, errClose)
	}
	if have := buf.String(); !strings.Contains(have, `"closer":"db"`) {
		t.Fatalf("log line %q lacks closer attribute", have)
	}

	if err := Close(ctx, "db", closerFunc(func() error { return nil })); err != nil {
		t.Fatal(err)
	}
}
