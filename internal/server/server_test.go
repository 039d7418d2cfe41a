package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hashira/internal/db"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	return newTestServerConfig(t, Config{})
}

func newTestServerConfig(t *testing.T, config Config) http.Handler {
	t.Helper()

	db.Open(db.Config{File: filepath.Join(t.TempDir(), "secrets.db")})
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})

	config.Port = 8080
	config.AntidosBuckets = 4
	config.AntidosPeriod = time.Millisecond
	config.ShutdownTimeout = time.Second

	s := New(config)
	t.Cleanup(s.anti.stop)

	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func testdata(t *testing.T, name string) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join("..", "share", "testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestRecover(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/recover?name=first", testdata(t, "testcase1.json"))
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("status %d != %d: %s", have, want, w.Body)
	}
	res := decode[secretResponse](t, w)
	if have, want := res.Secret, "3"; have != want {
		t.Fatalf("Secret %s != %s", have, want)
	}
	if have, want := res.Name, "first"; have != want {
		t.Fatalf("Name %s != %s", have, want)
	}
	if res.ID == "" {
		t.Fatal("empty id")
	}

	w = do(t, h, http.MethodGet, "/secrets/"+res.ID, "")
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("status %d != %d: %s", have, want, w.Body)
	}
	got := decode[secretResponse](t, w)
	if got.ID != res.ID || got.Secret != res.Secret || !got.SolvedAt.Equal(res.SolvedAt) {
		t.Fatalf("stored %+v != %+v", got, res)
	}

	// The YAML forms of the same dataset have the same id and keep the stored name.
	for _, file := range []string{"testcase1.yaml", "testcase1_plain.yaml"} {
		w = do(t, h, http.MethodPost, "/recover", testdata(t, file))
		if have, want := w.Code, http.StatusOK; have != want {
			t.Fatalf("status %d != %d: %s", have, want, w.Body)
		}
		again := decode[secretResponse](t, w)
		if again.ID != res.ID {
			t.Fatalf("id %s != %s", again.ID, res.ID)
		}
		if have, want := again.Name, "first"; have != want {
			t.Fatalf("Name %q != %q", have, want)
		}
	}

	w = do(t, h, http.MethodPost, "/recover", testdata(t, "testcase2.json"))
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("status %d != %d: %s", have, want, w.Body)
	}
	res2 := decode[secretResponse](t, w)
	if have, want := res2.Secret, "-6290016743746469796"; have != want {
		t.Fatalf("Secret %s != %s", have, want)
	}
	if have, want := len(res2.Mismatches), 3; have != want {
		t.Fatalf("Mismatches %d != %d", have, want)
	}

	w = do(t, h, http.MethodGet, "/secrets", "")
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("status %d != %d: %s", have, want, w.Body)
	}
	if list := decode[[]secretResponse](t, w); len(list) != 2 {
		t.Fatalf("have %d secrets, want 2", len(list))
	}
}

func TestRecoverErrors(t *testing.T) {
	h := newTestServer(t)

	for _, tc := range []struct {
		name   string
		body   string
		status int
	}{
		{"garbage", "{{{", http.StatusBadRequest},
		{"no keys", `{"1": {"base": "10", "value": "4"}}`, http.StatusBadRequest},
		{"bad digit", `{"keys": {"n": 1, "k": 1}, "1": {"base": "2", "value": "9"}}`, http.StatusBadRequest},
		{"degenerate", testdata(t, "degenerate.json"), http.StatusUnprocessableEntity},
		{"too few", `{"keys": {"n": 2, "k": 2}, "1": {"base": "10", "value": "4"}}`, http.StatusUnprocessableEntity},
		{"fraction", `{"keys": {"n": 2, "k": 2}, "1": {"base": "10", "value": "1"}, "3": {"base": "10", "value": "2"}}`, http.StatusUnprocessableEntity},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/recover", tc.body)
			if have, want := w.Code, tc.status; have != want {
				t.Fatalf("status %d != %d: %s", have, want, w.Body)
			}
			if res := decode[errorResponse](t, w); res.Error == "" {
				t.Fatal("empty error message")
			}
		})
	}
}

func TestRecoverLimits(t *testing.T) {
	h := newTestServerConfig(t, Config{MaxK: 2, MaxPoints: 3})

	for _, tc := range []struct {
		name   string
		body   string
		status int
	}{
		{"k above limit", testdata(t, "testcase1.json"), http.StatusRequestEntityTooLarge},
		{"too many points", `{"keys": {"n": 4, "k": 2}, "1": {"base": "10", "value": "5"}, "2": {"base": "10", "value": "7"}, "3": {"base": "10", "value": "9"}, "4": {"base": "10", "value": "11"}}`, http.StatusRequestEntityTooLarge},
		{"within limits", `{"keys": {"n": 3, "k": 2}, "1": {"base": "10", "value": "5"}, "2": {"base": "10", "value": "7"}, "3": {"base": "10", "value": "9"}}`, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/recover", tc.body)
			if have, want := w.Code, tc.status; have != want {
				t.Fatalf("status %d != %d: %s", have, want, w.Body)
			}
		})
	}
}

func TestSecretNotFound(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/secrets/missing", "")
	if have, want := w.Code, http.StatusNotFound; have != want {
		t.Fatalf("status %d != %d", have, want)
	}

	w = do(t, h, http.MethodGet, "/secrets", "")
	if list := decode[[]secretResponse](t, w); len(list) != 0 {
		t.Fatalf("have %d secrets, want 0", len(list))
	}
}

func TestRecoverPanic(t *testing.T) {
	h := newRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/", "")
	if have, want := w.Code, http.StatusInternalServerError; have != want {
		t.Fatalf("status %d != %d", have, want)
	}
}
