package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"hashira/internal/ctxlog"
	"hashira/internal/db"
	"hashira/internal/lagrange"
	"hashira/internal/share"
)

type secretResponse struct {
	ID string `json:"id"`
	db.Record
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := ctxlog.Get(r.Context())
		log.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// solveStatus maps a solve failure to a response status.
// Well-formed datasets that do not interpolate to an integer secret are unprocessable;
// everything else is a malformed request.
func solveStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, lagrange.ErrInsufficientPoints),
		errors.Is(err, lagrange.ErrDegenerateInput),
		errors.Is(err, lagrange.ErrNonIntegerResult):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

var errTooLarge = errors.New("dataset too large")

type api struct {
	maxBodyBytes int64
	maxK         int
	maxPoints    int
}

// checkSize bounds the interpolation work a single request can ask for.
func (a *api) checkSize(ds share.Dataset) error {
	if ds.Keys.K > a.maxK {
		return fmt.Errorf("%w: k=%d exceeds %d", errTooLarge, ds.Keys.K, a.maxK)
	}
	if len(ds.Entries) > a.maxPoints {
		return fmt.Errorf("%w: %d points exceed %d", errTooLarge, len(ds.Entries), a.maxPoints)
	}
	return nil
}

func (a *api) solve(w http.ResponseWriter, r *http.Request) {
	log := ctxlog.Get(r.Context())

	body := http.MaxBytesReader(w, r.Body, a.maxBodyBytes)

	ds, err := share.Parse(body)
	if err != nil {
		log.Info("rejected dataset", "error", err)
		writeError(w, r, solveStatus(err), err.Error())
		return
	}

	if err := a.checkSize(ds); err != nil {
		log.Info("rejected dataset", "error", err)
		writeError(w, r, solveStatus(err), err.Error())
		return
	}

	ctx := ctxlog.With(r.Context(), "dataset", ds.Digest())

	res, err := share.Solve(ctx, ds)
	if err != nil {
		log.Info("solve failed", "error", err)
		writeError(w, r, solveStatus(err), err.Error())
		return
	}
	res.Name = r.URL.Query().Get("name")

	id := res.Digest
	if err := db.PutSecret(id, res.Record(time.Now().UTC())); err != nil {
		log.Error("failed to store secret", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to store secret")
		return
	}

	record, _, err := db.Secret(id)
	if err != nil {
		log.Error("failed to load stored secret", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to load secret")
		return
	}

	writeJSON(w, r, http.StatusOK, secretResponse{ID: id, Record: record})
}

func (a *api) secrets(w http.ResponseWriter, r *http.Request) {
	list := []secretResponse{}
	for id, record := range db.All() {
		list = append(list, secretResponse{ID: id, Record: record})
	}

	slices.SortFunc(list, func(x, y secretResponse) int {
		if c := x.SolvedAt.Compare(y.SolvedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})

	writeJSON(w, r, http.StatusOK, list)
}

func (a *api) secret(w http.ResponseWriter, r *http.Request) {
	log := ctxlog.Get(r.Context())

	id := r.PathValue("id")
	record, found, err := db.Secret(id)
	if err != nil {
		log.Error("failed to load secret", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to load secret")
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, r, http.StatusOK, secretResponse{ID: id, Record: record})
}
