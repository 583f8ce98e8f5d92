package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/TulasiR141/otopilot/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri)
	http.Error(w, http.StatusText(status), status)
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "could not encode response", errors.SlogError(err))
	}
}

func (app *application) readJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body", slog.String("uri", r.URL.RequestURI()))
	}
	return nil
}

// patientIDFromPath parses the {patientID} path segment.
func patientIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("patientID"), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse patient id", slog.String("patientID", r.PathValue("patientID")))
	}
	return id, nil
}
