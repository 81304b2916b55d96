package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// batchRequest is the JSON body of POST /v1/batch.
type batchRequest struct {
	Queries []queryRequest `json:"queries"`
}

// queryRequest describes one query of the batch.
type queryRequest struct {
	SQL      string `json:"sql"`
	Mode     string `json:"mode"`      // row, column, keyed_rows, rows
	KeyField string `json:"key_field"` // keyed_rows only
	Column   *int   `json:"column"`    // optional column restriction for mode "column"
	Args     []any  `json:"args"`
}

// batchResponse carries shaped results in request order.
type batchResponse struct {
	Results []any `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, errs.New(errs.ErrKindInvalidInput, "empty query list"))
		return
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	results := make([]any, len(req.Queries))

	for i, q := range req.Queries {
		if err := s.enqueue(i, q, results); err != nil {
			// Abandon anything already queued for this request.
			s.client.Cancel()
			writeError(w, err)
			return
		}
	}

	ctx := r.Context()
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	if err := s.client.Execute(ctx); err != nil {
		s.log.ErrorWith("batch failed", err, map[string]any{"queries": len(req.Queries)})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

// enqueue registers one query with a callback that stores its shaped result
// at the request's position. Callbacks of a batch may run concurrently but
// each writes only its own slot.
func (s *Server) enqueue(i int, q queryRequest, results []any) error {
	switch q.Mode {
	case "row":
		s.client.QueueRow(q.SQL, func(row map[string]any, _ database.Conn) {
			results[i] = row
		}, q.Args...)
	case "column":
		fn := func(values []any, _ database.Conn) {
			results[i] = values
		}
		if q.Column != nil {
			s.client.QueueColumnIndex(q.SQL, *q.Column, fn, q.Args...)
		} else {
			s.client.QueueColumn(q.SQL, fn, q.Args...)
		}
	case "keyed_rows":
		s.client.QueueKeyedRows(q.SQL, q.KeyField, func(rows map[string]map[string]any, _ database.Conn) {
			results[i] = rows
		}, q.Args...)
	case "rows":
		s.client.QueueRows(q.SQL, func(rows [][]any, _ database.Conn) {
			results[i] = rows
		}, q.Args...)
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown shape mode %q", q.Mode)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	conn, err := s.client.RawConn(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := conn.Ping(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps the unified error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "unknown"

	var e *errs.Error
	if errors.As(err, &e) {
		kind = e.Kind.String()
		switch {
		case errs.IsInvalidInput(err):
			status = http.StatusBadRequest
		case errs.IsConnectionFailed(err):
			status = http.StatusServiceUnavailable
		case errs.IsTimeout(err):
			status = http.StatusGatewayTimeout
		case errs.IsQueryFailed(err):
			status = http.StatusUnprocessableEntity
		}
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
