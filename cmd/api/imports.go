package main

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/envelopa/dpgf-ingest/internal/response"
	"github.com/envelopa/dpgf-ingest/internal/store"
)

type GetImportHistoryResponse = response.APIResponse[[]store.ImportRecord]

// @Summary		Get import history
// @Description	Get the most recent file imports, newest first.
// @Tags			Imports
// @Produce		json
// @Param			limit	query		int							false	"Maximum records returned (default 10)"
// @Success		200		{object}	GetImportHistoryResponse	"Successfully retrieved import history"
// @Failure		500		{object}	response.ErrorResponse		"Failed to get import history"
// @Router			/imports [get]
func (app *application) handleGetImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitParam(r, 10)

	ctx := r.Context()
	data, err := app.store.Imports.GetLatest(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get import history: "+err.Error())
		return
	}

	response := &GetImportHistoryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved import history",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get ingestion progress
// @Description	Serves the checkpoint written by the batch runner after each batch.
// @Tags			Imports
// @Produce		json
// @Success		200	{object}	map[string]any			"Current run checkpoint"
// @Failure		404	{object}	response.ErrorResponse	"No ingestion run recorded yet"
// @Failure		500	{object}	response.ErrorResponse	"Failed to read progress"
// @Router			/progress [get]
func (app *application) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(app.config.progressPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSONError(w, http.StatusNotFound, "no ingestion run recorded yet")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to read progress: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
