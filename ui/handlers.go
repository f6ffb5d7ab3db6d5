package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
)

// datasetResponse is the JSON shape of every table payload
type datasetResponse struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	NumRows int                 `json:"num_rows"`
}

func toResponse(d *table.Dataset) datasetResponse {
	resp := datasetResponse{
		Columns: d.Columns,
		Rows:    make([]map[string]string, 0, d.NumRows()),
		NumRows: d.NumRows(),
	}
	for _, row := range d.Rows {
		out := make(map[string]string, len(d.Columns))
		for _, col := range d.Columns {
			v := row.Get(col)
			if !v.IsMissing() {
				out[col] = v.String()
			}
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp
}

type sheetResponse struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Config preset.SheetConfig `json:"config"`
}

func (a *App) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := a.reader.Read(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	a.session.LoadDataset(d)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns":  d.Columns,
		"num_rows": d.NumRows(),
	})
}

func (a *App) handleRawDataset(w http.ResponseWriter, r *http.Request) {
	d, err := a.session.Dataset()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (a *App) handleDeleteRows(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SheetID string `json:"sheet_id"`
		Indices []int  `json:"indices"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.session.DeleteRows(core.SheetID(req.SheetID), req.Indices); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.session.ExportSheets(req.Path); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleListSheets(w http.ResponseWriter, r *http.Request) {
	sheets := a.session.Sheets()
	out := make([]sheetResponse, 0, len(sheets))
	for _, sh := range sheets {
		out = append(out, sheetResponse{ID: sh.ID.String(), Name: sh.Config.Name, Config: sh.Config})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) handleAddSheet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	sh := a.session.AddSheet(req.Name)
	writeJSON(w, http.StatusCreated, sheetResponse{ID: sh.ID.String(), Name: sh.Config.Name, Config: sh.Config})
}

func (a *App) handleCloseSheet(w http.ResponseWriter, r *http.Request) {
	if err := a.session.CloseSheet(sheetID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleRenameSheet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.session.RenameSheet(sheetID(r), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleDuplicateSheet(w http.ResponseWriter, r *http.Request) {
	sh, err := a.session.DuplicateSheet(sheetID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sheetResponse{ID: sh.ID.String(), Name: sh.Config.Name, Config: sh.Config})
}

func (a *App) handleDerivedView(w http.ResponseWriter, r *http.Request) {
	d, err := a.session.DerivedView(sheetID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (a *App) handleBaseView(w http.ResponseWriter, r *http.Request) {
	d, err := a.session.BaseView(sheetID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (a *App) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var cfg preset.FilterConfig
	if !decode(w, r, &cfg) {
		return
	}
	if err := a.session.SetFilters(sheetID(r), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleSetSorts(w http.ResponseWriter, r *http.Request) {
	var cfg preset.SortConfig
	if !decode(w, r, &cfg) {
		return
	}
	if err := a.session.SetSorts(sheetID(r), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleSetColumns(w http.ResponseWriter, r *http.Request) {
	var cfg preset.ColumnConfig
	if !decode(w, r, &cfg) {
		return
	}
	if err := a.session.SetColumns(sheetID(r), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handlePivotPreview(w http.ResponseWriter, r *http.Request) {
	var spec preset.PivotSpec
	if !decode(w, r, &spec) {
		return
	}
	d, err := a.session.PreviewPivot(sheetID(r), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (a *App) handlePivotGenerate(w http.ResponseWriter, r *http.Request) {
	var spec preset.PivotSpec
	if !decode(w, r, &spec) {
		return
	}
	d, err := a.session.GeneratePivot(sheetID(r), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func (a *App) handlePivotClear(w http.ResponseWriter, r *http.Request) {
	if err := a.session.ClearPivot(sheetID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleVlookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LookupPath string          `json:"lookup_path"`
		Spec       preset.JoinSpec `json:"spec"`
	}
	if !decode(w, r, &req) {
		return
	}
	lookup, err := a.reader.Read(req.LookupPath)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.session.ApplyVlookup(sheetID(r), lookup, req.Spec); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleListPresets(w http.ResponseWriter, r *http.Request) {
	names, err := a.presets.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (a *App) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.presets.Save(r.Context(), name, a.session.Snapshot()); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := a.presets.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.session.ApplyPreset(p); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *App) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := a.presets.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func sheetID(r *http.Request) core.SheetID {
	return core.SheetID(chi.URLParam(r, "sheetID"))
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[UI] failed to encode response: %v", err)
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps domain errors onto HTTP statuses: not-found to 404,
// user-correctable conditions to 4xx, everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsJoinPrecondition(err),
		errors.Is(err, core.ErrEmptyPivotSelection),
		errors.Is(err, core.ErrUnsupportedFile),
		errors.Is(err, core.ErrEmptyFile):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoDataset):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("[UI] internal error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
