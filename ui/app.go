// Package ui exposes the session over HTTP as a thin JSON API. Handlers
// translate requests into engine configs; they never hold table logic.
package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"excelops/app"
	"excelops/ports"
)

// App represents the UI application
type App struct {
	router  *chi.Mux
	session *app.Session
	reader  ports.TabularReader
	presets ports.PresetStore
}

// NewApp wires the HTTP layer to the session and its ports
func NewApp(session *app.Session, reader ports.TabularReader, presets ports.PresetStore) *App {
	a := &App{
		router:  chi.NewRouter(),
		session: session,
		reader:  reader,
		presets: presets,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/help", a.handleHelp)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/dataset/load", a.handleLoadDataset)
		r.Get("/dataset", a.handleRawDataset)
		r.Post("/dataset/rows/delete", a.handleDeleteRows)
		r.Post("/export", a.handleExport)

		r.Route("/sheets", func(r chi.Router) {
			r.Get("/", a.handleListSheets)
			r.Post("/", a.handleAddSheet)
			r.Route("/{sheetID}", func(r chi.Router) {
				r.Delete("/", a.handleCloseSheet)
				r.Put("/name", a.handleRenameSheet)
				r.Post("/duplicate", a.handleDuplicateSheet)
				r.Get("/view", a.handleDerivedView)
				r.Get("/base", a.handleBaseView)
				r.Put("/filters", a.handleSetFilters)
				r.Put("/sorts", a.handleSetSorts)
				r.Put("/columns", a.handleSetColumns)
				r.Post("/pivot/preview", a.handlePivotPreview)
				r.Post("/pivot", a.handlePivotGenerate)
				r.Delete("/pivot", a.handlePivotClear)
				r.Post("/vlookup", a.handleVlookup)
			})
		})

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", a.handleListPresets)
			r.Post("/{name}", a.handleSavePreset)
			r.Post("/{name}/apply", a.handleApplyPreset)
			r.Delete("/{name}", a.handleDeletePreset)
		})
	})
}

// Router returns the underlying handler for serving
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
