// Package ui serves document checking over HTTP, as a JSON API and a small
// HTML page.
package ui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/store"
)

// MaxDocumentSize bounds the request bodies the server reads.
const MaxDocumentSize = 4 << 20

const uuidPattern = "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"

//go:embed templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("giftlint.ui")

type Checker interface {
	CheckRaw(ctx context.Context, name string, raw []byte) (diagnose.Report, error)
}

type Server struct {
	checker    Checker
	repo       store.Repository
	router     chi.Router
	templateFS fs.FS
	funcMap    template.FuncMap
}

func NewServer(checker Checker, repo store.Repository) (*Server, error) {
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
	}

	// parse once up front so a broken template fails at startup
	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		checker:    checker,
		repo:       repo,
		templateFS: templateFS,
		funcMap:    funcMap,
	}
	s.router = s.newRouter()
	return s, nil
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Post("/check", s.handleCheckForm)

	r.Route("/api", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id:"+uuidPattern+"}", s.handleGetReport)
		r.Delete("/reports/{id:"+uuidPattern+"}", s.handleDeleteReport)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, http.StatusNotFound, "the requested resource was not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		})
	})

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("rendering %s: %v", name, err)
	}
}

// check decodes and checks a document and stores the report.
func (s *Server) check(ctx context.Context, name string, raw []byte) (store.Record, error) {
	report, err := s.checker.CheckRaw(ctx, name, raw)
	if err != nil {
		return store.Record{}, err
	}
	return s.repo.Create(ctx, report)
}

// POST /api/check: the body is the document, ?name= names it.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		} else {
			jsonError(w, http.StatusBadRequest, "reading body: "+err.Error())
		}
		return
	}

	rec, err := s.check(r.Context(), r.URL.Query().Get("name"), raw)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Location", "/api/reports/"+rec.ID.String())
	jsonResponse(w, http.StatusCreated, rec)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	all, err := s.repo.GetAll(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if all == nil {
		all = []store.Record{}
	}
	jsonResponse(w, http.StatusOK, all)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	s.withRecord(w, r, s.repo.GetByID)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	s.withRecord(w, r, s.repo.Delete)
}

func (s *Server) withRecord(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (store.Record, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := op(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	} else if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

type indexData struct {
	Name    string
	Text    string
	Record  *store.Record
	Reports []store.Record
	Error   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{}
	data.Reports, _ = s.repo.GetAll(r.Context())
	s.render(w, "index.html", data)
}

func (s *Server) handleCheckForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxDocumentSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
		return
	}

	data := indexData{
		Name: r.FormValue("name"),
		Text: r.FormValue("text"),
	}
	rec, err := s.check(r.Context(), data.Name, []byte(data.Text))
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Record = &rec
	}
	data.Reports, _ = s.repo.GetAll(r.Context())
	s.render(w, "index.html", data)
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("writing response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]any{
		"status": status,
		"error":  msg,
	})
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFSType serves files from a directory on disk when present and
// falls back to the embedded copy, so templates can be edited without a
// rebuild.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
