// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattn/html2md"
	"github.com/mattn/html2md/internal/source"
)

// Fetcher downloads a page; *source.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Server struct {
	router  chi.Router
	opt     html2md.Option
	fetcher Fetcher
	log     *slog.Logger
	maxBody int64
}

// New returns a Server converting with opt. maxBody limits request bodies.
func New(opt *html2md.Option, fetcher Fetcher, log *slog.Logger, maxBody int64) *Server {
	s := &Server{
		fetcher: fetcher,
		log:     log,
		maxBody: maxBody,
	}
	if opt != nil {
		s.opt = *opt
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	r.Post("/convert/url", s.handleConvertURL)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opt, err := s.option(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	doc, err := source.Decode(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	s.writeMarkdown(w, doc, opt)
}

type convertURLRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleConvertURL(w http.ResponseWriter, r *http.Request) {
	opt, err := s.option(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req convertURLRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		jsonError(w, "url must be an absolute http(s) URL", http.StatusBadRequest)
		return
	}

	doc, err := s.fetcher.Fetch(r.Context(), u.String())
	if err != nil {
		s.log.Warn("fetch failed", "url", u.String(), "error", err)
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, source.ErrTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, source.ErrForbiddenAddress):
			status = http.StatusForbidden
		}
		jsonError(w, err.Error(), status)
		return
	}
	s.writeMarkdown(w, doc, opt)
}

// option applies the spacing, align and blank query parameters to the
// server defaults.
func (s *Server) option(r *http.Request) (*html2md.Option, error) {
	opt := s.opt
	q := r.URL.Query()
	if v := q.Get("spacing"); v != "" {
		sp, err := html2md.ParseSpacing(v)
		if err != nil {
			return nil, err
		}
		opt.Spacing = sp
	}
	for key, dst := range map[string]*bool{"align": &opt.AlignTables, "blank": &opt.BlankLines} {
		if v := q.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errors.New("invalid " + key + " parameter")
			}
			*dst = b
		}
	}
	return &opt, nil
}

func (s *Server) writeMarkdown(w http.ResponseWriter, doc string, opt *html2md.Option) {
	md, err := html2md.ConvertString(doc, opt)
	if err != nil {
		jsonError(w, "failed to convert", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, md)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
