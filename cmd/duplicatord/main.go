// CLAUDE:SUMMARY HTTP service for website duplication — chi router, multipart batch runs, run history, bundle download, optional MCP stdio mode.
// Command duplicatord serves the duplication pipeline over HTTP.
//
//	POST /api/batches              multipart archives + copies + zone -> run
//	GET  /api/batches              recent run history
//	GET  /api/batches/{id}/bundle  download a run's master bundle
//	GET  /health
//
// With -mcp stdio it serves the duplicator MCP tools on stdin/stdout
// instead of HTTP. Bearer auth is enabled when DUPLICATORD_TOKEN is set.
package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/vvve011/duplicator/batch"
	"github.com/vvve011/duplicator/domsynth"
	"github.com/vvve011/duplicator/idgen"
	"github.com/vvve011/duplicator/kit"
	"github.com/vvve011/duplicator/runlog"
	"github.com/vvve011/duplicator/shield"
)

func main() {
	configPath := flag.String("config", "", "path to duplicatord.yaml config file")
	mcpMode := flag.String("mcp", "", "serve MCP tools instead of HTTP: 'stdio'")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *mcpMode); err != nil {
		logger.Error("duplicatord: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, mcpMode string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	store, err := runlog.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	orch, err := batch.New(batch.Config{
		WorkDir:     cfg.WorkDir,
		LexiconPath: cfg.Lexicon,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	svc := &service{cfg: cfg, orch: orch, store: store, logger: logger}

	if mcpMode != "" {
		if mcpMode != "stdio" {
			return fmt.Errorf("unsupported -mcp transport %q", mcpMode)
		}
		srv := mcp.NewServer(&mcp.Implementation{Name: "duplicator", Version: "1.0.0"}, nil)
		orch.RegisterMCP(srv, func(ctx context.Context, limit int) (any, error) {
			return store.History(ctx, limit)
		})
		logger.Info("duplicatord: serving MCP on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	}

	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack(cfg.maxUploadBytes()) {
		r.Use(mw)
	}
	r.Use(contextMiddleware(idgen.Prefixed("req_", idgen.Default)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if token := os.Getenv("DUPLICATORD_TOKEN"); token != "" {
			r.Use(bearerAuth(token))
		}
		r.Post("/api/batches", svc.handleRun)
		r.Get("/api/batches", svc.handleHistory)
		r.Get("/api/batches/{id}/bundle", svc.handleBundle)
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("duplicatord: listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("duplicatord: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	return nil
}

type service struct {
	cfg    *Config
	orch   *batch.Orchestrator
	store  *runlog.Store
	logger *slog.Logger
}

// handleRun accepts multipart archives plus copies/zone fields and runs the
// batch synchronously.
func (s *service) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.maxUploadBytes()); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}

	copies := 1
	if v := r.FormValue("copies"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid copies %q", v))
			return
		}
		copies = n
	}
	if copies > s.cfg.MaxCopies {
		writeError(w, http.StatusBadRequest, fmt.Errorf("copies %d exceeds limit %d", copies, s.cfg.MaxCopies))
		return
	}
	zone := domsynth.ZoneCom
	if v := r.FormValue("zone"); v != "" {
		var err error
		if zone, err = domsynth.ParseZone(v); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	files := r.MultipartForm.File["archives"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no archives uploaded"))
		return
	}

	// Uploads land in a per-request dir, removed when the run is done.
	uploadDir, err := os.MkdirTemp(s.cfg.WorkDir, "upload_")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(uploadDir)

	var paths []string
	for _, fh := range files {
		path, err := saveUpload(fh, uploadDir)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("save %s: %w", fh.Filename, err))
			return
		}
		paths = append(paths, path)
	}

	started := time.Now()
	result := s.orch.ProcessMany(r.Context(), paths, copies, zone, s.cfg.OutputDir)
	finished := time.Now()

	runID, err := s.store.Record(r.Context(), result, started, finished)
	if err != nil {
		s.logger.Warn("run not recorded", "request_id", kit.GetRequestID(r.Context()), "error", err)
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{
		"run_id": runID,
		"result": result,
	})
}

func (s *service) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	runs, err := s.store.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *service) handleBundle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if run.MasterPath == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("run %s produced no bundle", id))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(run.MasterPath)+`"`)
	w.Header().Set("Content-Type", "application/zip")
	http.ServeFile(w, r, run.MasterPath)
}

// saveUpload copies one multipart file into dir, keeping only the base name.
func saveUpload(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := filepath.Base(fh.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("bad filename")
	}
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

// contextMiddleware enriches the request context with kit values so log
// lines and the run log can correlate entries.
func contextMiddleware(reqIDGen idgen.Generator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reqID := reqIDGen()
			ctx = kit.WithRequestID(ctx, reqID)
			ctx = kit.WithTransport(ctx, "http")
			ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)

			w.Header().Set("X-Request-ID", reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerAuth enforces a constant-time token check on every request.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
