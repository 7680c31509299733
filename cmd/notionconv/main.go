package main

import (
	"archive/zip"
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/notionconv/bundle"
	"github.com/hazyhaar/notionconv/dbopen"
	"github.com/hazyhaar/notionconv/idgen"
	"github.com/hazyhaar/notionconv/mdconv"
	"github.com/hazyhaar/notionconv/render"
	"github.com/hazyhaar/notionconv/runlog"
)

//go:embed static
var staticFS embed.FS

const maxUploadBytes = 256 << 20

var mcpImpl = &mcp.Implementation{Name: "notionconv", Version: "1.0.0"}

func main() {
	port := env("PORT", "8086")
	runlogPath := env("RUNLOG_DB", "db/runlog.db")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")
	authPassword := os.Getenv("AUTH_PASSWORD")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// MCP stdio mode: no HTTP, no run log.
	if mcpTransport == "stdio" {
		a, err := mdconv.NewAssembler(mdconv.Config{Logger: logger})
		if err != nil {
			slog.Error("assembler init", "error", err)
			os.Exit(1)
		}
		srv := mcp.NewServer(mcpImpl, nil)
		a.RegisterMCP(srv)
		slog.Info("mcp server starting", "transport", "stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("mcp server", "error", err)
			os.Exit(1)
		}
		return
	}

	db, err := dbopen.Open(runlogPath, dbopen.WithMkdirAll(), dbopen.WithSchema(runlog.Schema))
	if err != nil {
		slog.Error("open runlog db", "path", runlogPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	store := runlog.NewStore(db)

	// Hash once at startup so request handling only compares.
	var passwordHash []byte
	if authPassword != "" {
		passwordHash, err = bcrypt.GenerateFromPassword([]byte(authPassword), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("hash password", "error", err)
			os.Exit(1)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("static/index.html")
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
	r.Handle("/static/*", http.FileServerFS(staticFS))

	r.Group(func(r chi.Router) {
		if passwordHash != nil {
			r.Use(requirePassword(passwordHash))
		}

		r.Post("/api/convert", func(w http.ResponseWriter, r *http.Request) {
			handleConvert(w, r, store, logger)
		})

		r.Post("/api/preview", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Markdown string `json:"markdown"`
			}
			if err := json.NewDecoder(io.LimitReader(r.Body, 8<<20)).Decode(&req); err != nil {
				writeError(w, 400, fmt.Errorf("invalid request body: %w", err))
				return
			}
			sel := mdconv.ExtractSection(req.Markdown, mdconv.DefaultConfig())
			body := sel.Body
			if sel.Category == mdconv.CategoryNone {
				body = req.Markdown
			}
			cleaned := mdconv.Clean(body)
			html, err := render.HTML(cleaned)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]any{
				"selected_section": sel.Category,
				"selected_heading": sel.Heading,
				"html":             html,
				"char_len":         utf8.RuneCountInString(cleaned),
			})
		})

		r.Get("/api/labels", func(w http.ResponseWriter, _ *http.Request) {
			cfg := mdconv.DefaultConfig()
			writeJSON(w, 200, map[string]any{
				"video_labels":   cfg.VideoLabels,
				"lesson_labels":  cfg.LessonLabels,
				"heading_levels": cfg.HeadingLevels,
			})
		})

		r.Get("/api/runs", func(w http.ResponseWriter, r *http.Request) {
			runs, err := store.ListRuns(r.Context(), queryInt(r, "limit", 50))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if runs == nil {
				runs = []runlog.Run{}
			}
			writeJSON(w, 200, runs)
		})

		r.Get("/api/runs/{runID}/files", func(w http.ResponseWriter, r *http.Request) {
			files, err := store.RunFiles(r.Context(), chi.URLParam(r, "runID"))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			if files == nil {
				files = []mdconv.ReportRow{}
			}
			writeJSON(w, 200, files)
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func handleConvert(w http.ResponseWriter, r *http.Request, store *runlog.Store, logger *slog.Logger) {
	logger = logger.With("upload_id", idgen.New())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, 400, fmt.Errorf("parse upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, 400, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, 400, fmt.Errorf("read upload: %w", err))
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, 400, fmt.Errorf("not a zip archive: %w", err))
		return
	}

	ex, err := bundle.ReadExport(zr)
	if err != nil {
		writeError(w, 400, err)
		return
	}
	if len(ex.Flagged) > 0 {
		logger.Warn("invalid utf-8 replaced", "files", ex.Flagged)
	}

	cfg, err := configFromForm(r)
	if err != nil {
		writeError(w, 400, err)
		return
	}
	cfg.Logger = logger
	a, err := mdconv.NewAssembler(cfg)
	if err != nil {
		writeError(w, 400, err)
		return
	}

	res := a.AssembleAll(ex.Files, ex.PageIDs)
	if err := store.RecordRun(r.Context(), header.Filename, res); err != nil {
		// Conversion succeeded; losing history must not fail the download.
		logger.Error("record run", "run_id", res.RunID, "error", err)
	}

	prov := bundle.NewProvenance(a.Config(), header.Filename, res)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", bundle.ArchiveName(res.RunID)))
	if err := bundle.WriteArchive(w, res, prov); err != nil {
		logger.Error("write archive", "run_id", res.RunID, "error", err)
	}
	logger.Info("conversion done",
		"run_id", res.RunID, "files", len(res.Report), "records", len(res.Records))
}

// configFromForm builds a conversion config from the optional multipart form
// overrides. Absent fields keep their defaults.
func configFromForm(r *http.Request) (mdconv.Config, error) {
	var cfg mdconv.Config

	if v := r.FormValue("video_labels"); v != "" {
		cfg.VideoLabels = splitLabels(v)
	}
	if v := r.FormValue("lesson_labels"); v != "" {
		cfg.LessonLabels = splitLabels(v)
	}
	if v := r.FormValue("heading_levels"); v != "" {
		for _, part := range strings.Split(v, ",") {
			lvl, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return cfg, fmt.Errorf("invalid heading level %q", part)
			}
			cfg.HeadingLevels = append(cfg.HeadingLevels, lvl)
		}
	}
	var err error
	if cfg.ChunkMaxLen, err = formInt(r, "chunk_max_len"); err != nil {
		return cfg, err
	}
	if cfg.ChunkOverlap, err = formInt(r, "chunk_overlap"); err != nil {
		return cfg, err
	}
	cfg.NoChunk = r.FormValue("no_chunk") == "true" || r.FormValue("no_chunk") == "1"
	return cfg, nil
}

func splitLabels(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formInt(r *http.Request, key string) (int, error) {
	s := r.FormValue(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

// requirePassword guards API routes with HTTP Basic auth; any user name is
// accepted, the password must match.
func requirePassword(hash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, password, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="notionconv"`)
				writeJSON(w, 401, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- Helpers ---

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
