package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/block"
	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{
			store:    st,
			generate: generateReportForRun,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// reportParams is the POST /api/reports request body.
type reportParams struct {
	Province string `json:"province"`
	District string `json:"district"`
	Village  string `json:"village"`
	Top      int    `json:"top"`
	Format   string `json:"format"`
}

// apiServer holds the dashboard API dependencies. generate runs a full
// report generation for an accepted run; it is injected so tests can stub
// the expensive path.
type apiServer struct {
	store    store.Store
	generate func(ctx context.Context, st store.Store, runID string, p reportParams)
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/areas", s.handleAreas)
		r.Get("/blocks", s.handleBlocks)
		r.Get("/zones", s.handleZones)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
		r.Post("/reports", s.handleGenerateReport)
	})

	return r
}

func (s *apiServer) handleAreas(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.store.ListBlocks(r.Context(), store.BlockFilter{Limit: 100000})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, block.Areas(blocks))
}

func (s *apiServer) handleBlocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minScore, _ := strconv.ParseFloat(q.Get("min_score"), 64)
	limit, _ := strconv.Atoi(q.Get("limit"))

	blocks, err := s.store.ListBlocks(r.Context(), store.BlockFilter{
		Province:    q.Get("province"),
		District:    q.Get("district"),
		Subdistrict: q.Get("subdistrict"),
		Village:     q.Get("village"),
		MinScore:    minScore,
		Limit:       limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if blocks == nil {
		blocks = []model.HappyBlock{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *apiServer) handleZones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	blocks, err := s.store.ListBlocks(r.Context(), store.BlockFilter{
		Province: q.Get("province"),
		District: q.Get("district"),
		Limit:    100000,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	zones := block.BuildZones(blocks)
	if zones == nil {
		zones = []model.SalesZone{}
	}
	writeJSON(w, http.StatusOK, zones)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{
		Status: q.Get("status"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []model.ReportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, eris.New("run not found"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var p reportParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	run, err := s.store.CreateRun(r.Context(), reportArea(p.Province, p.District, p.Village))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Generation runs detached from the request context.
	go s.generate(context.Background(), s.store, run.ID, p)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"status": model.RunPending,
	})
}

// generateReportForRun executes the same generation path as the report
// command and records the outcome on the run.
func generateReportForRun(ctx context.Context, st store.Store, runID string, p reportParams) {
	log := zap.L().With(zap.String("run", runID))

	fail := func(err error) {
		log.Error("report generation failed", zap.Error(err))
		if failErr := st.FailRun(ctx, runID, err.Error()); failErr != nil {
			log.Warn("record run failure", zap.Error(failErr))
		}
	}

	loader, err := initLoader("")
	if err != nil {
		fail(err)
		return
	}
	records, _, err := loader.Load(ctx)
	if err != nil {
		fail(err)
		return
	}

	filter := block.Filter{Province: p.Province, District: p.District}
	if p.Village != "" {
		filter.Villages = []string{p.Village}
	}
	blocks := block.PrioritizeBlocks(filter.Apply(block.Aggregate(records)), p.Top)

	l2sByBlock := make(map[string][]model.L2Port)
	for _, l2 := range records {
		l2sByBlock[l2.HappyBlock] = append(l2sByBlock[l2.HappyBlock], l2)
	}

	format := p.Format
	if format == "" {
		format = cfg.Report.Format
	}

	outPath, rows, err := buildAndWrite(ctx, st, blocks, l2sByBlock, format, "")
	if err != nil {
		fail(err)
		return
	}
	if err := st.CompleteRun(ctx, runID, len(rows), outPath); err != nil {
		log.Warn("record run completion", zap.Error(err))
		return
	}
	log.Info("report generated", zap.String("path", outPath), zap.Int("rows", len(rows)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
