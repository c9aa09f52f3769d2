package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranav-un/kortex/internal/admin"
	"github.com/pranav-un/kortex/internal/api/handlers"
	"github.com/pranav-un/kortex/internal/api/middleware"
	"github.com/pranav-un/kortex/internal/cache"
	"github.com/pranav-un/kortex/internal/config"
	"github.com/pranav-un/kortex/internal/document"
	"github.com/pranav-un/kortex/internal/embedding"
	"github.com/pranav-un/kortex/internal/llm"
	"github.com/pranav-un/kortex/internal/rag"
	"github.com/pranav-un/kortex/internal/summary"
	"github.com/pranav-un/kortex/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	cache *cache.Cache
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, c *cache.Cache, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		cache: c,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() (http.Handler, error) {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no identity required)
	health := handlers.NewHealthHandler(rt.db, rt.cache)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	docSvc := document.NewService(rt.db)

	embedder, err := embedding.NewProvider(rt.cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("init embedding provider: %w", err)
	}

	llmProvider, err := llm.NewProvider(rt.cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	vs := vectorstore.NewQdrantStore(rt.cfg.Qdrant, rt.cfg.Embedding.Dimension)
	pipeline := rag.NewPipeline(docSvc, vs, embedder, llmProvider, rt.cache, rt.cfg.Chunking, rt.cfg.RAG)
	summarySvc := summary.NewService(docSvc, llmProvider)
	adminSvc := admin.NewService(docSvc, pipeline, vs, time.Now())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		docH := handlers.NewDocumentHandler(docSvc, pipeline)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Get("/{id}/chunks", docH.Chunks)
			r.Delete("/{id}", docH.Delete)

			summaryH := handlers.NewSummaryHandler(summarySvc)
			r.Get("/{id}/summary", summaryH.Get)
			r.Post("/{id}/summary", summaryH.Regenerate)
		})

		searchH := handlers.NewSearchHandler(pipeline)
		r.Post("/search", searchH.Search)
		r.Post("/documents/{id}/search", searchH.SearchInDocument)

		qaH := handlers.NewQAHandler(pipeline)
		r.Post("/qa", qaH.Ask)
		r.Post("/documents/{id}/qa", qaH.AskInDocument)

		adminH := handlers.NewAdminHandler(adminSvc)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/info", adminH.Info)
			r.Get("/embeddings/status", adminH.EmbeddingStatus)
			r.Post("/embeddings/retry/{id}", adminH.RetryEmbeddings)
			r.Post("/collections/reset", adminH.ResetCollection)
		})
	})

	return r, nil
}
