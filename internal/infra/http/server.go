package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"custodia/internal/config"
	"custodia/internal/domain"
	"custodia/internal/infra/db"
	"custodia/internal/infra/policyrole"
	"custodia/internal/infra/ratelimit"
	"custodia/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	signUC   *usecase.SignDocument
	verifyUC *usecase.VerifySeal
	docs     usecase.DocumentRepository
	chain    usecase.ChainRepository

	adminAPIKey   string
	gatewaySecret string

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool

	policyInitErr error
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Sign        *usecase.SignDocument
	Verify      *usecase.VerifySeal
	Documents   usecase.DocumentRepository
	Chain       usecase.ChainRepository
	AdminAPIKey string
	GatewaySec  string
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		signUC:        deps.Sign,
		verifyUC:      deps.Verify,
		docs:          deps.Documents,
		chain:         deps.Chain,
		adminAPIKey:   deps.AdminAPIKey,
		gatewaySecret: deps.GatewaySec,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.adminAPIKey = s.cfg.AdminAPIKey
	s.gatewaySecret = s.cfg.GatewaySecret

	var policy usecase.SealPolicy
	ctx := context.Background()
	if s.cfg.SealPolicyPath != "" {
		engine, err := policyrole.NewEngineFromPath(ctx, s.cfg.SealPolicyPath)
		if err != nil {
			s.policyInitErr = err
		} else {
			policy = engine
		}
	} else {
		engine, err := policyrole.NewEngine(ctx)
		if err != nil {
			s.policyInitErr = err
		} else {
			policy = engine
		}
	}

	if s.store != nil && s.store.DB != nil {
		uow := db.NewUnitOfWork(s.store.DB)
		s.docs = db.NewDocumentRepository(s.store.DB)
		s.chain = db.NewChainEventRepository(s.store.DB)
		s.signUC = &usecase.SignDocument{
			UoW:    uow,
			Hash:   &usecase.HashEngine{},
			Ledger: &usecase.SignatureLedger{},
			Seals: &usecase.SealIssuer{
				CodePrefix: s.cfg.SealCodePrefix,
				Policy:     policy,
			},
		}
		s.verifyUC = &usecase.VerifySeal{
			Seals:        db.NewSealRepository(s.store.DB),
			Fingerprints: db.NewFingerprintRepository(s.store.DB),
			Signatures:   db.NewSignatureRepository(s.store.DB),
			Chain:        s.chain,
			MaskIdentity: true,
		}
	} else {
		log.Printf("custodiad: no database configured, signing and verification endpoints disabled")
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/documents", s.handleAdminCreateDocument)
		v1.POST("/documents/:document_id/sign", s.handleSignDocument)
		v1.GET("/documents/:document_id/chain", s.handleDocumentChain)

		v1.GET("/verify/:token", s.rateLimited(s.handleVerify))
		v1.POST("/verify/:token", s.rateLimited(s.handleVerify))
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) Run() error {
	if s.policyInitErr != nil {
		return s.policyInitErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
