// Package httpapi exposes the LINE webhook and LIFF self-registration over gin.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubex/rclink/audit"
	"github.com/kubex/rclink/queue"
	"github.com/kubex/rclink/roster"
	"go.uber.org/zap"
)

const (
	HeaderLineUserID    = "X-Line-User-Id"
	HeaderDevLineUserID = "X-Dev-Line-User-Id"
)

type Linker interface {
	Link(ctx context.Context, userID, observedName string, mode roster.Mode, opts ...roster.LinkOption) roster.LinkOutcome
}

type MemberFinder interface {
	FindByLineUserID(ctx context.Context, lineUserID string) (*roster.Member, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

type AuditLog interface {
	Append(prefix string, rec audit.Record) error
}

type Options struct {
	ChannelSecret string
	// AllowInsecure skips webhook signature checks and accepts the dev
	// user header. Never enable in production.
	AllowInsecure  bool
	OnboardingMode string
}

type Server struct {
	linker  Linker
	members MemberFinder
	jobs    Enqueuer
	audit   AuditLog
	log     *zap.Logger
	opts    Options
}

func New(linker Linker, members MemberFinder, jobs Enqueuer, auditLog AuditLog, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OnboardingMode == "" {
		opts.OnboardingMode = "silent"
	}
	return &Server{linker: linker, members: members, jobs: jobs, audit: auditLog, log: log, opts: opts}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.POST("/line/webhook", s.webhook)

	liff := api.Group("/liff", s.requireLineUser)
	liff.POST("/register", s.register)
	liff.GET("/me", s.me)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ts": audit.FormatJST(time.Now())})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}
