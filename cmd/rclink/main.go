// Command rclink serves the LINE webhook and LIFF registration endpoints and
// runs the follow-job worker that links LINE users to roster members.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubex/rclink/audit"
	"github.com/kubex/rclink/config"
	"github.com/kubex/rclink/follow"
	"github.com/kubex/rclink/httpapi"
	"github.com/kubex/rclink/line"
	"github.com/kubex/rclink/logger"
	"github.com/kubex/rclink/queue"
	"github.com/kubex/rclink/roster"
	"github.com/kubex/rclink/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("rclink stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := roster.ParseMode(cfg.OnboardingMode); err != nil {
		return err
	}
	if cfg.AllowInsecure {
		log.Warn("DEV_ALLOW_INSECURE is set: webhook signatures are not checked")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := storage.Load([]byte(cfg.StorageConfig))
	if err != nil {
		return err
	}
	if err := provider.Initialize(); err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()
	if err := watchLinkChanges(provider, log); err != nil {
		return err
	}

	jobs, err := queue.Dial(ctx, cfg.RedisURL, cfg.QueueKey)
	if err != nil {
		return err
	}
	defer func() { _ = jobs.Close() }()

	linker := roster.NewLinker(provider, cfg.Normalizer())
	auditLog := audit.New(cfg.LogsBasePath)
	processor := follow.NewProcessor(linker, line.NewClient(cfg.LineAPIBase, cfg.ChannelAccessToken), auditLog, log.Named("follow"))

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.New(linker, provider, jobs, auditLog, log.Named("http"), httpapi.Options{
		ChannelSecret:  cfg.ChannelSecret,
		AllowInsecure:  cfg.AllowInsecure,
		OnboardingMode: cfg.OnboardingMode,
	})
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return processor.Run(gctx, jobs)
	})
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type updateNotifier interface {
	AfterUpdate(exec func()) error
}

// watchLinkChanges logs every committed link or unlink when the provider
// reports writes.
func watchLinkChanges(provider any, log *zap.Logger) error {
	n, ok := provider.(updateNotifier)
	if !ok {
		return nil
	}
	return n.AfterUpdate(func() {
		log.Info("roster links changed")
	})
}
