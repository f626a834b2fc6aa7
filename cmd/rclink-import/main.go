// Command rclink-import loads a JSON roster into the configured store.
// Members already present under the same name are skipped, so the import can
// be re-run after editing the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kubex/rclink/config"
	"github.com/kubex/rclink/logger"
	"github.com/kubex/rclink/roster"
	"github.com/kubex/rclink/storage"
	"github.com/kubex/rclink/storage/jsonfile"
	"go.uber.org/zap"
)

func main() {
	var dataDir, set string
	var dryRun bool
	flag.StringVar(&dataDir, "data", "./data", "directory holding members.<set>.json")
	flag.StringVar(&set, "set", "roster", "roster file set name")
	flag.BoolVar(&dryRun, "dry-run", false, "print what would be imported without writing")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	defer func() { _ = log.Sync() }()

	members, err := jsonfile.New(dataDir).ReadRoster(set, cfg.Normalizer())
	if err != nil {
		log.Fatal("read roster", zap.Error(err))
	}

	if dryRun {
		for _, m := range members {
			fmt.Printf("%s\t%s\n", m.NameKey, m.Name)
		}
		return
	}

	provider, err := storage.Load([]byte(cfg.StorageConfig))
	if err != nil {
		log.Fatal("load storage", zap.Error(err))
	}
	if err := provider.Initialize(); err != nil {
		log.Fatal("initialize storage", zap.Error(err))
	}
	defer func() { _ = provider.Close() }()

	created, skipped, err := importMembers(context.Background(), provider, members)
	if err != nil {
		log.Fatal("import failed", zap.Int("created", created), zap.Error(err))
	}
	log.Info("import complete", zap.Int("created", created), zap.Int("skipped", skipped))
}

type memberStore interface {
	CreateMember(ctx context.Context, member roster.Member) (int64, error)
	ListMembers(ctx context.Context) ([]roster.Member, error)
}

func importMembers(ctx context.Context, store memberStore, members []roster.Member) (created, skipped int, err error) {
	existing, err := store.ListMembers(ctx)
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m.Name] = true
	}

	for _, m := range members {
		if seen[m.Name] {
			skipped++
			continue
		}
		if _, err := store.CreateMember(ctx, m); err != nil {
			if errors.Is(err, roster.ErrDuplicate) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("create %q: %w", m.Name, err)
		}
		seen[m.Name] = true
		created++
	}
	return created, skipped, nil
}
