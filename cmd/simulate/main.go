// Package main drives a headless run through the upgrade menu so drafting
// odds and buff growth can be inspected without a game client.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/rarity"
	"github.com/cory-johannsen/arena/internal/game/run"
	"github.com/cory-johannsen/arena/internal/game/upgrade"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	levels := flag.Int("levels", 20, "number of level-ups to play")
	strategy := flag.String("strategy", "first", "card choice: first, random, reroll or skip")
	seed := flag.Uint64("seed", 0, "run seed; overrides upgrade.seed, 0 = config or random")
	coinsPerLevel := flag.Int("coins", 5, "coins awarded each level")
	save := flag.Bool("save", false, "persist the final run snapshot to PostgreSQL")
	resume := flag.String("resume", "", "run ID to load from PostgreSQL and continue")
	flag.Parse()

	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "simulate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catStart := time.Now()
	reg, err := catalog.Load(cfg.Content.CatalogDir, cfg.Content.LuaCatalog)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.Int("items", reg.Len()),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)

	bus := event.NewMemoryBus()
	event.SubscribeAll(bus, func(_ context.Context, e event.Event) error {
		logger.Debug("upgrade event", zap.Stringer("type", e.Type), zap.Any("payload", e.Payload))
		return nil
	})

	runCfg := runConfig(cfg)

	var repo *postgres.RunRepository
	if *save || *resume != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.CheckSchema(ctx); err != nil {
			logger.Fatal("checking database schema", zap.Error(err))
		}
		repo = postgres.NewRunRepository(pool.DB())
	}

	var r *run.Run
	if *resume != "" {
		id, err := uuid.Parse(*resume)
		if err != nil {
			logger.Fatal("parsing run id", zap.String("resume", *resume), zap.Error(err))
		}
		snap, err := repo.Load(ctx, id)
		if err != nil {
			logger.Fatal("loading run", zap.Stringer("run_id", id), zap.Error(err))
		}
		r, err = run.Restore(snap, runCfg, reg, bus, logger, metrics)
		if err != nil {
			logger.Fatal("restoring run", zap.Error(err))
		}
	} else {
		s := *seed
		if s == 0 {
			s = cfg.Upgrade.Seed
		}
		if s == 0 {
			s = dice.NewSeed()
		}
		r = run.New(runCfg, reg, dice.NewSeededSource(s), bus, logger, metrics)
	}
	logger.Info("run started",
		zap.Stringer("run_id", r.ID()),
		zap.Uint64("seed", r.Seed()),
		zap.String("strategy", *strategy),
	)

	// Choices use their own stream so the run's draft sequence depends only on its seed.
	chooser := dice.NewSeededSource(r.Seed() + 1)
	for i := 0; i < *levels; i++ {
		if err := r.AddCoins(*coinsPerLevel); err != nil {
			logger.Fatal("awarding coins", zap.Error(err))
		}
		r.GainXP(ctx, r.XPToNext()-r.XP())
		for r.Menu().IsOpen() {
			if err := play(ctx, r.Menu(), *strategy, chooser); err != nil {
				logger.Fatal("resolving menu", zap.Error(err))
			}
		}
	}

	logger.Info("run finished",
		zap.Int("level", r.Level()),
		zap.Int("coins", r.Inventory().Coins()),
		zap.Int("weapons", len(r.Inventory().OwnedWeapons())),
		zap.Int("passives", len(r.Inventory().OwnedPassives())),
	)
	for _, w := range r.Inventory().OwnedWeapons() {
		stats, _ := r.WeaponStats(w.ItemID)
		logger.Info("weapon",
			zap.String("item_id", w.ItemID),
			zap.Int("level", w.Level),
			zap.Float64("damage", stats.Damage),
			zap.Float64("cooldown", stats.Cooldown),
			zap.Float64("projectile_count", stats.ProjectileCount),
			zap.Float64("area", stats.Area),
		)
	}
	logger.Info("buffs", r.Buffs().Current().Fields()...)
	if err := observability.LogSnapshot(logger, promReg); err != nil {
		logger.Error("gathering metrics", zap.Error(err))
	}

	if *save {
		snap, err := r.Snapshot()
		if err != nil {
			logger.Fatal("capturing run snapshot", zap.Error(err))
		}
		if err := repo.Save(ctx, snap); err != nil {
			logger.Fatal("saving run", zap.Error(err))
		}
		logger.Info("run saved", zap.Stringer("run_id", r.ID()))
	}

	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}

func runConfig(cfg config.Config) run.Config {
	return run.Config{
		Upgrade: upgrade.Config{
			CardsPerDraft: cfg.Upgrade.CardsPerDraft,
			RerollCost:    cfg.Upgrade.RerollCost,
			Rarity: rarity.Params{
				Base:         cfg.Rarity.Base.Array(),
				Shift:        cfg.Rarity.LuckShift.Array(),
				MinCommon:    cfg.Rarity.MinCommon,
				MaxLegendary: cfg.Rarity.MaxLegendary,
			},
		},
		WeaponSlots:  cfg.Upgrade.WeaponSlots,
		PassiveSlots: cfg.Upgrade.PassiveSlots,
		XPBase:       cfg.Leveling.XPBase,
		XPGrowth:     cfg.Leveling.XPGrowth,
	}
}

// play resolves one menu opening. The reroll strategy rerolls once when it
// can afford to and then takes the first card.
func play(ctx context.Context, m *upgrade.Menu, strategy string, chooser dice.Source) error {
	cards := m.Cards()
	if len(cards) == 0 {
		return m.Skip(ctx)
	}
	switch strategy {
	case "skip":
		return m.Skip(ctx)
	case "random":
		_, err := m.Pick(ctx, chooser.Intn(len(cards)))
		return err
	case "reroll":
		if err := m.Reroll(ctx); err != nil && !errors.Is(err, upgrade.ErrInsufficientCoins) {
			return err
		}
		if len(m.Cards()) == 0 {
			return m.Skip(ctx)
		}
	}
	_, err := m.Pick(ctx, 0)
	return err
}
