// Package config provides Viper-based configuration loading for the arena
// upgrade engine and its tools.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the item catalog.
type ContentConfig struct {
	// CatalogDir is the directory of YAML item files.
	CatalogDir string `mapstructure:"catalog_dir"`
	// LuaCatalog is an optional Lua catalog loaded after CatalogDir.
	LuaCatalog string `mapstructure:"lua_catalog"`
}

// UpgradeConfig tunes the level-up menu and inventory limits.
type UpgradeConfig struct {
	CardsPerDraft int `mapstructure:"cards_per_draft"`
	// RerollCost is the coin price of a reroll; 0 makes rerolls free.
	RerollCost  int `mapstructure:"reroll_cost"`
	WeaponSlots int `mapstructure:"weapon_slots"`
	// PassiveSlots limits owned passives; -1 means unlimited.
	PassiveSlots int `mapstructure:"passive_slots"`
	// Seed fixes the run's random source; 0 draws a fresh seed.
	Seed uint64 `mapstructure:"seed"`
}

// TierWeights holds one value per rarity tier.
type TierWeights struct {
	Common    float64 `mapstructure:"common"`
	Rare      float64 `mapstructure:"rare"`
	Epic      float64 `mapstructure:"epic"`
	Legendary float64 `mapstructure:"legendary"`
}

// Array returns the weights in common, rare, epic, legendary order.
func (w TierWeights) Array() [4]float64 {
	return [4]float64{w.Common, w.Rare, w.Epic, w.Legendary}
}

// RarityConfig tunes the luck-adjusted rarity odds.
type RarityConfig struct {
	Base         TierWeights `mapstructure:"base"`
	LuckShift    TierWeights `mapstructure:"luck_shift"`
	MinCommon    float64     `mapstructure:"min_common"`
	MaxLegendary float64     `mapstructure:"max_legendary"`
}

// LevelingConfig sets the XP curve: leaving level L costs
// XPBase + XPGrowth*(L-1).
type LevelingConfig struct {
	XPBase   int `mapstructure:"xp_base"`
	XPGrowth int `mapstructure:"xp_growth"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Upgrade  UpgradeConfig  `mapstructure:"upgrade"`
	Rarity   RarityConfig   `mapstructure:"rarity"`
	Leveling LevelingConfig `mapstructure:"leveling"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateDatabase(c.Database),
		validateLogging(c.Logging),
		validateContent(c.Content),
		validateUpgrade(c.Upgrade),
		validateRarity(c.Rarity),
		validateLeveling(c.Leveling),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.CatalogDir == "" {
		return errors.New("content.catalog_dir must not be empty")
	}
	return nil
}

func validateUpgrade(u UpgradeConfig) error {
	var errs []string
	if u.CardsPerDraft < 1 {
		errs = append(errs, fmt.Sprintf("upgrade.cards_per_draft must be >= 1, got %d", u.CardsPerDraft))
	}
	if u.RerollCost < 0 {
		errs = append(errs, fmt.Sprintf("upgrade.reroll_cost must be >= 0, got %d", u.RerollCost))
	}
	if u.WeaponSlots < 1 {
		errs = append(errs, fmt.Sprintf("upgrade.weapon_slots must be >= 1, got %d", u.WeaponSlots))
	}
	if u.PassiveSlots < -1 {
		errs = append(errs, fmt.Sprintf("upgrade.passive_slots must be >= -1, got %d", u.PassiveSlots))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRarity(r RarityConfig) error {
	var errs []string
	sum := 0.0
	for i, w := range r.Base.Array() {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("rarity.base weight %d must be >= 0, got %v", i, w))
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-6 {
		errs = append(errs, fmt.Sprintf("rarity.base weights must sum to 1, got %v", sum))
	}
	if r.MinCommon < 0 || r.MinCommon > 1 {
		errs = append(errs, fmt.Sprintf("rarity.min_common must be in [0,1], got %v", r.MinCommon))
	}
	if r.MaxLegendary < 0 || r.MaxLegendary > 1 {
		errs = append(errs, fmt.Sprintf("rarity.max_legendary must be in [0,1], got %v", r.MaxLegendary))
	}
	if r.MinCommon+r.MaxLegendary > 1 {
		errs = append(errs, fmt.Sprintf("rarity.min_common + rarity.max_legendary must not exceed 1, got %v", r.MinCommon+r.MaxLegendary))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLeveling(l LevelingConfig) error {
	var errs []string
	if l.XPBase < 1 {
		errs = append(errs, fmt.Sprintf("leveling.xp_base must be >= 1, got %d", l.XPBase))
	}
	if l.XPGrowth < 0 {
		errs = append(errs, fmt.Sprintf("leveling.xp_growth must be >= 0, got %d", l.XPGrowth))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Precondition: path is empty or names a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.catalog_dir", "content/items")
	v.SetDefault("content.lua_catalog", "")

	v.SetDefault("upgrade.cards_per_draft", 3)
	v.SetDefault("upgrade.reroll_cost", 0)
	v.SetDefault("upgrade.weapon_slots", 6)
	v.SetDefault("upgrade.passive_slots", 6)
	v.SetDefault("upgrade.seed", 0)

	v.SetDefault("rarity.base.common", 0.70)
	v.SetDefault("rarity.base.rare", 0.20)
	v.SetDefault("rarity.base.epic", 0.08)
	v.SetDefault("rarity.base.legendary", 0.02)
	v.SetDefault("rarity.luck_shift.common", -0.01)
	v.SetDefault("rarity.luck_shift.rare", 0.005)
	v.SetDefault("rarity.luck_shift.epic", 0.003)
	v.SetDefault("rarity.luck_shift.legendary", 0.002)
	v.SetDefault("rarity.min_common", 0.30)
	v.SetDefault("rarity.max_legendary", 0.10)

	v.SetDefault("leveling.xp_base", 5)
	v.SetDefault("leveling.xp_growth", 10)
}
