package config

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// Source yields the current resolved config. The pipeline asks for it per
// request so CMS edits take effect without a redeploy.
type Source interface {
	Current() Config
}

// StaticSource resolves once and returns the same config forever. Swap() lets
// a CMS webhook or an operator push a new overrides document at runtime.
type StaticSource struct {
	mu  sync.RWMutex
	cfg Config
}

func NewStaticSource(cfg Config) *StaticSource {
	return &StaticSource{cfg: cfg}
}

func (s *StaticSource) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *StaticSource) Swap(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Load builds the boot-time source: defaults, then env, then the overrides
// document at ENQUIRY_CONFIG_FILE if one is configured. A broken overrides
// file is logged and skipped rather than taking the intake down.
func Load(log *zap.Logger) *StaticSource {
	cfg := FromEnv()

	if path := os.Getenv("ENQUIRY_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("config overrides unreadable, using env/defaults", zap.String("path", path), zap.Error(err))
			return NewStaticSource(cfg)
		}
		ov, err := ParseOverrides(raw)
		if err != nil {
			log.Warn("config overrides invalid, using env/defaults", zap.String("path", path), zap.Error(err))
			return NewStaticSource(cfg)
		}
		cfg = Resolve(cfg, ov)
	}

	return NewStaticSource(cfg)
}
