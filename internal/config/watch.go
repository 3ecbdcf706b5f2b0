package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// shopWatcher tracks the last applied shop.yaml by mtime and content digest.
// A broken edit is logged once and the previous config stays in effect.
type shopWatcher struct {
	path     string
	logger   *zerolog.Logger
	onUpdate func(*ShopConfig)

	modTime time.Time
	applied [sha256.Size]byte
	broken  [sha256.Size]byte
}

func newShopWatcher(path string, logger *zerolog.Logger, onUpdate func(*ShopConfig)) (*shopWatcher, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	w := &shopWatcher{path: path, logger: logger, onUpdate: onUpdate}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat shop config: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shop config: %w", err)
	}
	if _, err := parseShopConfig(data); err != nil {
		return nil, err
	}
	w.modTime = info.ModTime()
	w.applied = sha256.Sum256(data)
	return w, nil
}

// poll reloads the file if it changed since the last poll and reports
// whether a new config was handed to onUpdate.
func (w *shopWatcher) poll() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("shop config not readable")
		return false
	}
	if !info.ModTime().After(w.modTime) {
		return false
	}
	w.modTime = info.ModTime()

	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("shop config not readable")
		return false
	}
	sum := sha256.Sum256(data)
	switch sum {
	case w.applied:
		w.logger.Debug().Str("path", w.path).Msg("shop config touched, content unchanged")
		return false
	case w.broken:
		return false
	}

	cfg, err := parseShopConfig(data)
	if err != nil {
		w.broken = sum
		w.logger.Error().Err(err).Str("path", w.path).Msg("shop config reload failed, keeping previous config")
		return false
	}

	w.applied = sum
	w.broken = [sha256.Size]byte{}
	w.logger.Info().Str("path", w.path).Str("shop", cfg.String()).Msg("shop config reloaded")
	if w.onUpdate != nil {
		w.onUpdate(cfg)
	}
	return true
}

// WatchShop polls shop.yaml every interval and passes each valid new version
// to onUpdate. The file must be valid when the watch starts; the caller is
// expected to have applied that version already.
func WatchShop(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*ShopConfig)) error {
	if path == "" {
		path = "configs/shop.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	w, err := newShopWatcher(path, logger, onUpdate)
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll()
			}
		}
	}()
	return nil
}
