package ml

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 250 * time.Millisecond

// WatchModel reloads the artifact at path into p whenever it changes on
// disk. The parent directory is watched so atomic rename-into-place works.
// A reload that fails validation is logged and the running model is kept.
// WatchModel blocks until ctx is cancelled.
func WatchModel(ctx context.Context, path, modelType string, p *Predictor, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create model watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching model artifact", zap.String("path", abs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("model watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			reloadModel(abs, modelType, p, logger)
		}
	}
}

func reloadModel(path, modelType string, p *Predictor, logger *zap.Logger) {
	model, err := LoadModel(modelType, path)
	if err != nil {
		logger.Error("model reload rejected, keeping current model", zap.String("path", path), zap.Error(err))
		return
	}
	if err := p.Swap(model); err != nil {
		logger.Error("model swap failed", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("model reloaded", zap.String("path", path), zap.String("model_type", modelType))
}
