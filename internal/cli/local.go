package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/engine"
)

// watchDebounce склеивает серию событий от одного сохранения в редакторе.
const watchDebounce = 150 * time.Millisecond

// RenderLocal выполняет слияние шаблона с контрактом из файлов, без API.
func RenderLocal(templatePath, contractPath string) (string, engine.Stats, error) {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return "", engine.Stats{}, fmt.Errorf("read template: %w", err)
	}

	data, err := os.ReadFile(contractPath)
	if err != nil {
		return "", engine.Stats{}, fmt.Errorf("read contract: %w", err)
	}
	var c domain.Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return "", engine.Stats{}, fmt.Errorf("parse contract %s: %w", contractPath, err)
	}

	return engine.RenderHTML(&c, string(tmpl))
}

// Watch вызывает onChange после каждого изменения одного из files,
// пока не отменён ctx.
//
// Наблюдаются каталоги, а не сами файлы: редакторы часто сохраняют
// через запись во временный файл и rename.
func Watch(ctx context.Context, files []string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	var changed string
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			changed = filepath.Clean(event.Name)
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)

		case <-timer.C:
			onChange(changed)
		}
	}
}
