package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Templates 页面模板集合，可从磁盘目录热加载
type Templates struct {
	mu  sync.RWMutex
	set *template.Template
	dir string
}

// LoadTemplates 加载模板；dir为空时使用内嵌模板
func LoadTemplates(dir string) (*Templates, error) {
	t := &Templates{dir: dir}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Templates) parse() (*template.Template, error) {
	if t.dir == "" {
		return template.ParseFS(embeddedTemplates, "templates/*.html")
	}
	return template.ParseGlob(filepath.Join(t.dir, "*.html"))
}

func (t *Templates) reload() error {
	set, err := t.parse()
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.set = set
	t.mu.Unlock()
	return nil
}

func (t *Templates) current() *template.Template {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.set
}

// Has 判断模板是否存在
func (t *Templates) Has(name string) bool {
	return t.current().Lookup(name) != nil
}

// Render 渲染模板；先写入缓冲区，执行失败时不会输出半个页面
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := t.current().ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Watch 监听模板目录，文件变化时重新加载，直到ctx结束
func (t *Templates) Watch(ctx context.Context, logger *zap.Logger) error {
	if t.dir == "" {
		return errors.New("embedded templates cannot be watched")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(t.dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".html" {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				// keep serving the previous set if the edit does not parse
				if err := t.reload(); err != nil {
					logger.Warn("template reload failed", zap.String("file", event.Name), zap.Error(err))
					continue
				}
				logger.Info("templates reloaded", zap.String("file", event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("template watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
