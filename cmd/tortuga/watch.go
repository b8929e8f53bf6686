package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andewx/tortuga"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

const (
	vertexFile   = "vertex.wgsl"
	fragmentFile = "fragment.wgsl"
)

// loadShaders compiles the WGSL pair in dir, or the embedded pair when dir
// is empty.
func loadShaders(dir string) (tortuga.ShaderSource, error) {
	if dir == "" {
		return tortuga.CompileWGSL(vertexWGSL, fragmentWGSL)
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return tortuga.ShaderSource{}, err
	}
	vert, err := os.ReadFile(filepath.Join(dir, vertexFile))
	if err != nil {
		return tortuga.ShaderSource{}, err
	}
	frag, err := os.ReadFile(filepath.Join(dir, fragmentFile))
	if err != nil {
		return tortuga.ShaderSource{}, err
	}
	return tortuga.CompileWGSL(string(vert), string(frag))
}

// shaderWatcher recompiles the shader directory whenever one of its WGSL
// files changes and hands the result to the render loop.
type shaderWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	log     *slog.Logger
	sources chan tortuga.ShaderSource
	done    chan struct{}
}

func watchShaders(dir string, log *slog.Logger) (*shaderWatcher, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &shaderWatcher{
		watcher: watcher,
		dir:     dir,
		log:     log,
		sources: make(chan tortuga.ShaderSource, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Sources yields freshly compiled shaders. Only the newest pending pair is
// kept.
func (w *shaderWatcher) Sources() <-chan tortuga.ShaderSource {
	return w.sources
}

func (w *shaderWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name := filepath.Base(event.Name); name != vertexFile && name != fragmentFile {
				continue
			}
			src, err := loadShaders(w.dir)
			if err != nil {
				w.log.Warn("shader reload failed", "file", event.Name, "err", err)
				continue
			}
			w.publish(src)
			w.log.Info("shaders reloaded", "file", event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("shader watcher", "err", err)
		}
	}
}

func (w *shaderWatcher) publish(src tortuga.ShaderSource) {
	select {
	case <-w.sources:
	default:
	}
	select {
	case w.sources <- src:
	default:
	}
}

func (w *shaderWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
