// Command tortuga opens a window and draws the demo quad through the
// tortuga renderer until the window is closed.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/andewx/tortuga"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	//go:embed shaders/vertex.wgsl
	vertexWGSL string
	//go:embed shaders/fragment.wgsl
	fragmentWGSL string
)

func init() {
	// glfw and the surface must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "config file, default ~/.config/tortuga/config.toml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "tortuga:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if configPath == "" {
		path, err := tortuga.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = path
	}
	cfg, err := tortuga.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	tortuga.SetLogger(log)

	shaders, err := loadShaders(cfg.Window.ShaderDir)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	loader := tortuga.NewVulkanLoader(glfw.GetVulkanGetInstanceProcAddress())
	ctx, err := tortuga.Initialize(cfg, loader, window, shaders)
	if err != nil {
		return err
	}
	defer ctx.Shutdown()

	var reloads <-chan tortuga.ShaderSource
	if cfg.Window.ShaderDir != "" {
		w, err := watchShaders(cfg.Window.ShaderDir, log)
		if err != nil {
			return err
		}
		defer w.Close()
		reloads = w.Sources()
	}

	for !window.ShouldClose() {
		select {
		case src := <-reloads:
			if err := ctx.SetShaders(src); err != nil {
				log.Warn("shader reload rejected", "err", err)
			}
		default:
		}

		ctx.Update()
		if err := ctx.Err(); err != nil {
			return err
		}
		glfw.PollEvents()
	}
	log.Info("window closed", "frames", ctx.Frames(), "recreations", ctx.Recreations())
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
