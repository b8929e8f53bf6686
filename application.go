package tortuga

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	vk "github.com/vulkan-go/vulkan"
)

const (
	DefaultArenaSize        = 32 << 20
	DefaultUniformArenaSize = 1 << 20
)

var (
	DefaultVulkanAppVersion = vk.MakeVersion(1, 0, 0)
	DefaultVulkanAPIVersion = vk.MakeVersion(1, 0, 0)
)

// Config holds everything the renderer reads at startup. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	AppName    string `toml:"app_name"`
	EngineName string `toml:"engine_name"`

	// Debug enables ValidationLayers and the debug report callback when the
	// driver provides them.
	Debug            bool     `toml:"debug"`
	ValidationLayers []string `toml:"validation_layers"`
	// InstanceExtensions are required in addition to what the window needs.
	InstanceExtensions []string `toml:"instance_extensions"`

	// Device is the physical device index to open.
	Device int `toml:"device"`
	// SwapchainImages is the requested image count, clamped to the surface
	// limits. Zero uses the surface minimum.
	SwapchainImages uint32 `toml:"swapchain_images"`

	ArenaSize        uint64 `toml:"arena_size"`
	UniformArenaSize uint64 `toml:"uniform_arena_size"`

	ClearColor [4]float32 `toml:"clear_color"`

	Window WindowConfig `toml:"window"`
	Log    LogConfig    `toml:"log"`
}

// WindowConfig is only read by the application loop.
type WindowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	ShaderDir string `toml:"shader_dir"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func DefaultConfig() Config {
	return Config{
		AppName:          "Tortuga Test",
		EngineName:       "Tortuga",
		ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
		ArenaSize:        DefaultArenaSize,
		UniformArenaSize: DefaultUniformArenaSize,
		ClearColor:       [4]float32{0, 0, 0, 1},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Tortuga",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultConfigPath is ~/.config/tortuga/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tortuga", "config.toml"), nil
}

// LoadConfig reads a TOML file over DefaultConfig. A missing file yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.ArenaSize == 0:
		return errors.New("config: arena_size must be positive")
	case c.UniformArenaSize == 0:
		return errors.New("config: uniform_arena_size must be positive")
	case c.Device < 0:
		return errors.New("config: device must not be negative")
	}
	return nil
}
