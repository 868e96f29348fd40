package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"foosball/pkg/core"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Link    LinkConfig    `yaml:"link"`
	Input   InputConfig   `yaml:"input"`
	Table   TableConfig   `yaml:"table"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
}

type LinkConfig struct {
	URL         string        `yaml:"url"`
	Codec       string        `yaml:"codec"` // 为空时 ws 使用 json，tcp/kcp 使用 wire
	DialTimeout time.Duration `yaml:"dial_timeout"`
	GracePeriod time.Duration `yaml:"grace_period"`
	SendQueue   int           `yaml:"send_queue"`
	Side        string        `yaml:"side"`
}

type InputConfig struct {
	LinearSpeed     float64    `yaml:"linear_speed"`
	RotationSpeed   float64    `yaml:"rotation_speed"`
	PrecisionFactor float64    `yaml:"precision_factor"`
	ShotImpulse     float64    `yaml:"shot_impulse"`
	AxisDeadzone    float64    `yaml:"axis_deadzone"`
	Keys            KeyBinding `yaml:"keys"`
}

// KeyBinding 键名使用 ebiten.Key 的文本形式
type KeyBinding struct {
	Left       string `yaml:"left"`
	Right      string `yaml:"right"`
	RotateUp   string `yaml:"rotate_up"`
	RotateDown string `yaml:"rotate_down"`
	SelectPrev string `yaml:"select_prev"`
	SelectNext string `yaml:"select_next"`
	Slow       string `yaml:"slow"`
	Shot       string `yaml:"shot"`
}

type TableConfig struct {
	Width  float64   `yaml:"width"`
	Height float64   `yaml:"height"`
	Travel []float64 `yaml:"travel"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ServerConfig struct {
	Listen            string        `yaml:"listen"`
	Path              string        `yaml:"path"`
	StreamListen      string        `yaml:"stream_listen"`
	StreamProto       string        `yaml:"stream_proto"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	CommandRate       float64       `yaml:"command_rate"`
}

type AuthConfig struct {
	Secret   string `yaml:"secret"`
	ClientID string `yaml:"client_id"`
}

// Default 返回内置默认配置
func Default() *Config {
	travel := core.DefaultTravelLimits
	return &Config{
		Link: LinkConfig{
			URL:         "ws://127.0.0.1:9001/position",
			DialTimeout: 5 * time.Second,
			GracePeriod: 300 * time.Millisecond,
			SendQueue:   64,
			Side:        "red",
		},
		Input: InputConfig{
			LinearSpeed:     core.DefaultLinearSpeed,
			RotationSpeed:   core.DefaultRotationSpeed,
			PrecisionFactor: core.DefaultPrecisionFactor,
			ShotImpulse:     core.DefaultShotImpulse,
			AxisDeadzone:    core.DefaultAxisDeadzone,
			Keys: KeyBinding{
				Left:       "ArrowLeft",
				Right:      "ArrowRight",
				RotateUp:   "W",
				RotateDown: "S",
				SelectPrev: "ArrowUp",
				SelectNext: "ArrowDown",
				Slow:       "Shift",
				Shot:       "Space",
			},
		},
		Table: TableConfig{
			Width:  core.TableWidth,
			Height: core.TableHeight,
			Travel: travel[:],
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Listen:            ":9001",
			Path:              "/position",
			StreamProto:       "tcp",
			BroadcastInterval: 100 * time.Millisecond,
			CommandRate:       240,
		},
		Auth: AuthConfig{
			ClientID: "desktop",
		},
	}
}

// Load 读取 YAML 配置（path 为空时只使用默认值），再应用 .env 与环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置失败: %w", err)
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Link.URL = getEnv("FOOSBALL_SERVER_URL", c.Link.URL)
	c.Link.Side = getEnv("FOOSBALL_SIDE", c.Link.Side)
	c.Logging.Level = getEnv("FOOSBALL_LOG_LEVEL", c.Logging.Level)
	c.Server.Listen = getEnv("FOOSBALL_LISTEN", c.Server.Listen)
	c.Input.ShotImpulse = getEnvFloat("FOOSBALL_SHOT_IMPULSE", c.Input.ShotImpulse)
	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
}

// Validate 检查数值配置
func (c *Config) Validate() error {
	var errs []error
	if c.Link.URL == "" {
		errs = append(errs, errors.New("link.url 不能为空"))
	}
	if c.Link.SendQueue <= 0 {
		errs = append(errs, errors.New("link.send_queue 必须为正数"))
	}
	if c.Link.GracePeriod < 0 {
		errs = append(errs, errors.New("link.grace_period 不能为负"))
	}
	if _, err := core.ParseSide(c.Link.Side); err != nil {
		errs = append(errs, err)
	}
	if c.Input.LinearSpeed <= 0 || c.Input.RotationSpeed <= 0 {
		errs = append(errs, errors.New("input 速度必须为正数"))
	}
	if c.Input.PrecisionFactor <= 0 {
		errs = append(errs, errors.New("input.precision_factor 必须为正数"))
	}
	if c.Input.AxisDeadzone < 0 || c.Input.AxisDeadzone >= 1 {
		errs = append(errs, errors.New("input.axis_deadzone 必须位于 [0, 1)"))
	}
	if c.Table.Width <= 0 || c.Table.Height <= 0 {
		errs = append(errs, errors.New("table 尺寸必须为正数"))
	}
	if len(c.Table.Travel) != core.RodTypeCount {
		errs = append(errs, fmt.Errorf("table.travel 需要 %d 个值", core.RodTypeCount))
	}
	for i, v := range c.Table.Travel {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("table.travel[%d] 必须为正数", i))
		}
	}
	return errors.Join(errs...)
}

// CoreTable 转换为 core.Table
func (c *Config) CoreTable() core.Table {
	t := core.Table{Width: c.Table.Width, Height: c.Table.Height}
	copy(t.Travel[:], c.Table.Travel)
	return t
}

// Side 受控的一方
func (c *Config) Side() core.Side {
	side, _ := core.ParseSide(c.Link.Side)
	return side
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
