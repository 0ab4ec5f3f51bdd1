package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	Name = "hudson-dashboard"

	// EnvConfigPath 配置文件路径
	EnvConfigPath = "DASHBOARD_CONFIG"
)

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	HTTP struct {
		Addr  string `yaml:"addr"`
		Debug bool   `yaml:"debug"`
	} `yaml:"http"`
	DB struct {
		// Driver mysql 或 sqlite
		Driver      string `yaml:"driver"`
		DSN         string `yaml:"dsn"`
		AutoMigrate bool   `yaml:"autoMigrate"`
	} `yaml:"db"`
	Redis struct {
		// Addr 为空时不启用 Redis 扇出
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Notify struct {
		Channel string `yaml:"channel"`
	} `yaml:"notify"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	RateLimit struct {
		// PerSecond <= 0 关闭限流
		PerSecond float64 `yaml:"perSecond"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rateLimit"`
}

// Default 内置默认配置
func Default() *AppConfig {
	c := &AppConfig{}
	if err := yaml.Unmarshal(embeddedConfig, c); err != nil {
		panic(fmt.Sprintf("embedded config: %v", err))
	}
	return c
}

// ReadConf 读取配置：先加载内置默认值，再用 path 指向的文件覆盖，最后应用 DASHBOARD_* 环境变量。
// path 为空时读取 DASHBOARD_CONFIG；文件不存在时只用默认值。
func ReadConf(path string) (*AppConfig, error) {
	c := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		buf, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(buf, c); err != nil {
				return nil, fmt.Errorf("in config file: %w", err)
			}
		}
	}

	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *AppConfig) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = b
		return nil
	}
	setInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("DASHBOARD_HTTP_ADDR", &c.HTTP.Addr)
	setString("DASHBOARD_DB_DRIVER", &c.DB.Driver)
	setString("DASHBOARD_DB_DSN", &c.DB.DSN)
	setString("DASHBOARD_REDIS_ADDR", &c.Redis.Addr)
	setString("DASHBOARD_REDIS_PASSWORD", &c.Redis.Password)
	setString("DASHBOARD_NOTIFY_CHANNEL", &c.Notify.Channel)
	setString("DASHBOARD_LOG_LEVEL", &c.Log.Level)
	setString("DASHBOARD_LOG_FORMAT", &c.Log.Format)

	if err := setBool("DASHBOARD_DEBUG", &c.HTTP.Debug); err != nil {
		return err
	}
	if err := setBool("DASHBOARD_DB_AUTO_MIGRATE", &c.DB.AutoMigrate); err != nil {
		return err
	}
	if err := setInt("DASHBOARD_REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	if err := setInt("DASHBOARD_RATE_LIMIT_BURST", &c.RateLimit.Burst); err != nil {
		return err
	}
	if v := getenv("DASHBOARD_RATE_LIMIT_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse DASHBOARD_RATE_LIMIT_PER_SECOND: %w", err)
		}
		c.RateLimit.PerSecond = f
	}
	return nil
}

// Validate 检查必填项
func (c *AppConfig) Validate() error {
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db dsn is empty")
	}
	if c.HTTP.Addr == "" {
		return errors.New("http addr is empty")
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst < 1 {
		c.RateLimit.Burst = 1
	}
	return nil
}
