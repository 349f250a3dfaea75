// config реализует конфигурацию fb-collector: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Поддерживаемые драйверы хранилища документов.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config — корневая конфигурация коллектора.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// Файл ./.env (если есть) подгружается в окружение процесса до чтения конфига
// и никогда не перекрывает уже выставленные переменные.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Graph    GraphConfig    `yaml:"graph"`
	Collect  CollectConfig  `yaml:"collect"`
	Enricher EnricherConfig `yaml:"enricher"`
	DB       DBConfig       `yaml:"db"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// HTTPConfig — служебный HTTP (livez/healthz/metrics), поднимается только в режиме расписания.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// GraphConfig — доступ к Facebook Graph API.
type GraphConfig struct {
	BaseURL string `yaml:"base_url" env:"GRAPH_BASE_URL" env-default:"https://graph.facebook.com"`
	Version string `yaml:"version"  env:"GRAPH_VERSION"  env-default:"2.8"`
	// AccessToken — токен доступа; получение токена вне зоны ответственности коллектора.
	AccessToken string `yaml:"access_token" env:"FB_ACCESS_TOKEN" env-required:"true"`
	// PageID — идентификатор страницы, посты которой собираем.
	PageID string `yaml:"page_id" env:"FB_PAGE_ID" env-default:"10513336322"`
	// PageSize — limit для постраничных запросов (Graph API не отдаёт больше 100).
	PageSize int `yaml:"page_size" env:"GRAPH_PAGE_SIZE" env-default:"100"`
	// MaxPages — предохранитель итератора; 0 — без ограничения.
	MaxPages int `yaml:"max_pages" env:"GRAPH_MAX_PAGES" env-default:"1000"`
	// Delay — фиксированная пауза после каждого запроса.
	Delay   time.Duration `yaml:"delay"   env:"GRAPH_DELAY"   env-default:"1s"`
	Timeout time.Duration `yaml:"timeout" env:"GRAPH_TIMEOUT" env-default:"30s"`
}

// CollectConfig — окно сбора и режим запуска.
type CollectConfig struct {
	// DaysBack — за какой день (сколько суток назад) собирать посты.
	DaysBack int `yaml:"days_back" env:"DAYS_BACK" env-default:"6"`
	// Interval — период повторных прогонов; 0 — один прогон и выход.
	Interval time.Duration `yaml:"interval" env:"COLLECT_INTERVAL" env-default:"0s"`
	// SkipMalformed — пропускать записи без обязательных полей вместо аварийного завершения прогона.
	SkipMalformed bool `yaml:"skip_malformed" env:"SKIP_MALFORMED" env-default:"false"`
}

// EnricherConfig — обогащение постов данными со страницы статьи.
type EnricherConfig struct {
	Domain    string        `yaml:"domain"     env:"ENRICH_DOMAIN"     env-default:"www.theguardian.com"`
	Delay     time.Duration `yaml:"delay"      env:"ENRICH_DELAY"      env-default:"2s"`
	Timeout   time.Duration `yaml:"timeout"    env:"ENRICH_TIMEOUT"    env-default:"30s"`
	UserAgent string        `yaml:"user_agent" env:"ENRICH_USER_AGENT" env-default:"fb-collector/1.0"`
}

// DBConfig — хранилище документов.
type DBConfig struct {
	Driver   string `yaml:"driver"   env:"DB_DRIVER"    env-default:"mongo"`
	URL      string `yaml:"url"      env:"DATABASE_URL" env-required:"true"`
	Database string `yaml:"database" env:"DB_NAME"      env-default:"facebook"`
}

// ArchiveConfig — опциональный архив HTML статей в S3/MinIO. Пустой Endpoint — архив выключен.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"   env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket"     env:"S3_BUCKET"`
}

// Enabled сообщает, настроен ли архив.
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != ""
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	// .env необязателен: отсутствие файла — не ошибка.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch {
	case path != "":
		c, err = tryRead(path)
	case os.Getenv("CONFIG_PATH") != "":
		c, err = tryRead(os.Getenv("CONFIG_PATH"))
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
			break
		}

		if err = cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		c = &cfg
	}

	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.Graph.AccessToken == "" {
		return fmt.Errorf("graph.access_token is required")
	}

	if c.Graph.PageID == "" {
		return fmt.Errorf("graph.page_id is required")
	}

	if c.Graph.PageSize <= 0 || c.Graph.PageSize > 100 {
		return fmt.Errorf("graph.page_size must be in [1, 100]")
	}

	if c.Graph.MaxPages < 0 {
		return fmt.Errorf("graph.max_pages must be >= 0")
	}

	if c.Graph.Delay < 0 || c.Enricher.Delay < 0 {
		return fmt.Errorf("delays must be >= 0")
	}

	if c.Collect.DaysBack < 1 {
		return fmt.Errorf("collect.days_back must be >= 1")
	}

	if c.Collect.Interval != 0 && c.Collect.Interval < time.Minute {
		return fmt.Errorf("collect.interval must be 0 or at least 1m")
	}

	if c.Enricher.Domain == "" {
		return fmt.Errorf("enricher.domain is required")
	}

	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.DB.Driver != DriverMongo && c.DB.Driver != DriverPostgres {
		return fmt.Errorf("db.driver must be %q or %q", DriverMongo, DriverPostgres)
	}

	if c.Archive.Enabled() && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when archive.endpoint is set")
	}

	return nil
}
