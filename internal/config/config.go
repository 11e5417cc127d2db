package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/spf13/pflag"

	"github.com/John-Robertt/imgcount/internal/domain"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
	// ErrCodeMissingKey 表示最终配置缺少目录 API 的 key。
	ErrCodeMissingKey = domain.ErrCodeConfigMissingKey
)

const (
	// FileName 是工作目录下自动发现的配置文件名。
	FileName = "imgcount.toml"
	// EnvPrefix 是环境变量前缀：IMGCOUNT_CATALOG_API_KEY -> catalog_api_key。
	EnvPrefix = "IMGCOUNT_"

	DefaultCatalogBaseURL = "http://api.rottentomatoes.com/api/public/v1.0"
	DefaultLookupBaseURL  = "http://www.omdbapi.com"
	DefaultDetailBaseURL  = "http://www.imdb.com"
	DefaultCountry        = "us"
	DefaultPageLimit      = 50
	DefaultLogLevel       = "warn"

	// MaxPageLimit 是目录服务允许的单页最大条数。
	MaxPageLimit = 50
)

// Config 是合并后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type Config struct {
	CatalogBaseURL string `koanf:"catalog_base_url"`
	CatalogAPIKey  string `koanf:"catalog_api_key"`
	Country        string `koanf:"country"`
	PageLimit      int    `koanf:"page_limit"`

	LookupBaseURL string `koanf:"lookup_base_url"`
	LookupAPIKey  string `koanf:"lookup_api_key"`

	DetailBaseURL string `koanf:"detail_base_url"`

	ProxyURL string `koanf:"proxy_url"`

	// UserAgent 非空时所有请求使用它，否则轮换内置 UA。
	UserAgent string `koanf:"user_agent"`

	// Selector 非空时按 CSS 选择器计数，否则数 <img>。
	Selector string `koanf:"selector"`

	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`

	// File 是实际读取的配置文件（未读取任何文件时为空）。
	File string `koanf:"-"`
}

// Keys 是所有合法的配置键（CLI 参数名把 _ 换成 -）。
var Keys = []string{
	"catalog_base_url", "catalog_api_key", "country", "page_limit",
	"lookup_base_url", "lookup_api_key", "detail_base_url",
	"proxy_url", "user_agent", "selector", "log_level", "log_file",
}

// Options 描述一次加载的输入。
type Options struct {
	// Dir 是发现 imgcount.toml 与 .env 的目录，通常是 cwd。
	Dir string
	// File 是 --config 显式指定的路径；非空时文件必须存在。
	File string
	// Flags 是 CLI 的 FlagSet；只有用户显式设置的参数会覆盖其他来源。可为 nil。
	Flags *pflag.FlagSet
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingKey:
		return fmt.Sprintf("%s：缺少 catalog_api_key（配置文件、%sCATALOG_API_KEY 或 --catalog-api-key）", e.Code, EnvPrefix)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Load 依次合并各来源并校验，返回最终配置。
//
// 覆盖优先级（低 -> 高）：
// 1) 内置默认值
// 2) 配置文件：--config 指定（必须存在），否则 <Dir>/imgcount.toml（可选）
// 3) 环境变量 IMGCOUNT_*（<Dir>/.env 会先被载入，但不覆盖已有环境变量）
// 4) CLI 显式参数
func Load(opts Options) (Config, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		dir = "."
	}
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: dir, Err: err}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Err: err}
	}

	cfgPath, err := discover(dirAbs, opts.File)
	if err != nil {
		return Config{}, err
	}
	if cfgPath != "" {
		if err := k.Load(file.Provider(cfgPath), toml.Parser()); err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	if err := godotenv.Load(filepath.Join(dirAbs, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: filepath.Join(dirAbs, ".env"), Err: err}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Err: err}
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithValue(opts.Flags, ".", k, flagKey), nil); err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Err: err}
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	c.File = cfgPath
	normalize(&c)
	if err := validate(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"catalog_base_url": DefaultCatalogBaseURL,
		"country":          DefaultCountry,
		"page_limit":       DefaultPageLimit,
		"lookup_base_url":  DefaultLookupBaseURL,
		"detail_base_url":  DefaultDetailBaseURL,
		"log_level":        DefaultLogLevel,
	}
}

// discover 返回需要读取的配置文件路径；返回空串表示没有配置文件。
func discover(dirAbs, explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dirAbs, p)
		}
		p = filepath.Clean(p)
		st, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", &Error{Code: ErrCodeNotFound, Path: p, Err: err}
			}
			return "", &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if st.IsDir() {
			return "", &Error{Code: ErrCodeInvalid, Path: p, Err: errors.New("是目录而不是文件")}
		}
		return p, nil
	}

	p := filepath.Join(dirAbs, FileName)
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &Error{Code: ErrCodeInvalid, Path: p, Err: err}
	}
	if st.IsDir() {
		return "", &Error{Code: ErrCodeInvalid, Path: p, Err: errors.New("是目录而不是文件")}
	}
	return p, nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

var knownKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Keys))
	for _, k := range Keys {
		m[k] = struct{}{}
	}
	return m
}()

// flagKey 把 --page-limit 映射为 page_limit；非配置类参数（--config/--help 等）忽略。
func flagKey(name, value string) (string, interface{}) {
	key := strings.ReplaceAll(name, "-", "_")
	if _, ok := knownKeys[key]; !ok {
		return "", nil
	}
	return key, value
}

func normalize(c *Config) {
	c.CatalogBaseURL = strings.TrimRight(strings.TrimSpace(c.CatalogBaseURL), "/")
	c.CatalogAPIKey = strings.TrimSpace(c.CatalogAPIKey)
	c.Country = strings.TrimSpace(c.Country)
	if c.Country == "" {
		c.Country = DefaultCountry
	}
	c.LookupBaseURL = strings.TrimRight(strings.TrimSpace(c.LookupBaseURL), "/")
	c.LookupAPIKey = strings.TrimSpace(c.LookupAPIKey)
	c.DetailBaseURL = strings.TrimRight(strings.TrimSpace(c.DetailBaseURL), "/")
	c.ProxyURL = strings.TrimSpace(c.ProxyURL)
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	c.Selector = strings.TrimSpace(c.Selector)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogFile = strings.TrimSpace(c.LogFile)
}

func validate(c Config) error {
	invalid := func(err error) error {
		return &Error{Code: ErrCodeInvalid, Path: c.File, Err: err}
	}

	if c.CatalogAPIKey == "" {
		return &Error{Code: ErrCodeMissingKey, Path: c.File}
	}
	if c.PageLimit < 1 || c.PageLimit > MaxPageLimit {
		return invalid(fmt.Errorf("page_limit 必须在 [1, %d] 之间，实际是 %d", MaxPageLimit, c.PageLimit))
	}
	for _, f := range []struct {
		key, val string
	}{
		{"catalog_base_url", c.CatalogBaseURL},
		{"lookup_base_url", c.LookupBaseURL},
		{"detail_base_url", c.DetailBaseURL},
	} {
		if err := validateHTTPURL(f.key, f.val); err != nil {
			return invalid(err)
		}
	}
	if c.ProxyURL != "" {
		u, err := url.Parse(c.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid(fmt.Errorf("proxy_url 无效：%q", c.ProxyURL))
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Errorf("log_level 只能是 debug/info/warn/error，实际是 %q", c.LogLevel))
	}
	return nil
}

func validateHTTPURL(key, v string) error {
	u, err := url.Parse(v)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", key, v)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", key, v)
	}
	return nil
}
