package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	JwtSecret     string `yaml:"jwt_secret"`
	SessionSecret string `yaml:"session_secret"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type SmtpConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// SuggestConfig points at the hosted model gateway used for adaptive
// clothing suggestions. The gateway speaks the chat-completions protocol.
type SuggestConfig struct {
	Enabled    bool   `yaml:"enabled"`
	GatewayURL string `yaml:"gateway_url"`
	ApiKey     string `yaml:"api_key"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Database DBConfig      `yaml:"database"`
	Smtp     SmtpConfig    `yaml:"smtp"`
	Suggest  SuggestConfig `yaml:"suggest"`
	Logger   LogConfig     `yaml:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.System.Workdir, c.GetLogDir(), c.GetDataDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "AbleWear",
		Location: "Asia/Kolkata",
		Workdir:  "/var/ablewear",
		Debug:    true,
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		JwtSecret:     "9b6de5cc-0731-1816-90b6-f85e6ab19158",
		SessionSecret: "ablewear-session-secret",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "ablewear",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Smtp: SmtpConfig{
		Enabled: false,
		Host:    "localhost",
		Port:    25,
		From:    "no-reply@ablewear.local",
	},
	Suggest: SuggestConfig{
		Enabled:    false,
		GatewayURL: "https://ai.gateway.lovable.dev/v1/chat/completions",
		TextModel:  "google/gemini-2.5-flash",
		ImageModel: "google/gemini-2.5-flash-image-preview",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/ablewear/ablewear.log",
	},
}

func setEnvValue(name string, val *string) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

// LoadConfig reads the YAML config file and applies environment overrides.
// A missing or empty path falls back to /etc/ablewear.yml when present,
// otherwise the built-in defaults are used.
func LoadConfig(cfile string) *AppConfig {
	if cfile == "" {
		cfile = "ablewear.yml"
	}
	if _, err := os.Stat(cfile); err != nil {
		cfile = "/etc/ablewear.yml"
	}
	cfg := new(AppConfig)
	if _, err := os.Stat(cfile); err == nil {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(fmt.Errorf("parse config %s: %w", cfile, err))
		}
	} else {
		cfg = DefaultAppConfig
	}

	setEnvValue("ABLEWEAR_WORKDIR", &cfg.System.Workdir)
	setEnvValue("ABLEWEAR_LOCATION", &cfg.System.Location)
	setEnvBoolValue("ABLEWEAR_DEBUG", &cfg.System.Debug)

	setEnvValue("ABLEWEAR_DB_HOST", &cfg.Database.Host)
	setEnvValue("ABLEWEAR_DB_NAME", &cfg.Database.Name)
	setEnvValue("ABLEWEAR_DB_USER", &cfg.Database.User)
	setEnvValue("ABLEWEAR_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("ABLEWEAR_WEB_JWT_SECRET", &cfg.Web.JwtSecret)
	setEnvValue("ABLEWEAR_SESSION_SECRET", &cfg.Web.SessionSecret)

	setEnvValue("ABLEWEAR_SMTP_HOST", &cfg.Smtp.Host)
	setEnvValue("ABLEWEAR_SMTP_USER", &cfg.Smtp.Username)
	setEnvValue("ABLEWEAR_SMTP_PWD", &cfg.Smtp.Password)

	setEnvBoolValue("ABLEWEAR_SUGGEST_ENABLED", &cfg.Suggest.Enabled)
	setEnvValue("ABLEWEAR_SUGGEST_GATEWAY", &cfg.Suggest.GatewayURL)
	setEnvValue("ABLEWEAR_SUGGEST_APIKEY", &cfg.Suggest.ApiKey)

	return cfg
}
