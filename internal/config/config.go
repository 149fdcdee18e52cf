package config

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

const moduleName = "github.com/RoyceAzure/lab/ecommerce"

/*
init 與 read 分開
init : 設置 viper watch 與 onConfigChange
read : 一般讀取 需要讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	Environment   string `mapstructure:"ENVIRONMENT"`
	ModulerName   string `mapstructure:"MODULER_NAME"`
	ServerPort    string `mapstructure:"SERVER_PORT"`
	DbName        string `mapstructure:"POSTGRES_DB"`
	DbHost        string `mapstructure:"POSTGRES_HOST"`
	DbPort        string `mapstructure:"POSTGRES_PORT"`
	DbUser        string `mapstructure:"POSTGRES_USER"`
	DbPas         string `mapstructure:"POSTGRES_PASSWORD"`
	DbAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AuthTokenKey     string `mapstructure:"AUTH_TOKEN_KEY"`
	AccessTokenHours int    `mapstructure:"ACCESS_TOKEN_HOURS"`

	SmtpHost      string `mapstructure:"SMTP_HOST"`
	SmtpPort      string `mapstructure:"SMTP_PORT"`
	SmtpAuthKey   string `mapstructure:"SMTP_AUTH_KEY"`
	EmailAccount  string `mapstructure:"EMAIL_ACCOUNT"`
	EmailFromName string `mapstructure:"EMAIL_FROM_NAME"`

	KafkaBrokers       string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic    string `mapstructure:"KAFKA_ORDER_TOPIC"`
	KafkaConsumerGroup string `mapstructure:"KAFKA_CONSUMER_GROUP"`
	KafkaLogTopic      string `mapstructure:"KAFKA_LOG_TOPIC"`

	RateLimitCapacity  int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitPerSecond float64 `mapstructure:"RATE_LIMIT_PER_SECOND"`

	CorsAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	TrustedProxies     string `mapstructure:"TRUSTED_PROXIES"`
}

// Brokers 將逗號分隔的 KAFKA_BROKERS 拆成清單, 未設定時回傳 nil
func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

func (c *Config) AllowedOrigins() []string {
	origins := splitList(c.CorsAllowedOrigins)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// TrustedProxyList 未設定時不信任任何轉發 header
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DbUser, c.DbPas, c.DbHost, c.DbPort, c.DbName)
}

func splitList(raw string) []string {
	var res []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatalf("error read config: %v", err)
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.Config = cf
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤  由外部決定要不要Fatal
.env 不存在時只讀環境變數
*/
func loadConfig() (cf *Config, err error) {
	configSingleton.mu.Lock()
	defer configSingleton.mu.Unlock()

	cf = &Config{}
	setDefaults()
	viper.AutomaticEnv()
	bindEnvs()

	envFile := fmt.Sprintf("%s/.env", getProjectRoot(moduleName))
	if _, statErr := os.Stat(envFile); statErr == nil {
		viper.SetConfigFile(envFile)
		if err = viper.ReadInConfig(); err != nil {
			return
		}
	}

	err = viper.Unmarshal(cf)
	return
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "debug")
	viper.SetDefault("MODULER_NAME", "ecommerce")
	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("ACCESS_TOKEN_HOURS", 24*7)
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("EMAIL_FROM_NAME", "E-Commerce Store")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "order-events")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "ecommerce-notification")
	viper.SetDefault("RATE_LIMIT_CAPACITY", 5)
	viper.SetDefault("RATE_LIMIT_PER_SECOND", 0.1)
}

// AutomaticEnv 不會作用在 .env 沒有的 key 上, Unmarshal 前需要逐一綁定
func bindEnvs() {
	for _, key := range []string{
		"ENVIRONMENT", "MODULER_NAME", "SERVER_PORT",
		"POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "DB_AUTO_MIGRATE",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"AUTH_TOKEN_KEY", "ACCESS_TOKEN_HOURS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_AUTH_KEY", "EMAIL_ACCOUNT", "EMAIL_FROM_NAME",
		"KAFKA_BROKERS", "KAFKA_ORDER_TOPIC", "KAFKA_CONSUMER_GROUP", "KAFKA_LOG_TOPIC",
		"RATE_LIMIT_CAPACITY", "RATE_LIMIT_PER_SECOND",
		"CORS_ALLOWED_ORIGINS", "TRUSTED_PROXIES",
	} {
		_ = viper.BindEnv(key)
	}
}

func getProjectRoot(moduleName string) string {
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", moduleName)
	output, err := cmd.Output()
	if err != nil {
		return "."
	}
	return strings.TrimSpace(string(output))
}
