/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT           = "3001"
	DEFAULT_SERVER_URL     = "http://localhost:3001"
	DEFAULT_QUEUE_PATH     = "pizza_hunt.db"
	DEFAULT_CHECK_INTERVAL = 5
	DEFAULT_CHECK_TIMEOUT  = 3
	DEFAULT_DATABASE_NAME  = "pizza-hunt"
	DEFAULT_WEBHOOK_QUEUE  = "pizza_webhooks"
	DEFAULT_MONITOR_PORT   = "5004"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"PIZZAHUNT_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"PIZZAHUNT_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"PIZZAHUNT_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"PIZZAHUNT_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"PIZZAHUNT_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"PIZZAHUNT_SERVER_PORT"`
}

// DataSourceConfig selects the document store. A mongodb:// or mongodb+srv:// DNS
// picks MongoDB, anything else is handed to the Postgres driver.
type DataSourceConfig struct {
	Dns      string `json:"dns" envconfig:"PIZZAHUNT_DATA_SOURCE_DNS"`
	Database string `json:"database" envconfig:"PIZZAHUNT_DATA_SOURCE_DATABASE"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"PIZZAHUNT_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"PIZZAHUNT_REDIS_SKIP_TLS_VERIFY"`
	CacheTTLSec   int    `json:"cache_ttl_sec" envconfig:"PIZZAHUNT_REDIS_CACHE_TTL_SEC"`
}

type QueueConfig struct {
	WebhookQueue      string `json:"webhook_queue" envconfig:"PIZZAHUNT_QUEUE_WEBHOOK"`
	WebhookRetries    int    `json:"webhook_retries" envconfig:"PIZZAHUNT_QUEUE_WEBHOOK_RETRIES"`
	WorkerConcurrency int    `json:"worker_concurrency" envconfig:"PIZZAHUNT_QUEUE_WORKER_CONCURRENCY"`
	MonitoringPort    string `json:"monitoring_port" envconfig:"PIZZAHUNT_QUEUE_MONITORING_PORT"`
}

// OfflineConfig drives the client half: where the local queue lives, which server
// the dispatcher submits to and how often connectivity is checked.
type OfflineConfig struct {
	ServerURL        string `json:"server_url" envconfig:"PIZZAHUNT_OFFLINE_SERVER_URL"`
	APIKey           string `json:"api_key" envconfig:"PIZZAHUNT_OFFLINE_API_KEY"`
	QueuePath        string `json:"queue_path" envconfig:"PIZZAHUNT_OFFLINE_QUEUE_PATH"`
	CheckIntervalSec int    `json:"check_interval_sec" envconfig:"PIZZAHUNT_OFFLINE_CHECK_INTERVAL_SEC"`
	CheckTimeoutSec  int    `json:"check_timeout_sec" envconfig:"PIZZAHUNT_OFFLINE_CHECK_TIMEOUT_SEC"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"PIZZAHUNT_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"PIZZAHUNT_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"PIZZAHUNT_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type WebhookConfig struct {
	Url     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

type Notification struct {
	Slack   SlackWebhook  `json:"slack"`
	Webhook WebhookConfig `json:"webhook"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"PIZZAHUNT_PROJECT_NAME"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"PIZZAHUNT_ENABLE_TELEMETRY"`
	Server          ServerConfig     `json:"server"`
	DataSource      DataSourceConfig `json:"data_source"`
	Redis           RedisConfig      `json:"redis"`
	Queue           QueueConfig      `json:"queue"`
	Offline         OfflineConfig    `json:"offline"`
	Notification    Notification     `json:"notification"`
	RateLimit       RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("pizzahunt", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called pizzahunt.json with your config ❌")
	}
	return c, nil
}

// validateAndAddDefaults trims and defaults the loaded values. The data source is not
// required here because the offline client commands run without one; the server
// checks it when it connects.
func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Pizza Hunt"
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Offline.ServerURL = strings.TrimRight(strings.TrimSpace(cnf.Offline.ServerURL), "/")

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Server.Secure && cnf.Server.SecretKey == "" {
		return errors.New("secret key is required when server.secure is enabled")
	}

	if cnf.DataSource.Database == "" {
		cnf.DataSource.Database = DEFAULT_DATABASE_NAME
	}

	if cnf.Redis.CacheTTLSec <= 0 {
		cnf.Redis.CacheTTLSec = 300
	}

	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = DEFAULT_WEBHOOK_QUEUE
	}
	if cnf.Queue.WebhookRetries <= 0 {
		cnf.Queue.WebhookRetries = 5
	}
	if cnf.Queue.WorkerConcurrency <= 0 {
		cnf.Queue.WorkerConcurrency = 10
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = DEFAULT_MONITOR_PORT
	}

	if cnf.Offline.ServerURL == "" {
		cnf.Offline.ServerURL = DEFAULT_SERVER_URL
	}
	if cnf.Offline.QueuePath == "" {
		cnf.Offline.QueuePath = DEFAULT_QUEUE_PATH
	}
	if cnf.Offline.CheckIntervalSec <= 0 {
		cnf.Offline.CheckIntervalSec = DEFAULT_CHECK_INTERVAL
	}
	if cnf.Offline.CheckTimeoutSec <= 0 {
		cnf.Offline.CheckTimeoutSec = DEFAULT_CHECK_TIMEOUT
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// CacheTTL returns the pizza cache time-to-live.
func (cnf *Configuration) CacheTTL() time.Duration {
	return time.Duration(cnf.Redis.CacheTTLSec) * time.Second
}

// CheckInterval returns how often the connectivity monitor checks the server.
func (o OfflineConfig) CheckInterval() time.Duration {
	return time.Duration(o.CheckIntervalSec) * time.Second
}

func (o OfflineConfig) CheckTimeout() time.Duration {
	return time.Duration(o.CheckTimeoutSec) * time.Second
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
