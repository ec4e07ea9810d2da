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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := Configuration{}

	err := cnf.validateAndAddDefaults()
	require.NoError(t, err)

	assert.Equal(t, "Pizza Hunt", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, DEFAULT_DATABASE_NAME, cnf.DataSource.Database)
	assert.Equal(t, DEFAULT_WEBHOOK_QUEUE, cnf.Queue.WebhookQueue)
	assert.Equal(t, DEFAULT_MONITOR_PORT, cnf.Queue.MonitoringPort)
	assert.Equal(t, 10, cnf.Queue.WorkerConcurrency)
	assert.Equal(t, DEFAULT_SERVER_URL, cnf.Offline.ServerURL)
	assert.Equal(t, DEFAULT_QUEUE_PATH, cnf.Offline.QueuePath)
	assert.Equal(t, 5*time.Second, cnf.Offline.CheckInterval())
	assert.Equal(t, 3*time.Second, cnf.Offline.CheckTimeout())
	assert.Equal(t, 300*time.Second, cnf.CacheTTL())
	assert.Nil(t, cnf.RateLimit.RequestsPerSecond)
	assert.Nil(t, cnf.RateLimit.Burst)
}

func TestValidateAndAddDefaults_TrimsServerURL(t *testing.T) {
	cnf := Configuration{Offline: OfflineConfig{ServerURL: "  http://pizza.local:3001/ "}}

	require.NoError(t, cnf.validateAndAddDefaults())
	assert.Equal(t, "http://pizza.local:3001", cnf.Offline.ServerURL)
}

func TestValidateAndAddDefaults_SecureNeedsSecret(t *testing.T) {
	cnf := Configuration{Server: ServerConfig{Secure: true}}

	err := cnf.validateAndAddDefaults()
	assert.EqualError(t, err, "secret key is required when server.secure is enabled")
}

func TestValidateAndAddDefaults_RateLimit(t *testing.T) {
	rps := 10.0
	cnf := Configuration{RateLimit: RateLimitConfig{RequestsPerSecond: &rps}}
	require.NoError(t, cnf.validateAndAddDefaults())
	require.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)

	burst := 8
	cnf = Configuration{RateLimit: RateLimitConfig{Burst: &burst}}
	require.NoError(t, cnf.validateAndAddDefaults())
	require.NotNil(t, cnf.RateLimit.RequestsPerSecond)
	assert.Equal(t, 4.0, *cnf.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10800, *cnf.RateLimit.CleanupIntervalSec)
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "pizzahunt.json")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource: DataSourceConfig{
			Dns: "mongodb://localhost:27017",
		},
		Offline: OfflineConfig{
			QueuePath: "/tmp/queue.db",
		},
	}
	require.NoError(t, json.NewEncoder(tmpFile).Encode(sampleConfig))
	tmpFile.Close()

	t.Setenv("PIZZAHUNT_PROJECT_NAME", "Env Project")
	t.Setenv("PIZZAHUNT_OFFLINE_CHECK_INTERVAL_SEC", "12")

	require.NoError(t, loadConfigFromFile(tmpFile.Name()))

	loadedConfig, err := Fetch()
	require.NoError(t, err)

	assert.Equal(t, "Env Project", loadedConfig.ProjectName)
	assert.Equal(t, "mongodb://localhost:27017", loadedConfig.DataSource.Dns)
	assert.Equal(t, "/tmp/queue.db", loadedConfig.Offline.QueuePath)
	assert.Equal(t, 12, loadedConfig.Offline.CheckIntervalSec)
}

func TestInitConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("PIZZAHUNT_DATA_SOURCE_DNS", "postgres://postgres:@localhost:5432/pizza?sslmode=disable")

	require.NoError(t, InitConfig("does-not-exist.json"))

	loadedConfig, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:@localhost:5432/pizza?sslmode=disable", loadedConfig.DataSource.Dns)
	assert.Equal(t, DEFAULT_PORT, loadedConfig.Server.Port)
}

func TestMockConfig(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "mocked"})

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "mocked", cnf.ProjectName)
}
