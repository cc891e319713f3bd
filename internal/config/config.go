// Package config defines the yaml configuration of both binaries.
package config

import (
	"time"

	"github.com/m-ota618/shachoai-sub000/internal/gasapi"
	"github.com/m-ota618/shachoai-sub000/internal/relay"
	"github.com/m-ota618/shachoai-sub000/internal/store"
)

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type DynamoConfig struct {
	Table        string `yaml:"table"`
	Region       string `yaml:"region"`
	Key          string `yaml:"key"`
	Secret       string `yaml:"secret"`
	BaseEndpoint string `yaml:"base_endpoint"`
}

type StoreConfig struct {
	Driver string       `yaml:"driver" validate:"required,oneof=FILE REDIS DYNAMO"`
	Dir    string       `yaml:"dir"`
	Redis  RedisConfig  `yaml:"redis,flow"`
	Dynamo DynamoConfig `yaml:"dynamo,flow"`
}

type RelayClientConfig struct {
	URL        string `yaml:"url" validate:"required,url"`
	Token      string `yaml:"token"`
	TenantID   string `yaml:"tenant_id"`
	TenantSlug string `yaml:"tenant_slug"`
	Timeout    int    `yaml:"timeout"`
}

type DrainConfig struct {
	Interval    int `yaml:"interval" validate:"required"`
	MaxAttempts int `yaml:"max_attempts"`
}

type HealthCheckConfig struct {
	Port int `yaml:"port" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Drainer is the outbox drainer daemon configuration.
type Drainer struct {
	Store       StoreConfig       `yaml:"store" validate:"required"`
	Relay       RelayClientConfig `yaml:"relay" validate:"required"`
	Drain       DrainConfig       `yaml:"drain" validate:"required"`
	HealthCheck HealthCheckConfig `yaml:"health-check,flow" validate:"required"`
	Metrics     MetricsConfig     `yaml:"metrics,flow"`
}

func (c *Drainer) GetStoreConfig() store.Config {
	return store.Config{
		Driver:      c.Store.Driver,
		Dir:         c.Store.Dir,
		DynamoTable: c.Store.Dynamo.Table,
		Aws: store.AwsConfig{
			Region:       c.Store.Dynamo.Region,
			Key:          c.Store.Dynamo.Key,
			Secret:       c.Store.Dynamo.Secret,
			BaseEndpoint: c.Store.Dynamo.BaseEndpoint,
		},
	}
}

func (c *Drainer) GetGasClientConfig() gasapi.Config {
	return gasapi.Config{
		BaseURL:    c.Relay.URL,
		Token:      c.Relay.Token,
		TenantID:   c.Relay.TenantID,
		TenantSlug: c.Relay.TenantSlug,
		Timeout:    time.Duration(c.Relay.Timeout) * time.Second,
	}
}

func (c *Drainer) GetDrainInterval() time.Duration {
	return time.Duration(c.Drain.Interval) * time.Second
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"required"`
}

type CorsConfig struct {
	Origins []string `yaml:"origins" validate:"required,min=1"`
}

type TenantsConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

type AuthConfig struct {
	JWKSURL string `yaml:"jwks_url"`
}

type UpstreamConfig struct {
	Timeout int `yaml:"timeout"`
}

// Relay is the gateway configuration.
type Relay struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Cors     CorsConfig     `yaml:"cors" validate:"required"`
	Env      string         `yaml:"env" validate:"required"`
	Tenants  TenantsConfig  `yaml:"tenants" validate:"required"`
	Auth     AuthConfig     `yaml:"auth,flow"`
	Upstream UpstreamConfig `yaml:"upstream,flow"`
	Metrics  MetricsConfig  `yaml:"metrics,flow"`
}

func (c *Relay) GetRelayConfig() relay.Config {
	return relay.Config{
		AllowOrigins:    c.Cors.Origins,
		Env:             c.Env,
		JWKSURL:         c.Auth.JWKSURL,
		UpstreamTimeout: time.Duration(c.Upstream.Timeout) * time.Second,
	}
}
