// Package store selects an outbox persistence driver.
package store

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	"github.com/m-ota618/shachoai-sub000/internal/outbox"
	"github.com/m-ota618/shachoai-sub000/internal/store/dynamostore"
	"github.com/m-ota618/shachoai-sub000/internal/store/filestore"
	"github.com/m-ota618/shachoai-sub000/internal/store/redisstore"
)

const (
	DriverFile   = "FILE"
	DriverRedis  = "REDIS"
	DriverDynamo = "DYNAMO"
)

type AwsConfig struct {
	Region       string
	Key          string
	Secret       string
	BaseEndpoint string
}

type Config struct {
	Driver string
	// Dir is the data directory for the FILE driver.
	Dir string
	// Redis backs the REDIS driver and the distributed drain guard.
	Redis *redis.Client
	// DynamoTable and Aws back the DYNAMO driver.
	DynamoTable string
	Aws         AwsConfig
}

func New(cfg Config) (outbox.Store, error) {
	switch strings.ToUpper(cfg.Driver) {
	case DriverFile, "":
		return filestore.New(cfg.Dir), nil
	case DriverRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("store: REDIS driver requires a redis client")
		}
		return redisstore.New(cfg.Redis), nil
	case DriverDynamo:
		return dynamostore.New(dynamodb.NewFromConfig(cfg.Aws.sdkConfig()), cfg.DynamoTable), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func (a AwsConfig) sdkConfig() aws.Config {
	cfg := aws.Config{
		Region:      a.Region,
		Credentials: credentials.NewStaticCredentialsProvider(a.Key, a.Secret, ""),
	}

	if a.BaseEndpoint != "" {
		cfg.BaseEndpoint = aws.String(a.BaseEndpoint)
	}

	return cfg
}
