package utils

import "os"

var (
	CH_ADDR     = GetEnvOrDefault("CH_ADDR", "localhost:9000")
	CH_DATABASE = GetEnvOrDefault("CH_DATABASE", "default")
	CH_USERNAME = GetEnvOrDefault("CH_USERNAME", "default")
	CH_PASSWORD = os.Getenv("CH_PASSWORD")

	CRDB_DSN = os.Getenv("CRDB_DSN")

	REDIS_ADDR     = os.Getenv("REDIS_ADDR")
	REDIS_PASSWORD = os.Getenv("REDIS_PASSWORD")

	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")
)
