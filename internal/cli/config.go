package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/kdmap/blobstore"
	minioblob "github.com/hupe1980/kdmap/blobstore/minio"
	s3blob "github.com/hupe1980/kdmap/blobstore/s3"
	"github.com/spf13/cobra"
)

// Store backends accepted by --store.
const (
	storeLocal = "local"
	storeS3    = "s3"
	storeMinio = "minio"
)

type config struct {
	Map       string
	Store     string
	Root      string
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Secure    bool
	LogLevel  string
	LogFormat string
}

func (c *config) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&c.Map, "map", "m", "", "map file name inside the store (e.g. level.json.zst)")
	f.StringVar(&c.Store, "store", storeLocal, "blob store backend: local, s3 or minio")
	f.StringVar(&c.Root, "root", ".", "root directory of the local store")
	f.StringVar(&c.Bucket, "bucket", "", "bucket for the s3 and minio stores")
	f.StringVar(&c.Prefix, "prefix", "", "key prefix inside the bucket")
	f.StringVar(&c.Endpoint, "endpoint", "", "custom S3 endpoint or MinIO host:port")
	f.StringVar(&c.Region, "region", "", "bucket region")
	f.StringVar(&c.AccessKey, "access-key", "", "MinIO access key")
	f.StringVar(&c.SecretKey, "secret-key", "", "MinIO secret key")
	f.BoolVar(&c.Secure, "secure", true, "use TLS for MinIO")
	f.StringVar(&c.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.StringVar(&c.LogFormat, "log-format", "text", "log format: text or json")
}

var envFlags = []string{
	"map", "store", "root", "bucket", "prefix", "endpoint", "region",
	"access-key", "secret-key", "secure", "log-level", "log-format",
}

func envKey(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv fills every flag not set on the command line from its
// environment variable.
func (c *config) applyEnv(cmd *cobra.Command, getenv func(string) string) error {
	flags := cmd.Flags()
	for _, name := range envFlags {
		if flags.Changed(name) {
			continue
		}
		v := getenv(envKey(name))
		if v == "" {
			continue
		}
		if err := flags.Set(name, v); err != nil {
			return fmt.Errorf("%s: %w", envKey(name), err)
		}
	}
	return nil
}

func (c *config) openStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch strings.ToLower(c.Store) {
	case storeLocal, "":
		return blobstore.NewLocalStore(c.Root), nil
	case storeS3:
		if c.Bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the %s store", storeS3)
		}
		var opts []func(*awsconfig.LoadOptions) error
		if c.Region != "" {
			opts = append(opts, awsconfig.WithRegion(c.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if c.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3blob.NewStore(client, c.Bucket, c.Prefix), nil
	case storeMinio:
		if c.Bucket == "" || c.Endpoint == "" {
			return nil, fmt.Errorf("--bucket and --endpoint are required for the %s store", storeMinio)
		}
		store, err := minioblob.New(minioblob.Config{
			Endpoint:  c.Endpoint,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Region:    c.Region,
			Secure:    c.Secure,
		}, c.Bucket, c.Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, storeLocal, storeS3, storeMinio)
	}
}
