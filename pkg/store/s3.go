package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// s3Resolver checks resource existence with an S3 HeadObject call,
// grounded on the teacher's S3Storage backend (credential loading,
// custom endpoint support for MinIO-compatible stores, path-style
// addressing) but narrowed to Exists — loopcast never uploads or
// streams fragment bytes itself.
type s3Resolver struct {
	client *s3.Client
	bucket string
}

func newS3Resolver(cfg Config) (Resolver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("store: s3 backend requires Bucket")
	}

	ctx := context.Background()
	var awsCfg aws.Config
	var err error
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading AWS config: %w", err)
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) { o.UsePathStyle = true },
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}

	return &s3Resolver{
		client: s3.NewFromConfig(awsCfg, opts...),
		bucket: cfg.Bucket,
	}, nil
}

func (r *s3Resolver) Exists(ctx context.Context, vid uint32, resource catalog.Resource) (bool, error) {
	key := fmt.Sprintf("%d/%s", vid, resource)
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("store: head %s: %w", key, err)
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func (r *s3Resolver) Close() error { return nil }
