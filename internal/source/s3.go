// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"

	"github.com/kagenti/agent-operator/internal/credentials"
	"github.com/kagenti/agent-operator/internal/failure"
)

// S3Getter is the subset of the S3 API used to download sources.
type S3Getter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures clients built by NewS3Client.
type S3Config struct {
	Region string
	// Endpoint targets an S3-compatible service.
	Endpoint     string
	UsePathStyle bool
}

// NewS3Client builds an S3 client from the default AWS configuration. A
// non-nil creds overrides the default credential chain with a static key pair.
func NewS3Client(ctx context.Context, cfg S3Config, creds *credentials.GitCredentials) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if creds != nil {
		if creds.Username == "" || creds.Token == "" {
			return nil, failure.Auth("load S3 credentials",
				errors.New("credentials secret must contain accessKeyId and secretAccessKey"))
		}
		provider := awscreds.NewStaticCredentialsProvider(creds.Username, creds.Token, "")
		opts = append(opts, config.WithCredentialsProvider(provider))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, failure.Network("load AWS config", err)
	}

	var s3Opts []func(*s3.Options)

	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

func (f *ArchiveFetcher) openS3(ctx context.Context, loc *location, creds *credentials.GitCredentials) (io.ReadCloser, error) {
	getter := f.opts.S3
	if getter == nil {
		c, err := NewS3Client(ctx, S3Config{}, creds)
		if err != nil {
			return nil, err
		}
		getter = c
	}

	output, err := getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.bucket),
		Key:    aws.String(loc.key),
	})
	if err != nil {
		return nil, classifyS3Error(loc.display, err)
	}

	return output.Body, nil
}

func classifyS3Error(display string, err error) error {
	op := "get S3 object " + display

	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return failure.NotFound(op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return failure.Auth(op, fmt.Errorf("%s", apiErr.ErrorCode()))
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return failure.NotFound(op, err)
		}
	}

	return failure.Network(op, err)
}
