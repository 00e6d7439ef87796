//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SigETL Authors
//
// This file is part of SigETL.
//
// SigETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SigETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SigETL. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sigetl/sigetl"
)

// S3ReaderError provides structured error information for S3 reader
// operations.
type S3ReaderError struct {
	Op  string
	Err error
}

func (e *S3ReaderError) Error() string {
	return fmt.Sprintf("s3 reader %s: %v", e.Op, e.Err)
}

func (e *S3ReaderError) Unwrap() error {
	return e.Err
}

// S3ReaderOptions configures the S3 reader.
type S3ReaderOptions struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Prefix       string
	Suffix       string
	ValuesColumn string
}

// S3ReaderOption represents a configuration function.
type S3ReaderOption func(*S3ReaderOptions)

// WithS3Region sets the AWS region.
func WithS3Region(region string) S3ReaderOption {
	return func(o *S3ReaderOptions) { o.Region = region }
}

// WithS3Endpoint sets a custom endpoint, e.g. for MinIO or LocalStack.
func WithS3Endpoint(endpoint string) S3ReaderOption {
	return func(o *S3ReaderOptions) { o.Endpoint = endpoint }
}

// WithS3Credentials sets static credentials instead of the default chain.
func WithS3Credentials(accessKey, secretKey string) S3ReaderOption {
	return func(o *S3ReaderOptions) {
		o.AccessKey = accessKey
		o.SecretKey = secretKey
	}
}

// WithS3Prefix restricts listing to keys under the prefix.
func WithS3Prefix(prefix string) S3ReaderOption {
	return func(o *S3ReaderOptions) { o.Prefix = prefix }
}

// WithS3Suffix restricts listing to keys with the suffix, e.g. ".csv".
func WithS3Suffix(suffix string) S3ReaderOption {
	return func(o *S3ReaderOptions) { o.Suffix = suffix }
}

// WithS3ValuesColumn names the signal vector column for the inner readers.
func WithS3ValuesColumn(name string) S3ReaderOption {
	return func(o *S3ReaderOptions) { o.ValuesColumn = name }
}

// S3Reader implements sigetl.DataSource over a set of S3 objects. Objects are
// listed once, then streamed sequentially; each object is decoded by a CSV or
// JSONL reader chosen from its key suffix.
type S3Reader struct {
	client *s3.Client
	bucket string
	opts   S3ReaderOptions
	keys   []string
	keyIdx int
	inner  sigetl.DataSource
}

// NewS3Reader creates a reader over the objects of a bucket.
func NewS3Reader(ctx context.Context, bucket string, options ...S3ReaderOption) (*S3Reader, error) {
	opts := S3ReaderOptions{
		Region:       "us-east-1",
		ValuesColumn: sigetl.DefaultValuesColumn,
	}
	for _, option := range options {
		option(&opts)
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &S3ReaderError{Op: "load_config", Err: err}
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	reader := &S3Reader{client: client, bucket: bucket, opts: opts}
	if err := reader.listKeys(ctx); err != nil {
		return nil, err
	}
	return reader, nil
}

// Read implements the sigetl.DataSource interface.
func (s *S3Reader) Read(ctx context.Context) (sigetl.Record, error) {
	for {
		if s.inner == nil {
			if s.keyIdx >= len(s.keys) {
				return nil, io.EOF
			}
			inner, err := s.openObject(ctx, s.keys[s.keyIdx])
			if err != nil {
				return nil, err
			}
			s.keyIdx++
			s.inner = inner
		}

		record, err := s.inner.Read(ctx)
		if err == io.EOF {
			s.inner.Close()
			s.inner = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}

// Close implements the sigetl.DataSource interface.
func (s *S3Reader) Close() error {
	if s.inner != nil {
		err := s.inner.Close()
		s.inner = nil
		return err
	}
	return nil
}

// Keys returns the object keys selected for reading.
func (s *S3Reader) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

func (s *S3Reader) listKeys(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.opts.Prefix != "" {
		input.Prefix = aws.String(s.opts.Prefix)
	}
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return &S3ReaderError{Op: "list_objects", Err: err}
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if s.opts.Suffix != "" && !strings.HasSuffix(key, s.opts.Suffix) {
				continue
			}
			s.keys = append(s.keys, key)
		}
	}
	if len(s.keys) == 0 {
		return &S3ReaderError{Op: "list_objects", Err: fmt.Errorf("no objects matched prefix %q suffix %q", s.opts.Prefix, s.opts.Suffix)}
	}
	return nil
}

func (s *S3Reader) openObject(ctx context.Context, key string) (sigetl.DataSource, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &S3ReaderError{Op: "get_object", Err: err}
	}
	switch {
	case strings.HasSuffix(key, ".jsonl"), strings.HasSuffix(key, ".ndjson"):
		return NewJSONLReader(out.Body), nil
	case strings.HasSuffix(key, ".csv"):
		inner, err := NewCSVReader(out.Body, WithCSVValuesColumn(s.opts.ValuesColumn))
		if err != nil {
			out.Body.Close()
			return nil, &S3ReaderError{Op: "open_csv", Err: err}
		}
		return inner, nil
	default:
		out.Body.Close()
		return nil, &S3ReaderError{Op: "open_object", Err: fmt.Errorf("unsupported object format for key %q", key)}
	}
}
