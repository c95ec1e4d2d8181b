package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Opts struct {
	Bucket          string
	Region          string
	Endpoint        string // MinIO / R2 等兼容服务；AWS 留空
	AccessKey       string
	SecretKey       string
	CredentialsFile string
	PublicURL       string
}

// S3 兼容 S3 协议的对象存储
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3(ctx context.Context, o S3Opts) (*S3, error) {
	if o.Bucket == "" {
		return nil, errors.New("storage/s3: bucket is not configured")
	}
	if o.Region == "" {
		o.Region = "us-east-1"
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(o.Region)}
	switch {
	case o.AccessKey != "" && o.SecretKey != "":
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	case o.CredentialsFile != "":
		opts = append(opts, awscfg.WithSharedCredentialsFiles([]string{o.CredentialsFile}))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if o.Endpoint != "" {
		clientOpts = append(clientOpts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		})
	}
	base := strings.TrimRight(o.PublicURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
	}
	return &S3{client: s3.NewFromConfig(cfg, clientOpts...), bucket: o.Bucket, baseURL: base}, nil
}

func (d *S3) Upload(ctx context.Context, name, mime string, r io.Reader) (Object, error) {
	key := newKey(name)
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(mime),
	})
	if err != nil {
		return Object{}, fmt.Errorf("storage/s3: put %s: %w", key, err)
	}
	return Object{FileID: key, URL: d.baseURL + "/" + key}, nil
}

func (d *S3) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if !validKey(fileID) {
		return nil, ErrObjectNotFound
	}
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("storage/s3: get %s: %w", fileID, err)
	}
	return out.Body, nil
}

func (d *S3) Delete(ctx context.Context, fileID string) error {
	if !validKey(fileID) {
		return ErrObjectNotFound
	}
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", fileID, err)
	}
	return nil
}
