package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rhit-monroeds/youtube-transcripts/models"
)

// SpacesConfig holds connection settings for an S3-compatible object
// store such as DigitalOcean Spaces.
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

// SpacesClient archives pipeline artifacts in an object-store bucket.
// The local files stay the source of truth; the bucket is a backup.
type SpacesClient struct {
	client *s3.Client
	bucket string
}

func NewSpacesClient(cfg SpacesConfig) (*SpacesClient, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: cfg.Endpoint,
		}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	return &SpacesClient{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
	}, nil
}

// SaveTranscript uploads a transcript document as transcripts/<video_id>.json.
func (s *SpacesClient) SaveTranscript(ctx context.Context, videoID string, transcript *models.Transcript) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %v", err)
	}
	return s.put(ctx, fmt.Sprintf("transcripts/%s.json", videoID), data)
}

// SaveAnalysis uploads batch analysis results as analyses/<name>.
func (s *SpacesClient) SaveAnalysis(ctx context.Context, name string, results []models.FileAnalysis) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis results: %v", err)
	}
	return s.put(ctx, fmt.Sprintf("analyses/%s", name), data)
}

// GetTranscript fetches a previously archived transcript.
func (s *SpacesClient) GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	key := fmt.Sprintf("transcripts/%s.json", videoID)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get from Spaces: %v", err)
	}
	defer result.Body.Close()

	var transcript models.Transcript
	if err := json.NewDecoder(result.Body).Decode(&transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %v", err)
	}
	return &transcript, nil
}

func (s *SpacesClient) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to save to Spaces: %v", err)
	}
	return nil
}
