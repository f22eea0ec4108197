package services

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PhotoService issues presigned S3 URLs for member profile photos. Photos are
// uploaded ahead of time and only ever surfaced to a partner once a match is
// revealed, via the stored photoKey.
type PhotoService struct {
	Client *s3.Client
	Bucket string
}

// InitializeS3Client initializes the S3 client
func InitializeS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg)
}

// NewPhotoService creates a PhotoService over the configured bucket.
func NewPhotoService(client *s3.Client) *PhotoService {
	return &PhotoService{Client: client, Bucket: os.Getenv("S3_BUCKET_NAME")}
}

// GenerateUploadURL returns a presigned PUT URL and the object key for a new
// profile photo of memberID.
func (s *PhotoService) GenerateUploadURL(ctx context.Context, memberID, fileType string) (string, string, error) {
	key := "member-photos/" + memberID + "/" + time.Now().UTC().Format("20060102150405")
	presigner := s3.NewPresignClient(s.Client)
	presigned, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", "", err
	}
	return presigned.URL, key, nil
}

// GenerateReadURL returns a presigned GET URL for a stored photo key.
func (s *PhotoService) GenerateReadURL(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.Client)
	presigned, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}
