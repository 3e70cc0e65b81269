package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoDataTransfered = errors.New("no data transfered")
)

// S3 stores the raw sample bytes behind every AudioRef. A ref is just
// "s3://<bucket>/<key>" so the rest of the system can pass it around
// without knowing about this package.
type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicUrl string
}

func NewS3FromEnv() (*S3, error) {
	endpoint, exists := os.LookupEnv("S3_HOSTNAME")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_HOSTNAME")
	}
	publicurl, exists := os.LookupEnv("S3_PUBLICURL")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_PUBLICURL")
	}
	region, exists := os.LookupEnv("S3_REGION")
	if !exists {
		region = "auto"
	}
	access, exists := os.LookupEnv("S3_ACCESS")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_ACCESS")
	}
	secret, exists := os.LookupEnv("S3_SECRET")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_SECRET")
	}
	bucket, exists := os.LookupEnv("S3_BUCKET")
	if !exists {
		return nil, fmt.Errorf("missing env var S3_BUCKET")
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"region":   region,
		"access":   access[:4],
		"secret":   secret[:4],
		"public":   publicurl,
		"bucket":   bucket,
	}).Infoln("s3 configuration")

	return &S3{
		Endpoint:  endpoint,
		Region:    region,
		AccessKey: access,
		SecretKey: secret,
		Bucket:    bucket,
		PublicUrl: publicurl,
	}, nil
}

func (s *S3) newSession() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(s.Region),
		Endpoint:    aws.String(s.Endpoint),
		Credentials: credentials.NewStaticCredentials(s.AccessKey, s.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to s3; %w", err)
	}
	return sess, nil
}

// AudioRef builds the opaque ref stored on a Recording for a key.
func (s *S3) AudioRef(key string) string {
	return "s3://" + s.Bucket + "/" + key
}

// UploadSample streams an uploaded sample to the bucket and returns
// its audio ref. Streams in chunks so large uploads never sit in
// memory whole.
func (s *S3) UploadSample(stream io.Reader, key string) (string, error) {
	sess, err := s.newSession()
	if err != nil {
		return "", err
	}

	uploader := s3manager.NewUploader(sess)
	_, err = uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   stream,
	}, func(u *s3manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024 // 10MB part size
		u.LeavePartsOnError = false   // on fail delete garbage
	})
	if err != nil {
		return "", fmt.Errorf("failed putobject; %w", err)
	}

	exists, err := s.KeyExists(key)
	if err != nil {
		return "", fmt.Errorf("failed to check put succeeded; %w", err)
	}
	if !exists {
		return "", ErrNoDataTransfered
	}

	return s.AudioRef(key), nil
}

// DownloadSample fetches a sample's bytes by key.
func (s *S3) DownloadSample(key string) ([]byte, error) {
	sess, err := s.newSession()
	if err != nil {
		return nil, err
	}

	buf := aws.NewWriteAtBuffer([]byte{})
	downloader := s3manager.NewDownloader(sess)
	_, err = downloader.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed getobject; %w", err)
	}

	return buf.Bytes(), nil
}

// FetchRef resolves an audio ref produced by AudioRef back to bytes.
func (s *S3) FetchRef(ref string) ([]byte, error) {
	prefix := "s3://" + s.Bucket + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil, fmt.Errorf("audio ref %q does not belong to bucket %s", ref, s.Bucket)
	}
	return s.DownloadSample(strings.TrimPrefix(ref, prefix))
}

// StoreNarration writes finished narration audio and returns the
// public URL the player streams from.
func (s *S3) StoreNarration(audio []byte, key string) (string, error) {
	sess, err := s.newSession()
	if err != nil {
		return "", err
	}

	s3Svc := s3.New(sess)
	_, err = s3Svc.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("failed putobject; %w", err)
	}

	return s.PublicUrl + "/" + key, nil
}

func (s *S3) KeyExists(key string) (bool, error) {
	sess, err := s.newSession()
	if err != nil {
		return false, err
	}

	s3Svc := s3.New(sess)
	out, err := s3Svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			code := aerr.Code()
			switch code {
			case s3.ErrCodeNoSuchKey, "NotFound":
				return false, nil
			default:
				return false, fmt.Errorf("failed to headobject; %w", err)
			}
		}
		return false, fmt.Errorf("failed to headobject not a awserr; %w", err)
	}
	// don't count a key as 'existing' if its 0 bytes
	if out.ContentLength != nil && *out.ContentLength == 0 {
		return false, nil
	}

	return true, nil
}
