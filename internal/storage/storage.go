// Package storage persists uploaded product media either on local disk or
// in S3, selected by configuration.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/tradegate/backoffice/internal/config"
)

const (
	localBasePath   = "./uploads"
	localImagesPath = "./uploads/images"
	localOthersPath = "./uploads/others"
)

// Store saves and deletes uploaded files. URLs it returns are what gets
// persisted on ProductImage rows.
type Store struct {
	useS3         bool
	bucket        string
	region        string
	cloudFrontURL string
	sess          *session.Session
}

// New builds a Store from cfg. With UseS3 off it prepares the local
// uploads directories; otherwise it opens an AWS session for the
// configured bucket.
func New(cfg *config.Config) (*Store, error) {
	if !cfg.UseS3 {
		for _, dir := range []string{localBasePath, localImagesPath, localOthersPath} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
			}
		}
		return &Store{}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.S3Region),
	})
	if err != nil {
		return nil, err
	}
	return &Store{
		useS3:         true,
		bucket:        cfg.S3Bucket,
		region:        cfg.S3Region,
		cloudFrontURL: cfg.CloudFrontURL,
		sess:          sess,
	}, nil
}

func (s *Store) Mode() string {
	if s.useS3 {
		return "s3"
	}
	return "local"
}

// Save writes the upload and returns its public URL.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	if s.useS3 {
		return s.saveS3(file)
	}
	return s.saveLocal(file)
}

func (s *Store) saveLocal(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	folder := localOthersPath
	if strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		folder = localImagesPath
	}

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102-150405"),
		uuid.New().String()[:8],
		ext,
	)
	fullPath := filepath.Join(folder, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	return "/" + strings.TrimPrefix(fullPath, "./"), nil
}

func (s *Store) saveS3(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	key := fmt.Sprintf("%s/%s%s",
		time.Now().Format("2006/01"),
		uuid.New().String(),
		ext,
	)

	svc := s3.New(s.sess)
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	if s.cloudFrontURL != "" {
		return s.cloudFrontURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// Delete removes a previously saved file by its URL.
func (s *Store) Delete(url string) error {
	if s.useS3 {
		return s.deleteS3(url)
	}
	return s.deleteLocal(url)
}

func (s *Store) deleteS3(url string) error {
	key := s.keyFromURL(url)
	if key == "" {
		return fmt.Errorf("unrecognized storage url: %s", url)
	}
	svc := s3.New(s.sess)
	_, err := svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *Store) keyFromURL(url string) string {
	prefixes := []string{
		s.cloudFrontURL + "/",
		fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region),
	}
	for _, p := range prefixes {
		if p != "/" && strings.HasPrefix(url, p) {
			return strings.TrimPrefix(url, p)
		}
	}
	return ""
}

func (s *Store) deleteLocal(url string) error {
	path := strings.TrimPrefix(url, "/")

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	baseAbs, err := filepath.Abs(localBasePath)
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	if real, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = real
	}
	if !strings.HasPrefix(absPath, baseAbs) {
		return fmt.Errorf("file path outside uploads directory")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	return os.Remove(path)
}
