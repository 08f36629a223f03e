package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/nkoudou/veltrabackend/utils"
)

// Uploader stores exported cart PDFs in GCS and hands back public URLs.
type Uploader struct {
	client *storage.Client
	bucket string
}

func NewGCSUploader(ctx context.Context) (*Uploader, error) {
	bucket := os.Getenv("GCS_BUCKET")
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	if bucket == "" || credentialsPath == "" {
		return nil, fmt.Errorf("GCS_BUCKET and CREDENTIALS_FILE_LOCATION must be set")
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

// UploadCartPDF writes the document under a unique object name and returns
// its public URL. The session id comes from a client header, so it is slugged
// before it becomes part of an object path.
func (u *Uploader) UploadCartPDF(ctx context.Context, sessionID string, data []byte) (string, error) {
	objectName := fmt.Sprintf(
		"enquiry-exports/%s/%d-%s.pdf",
		utils.GenerateSlug(sessionID),
		time.Now().UTC().Unix(),
		uuid.New().String(),
	)

	obj := u.client.Bucket(u.bucket).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/pdf"
	w.CacheControl = "no-cache"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, objectName), nil
}
