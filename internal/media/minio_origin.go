package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// MinIOOrigin adapts minio.Client to the remoteOrigin interface. The object
// key doubles as the origin's public identifier, and the permanent URL is
// derived from the configured public base address.
type MinIOOrigin struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinIOOrigin constructs an adapter.
func NewMinIOOrigin(client *minio.Client, bucket, publicBaseURL string) *MinIOOrigin {
	return &MinIOOrigin{client: client, bucket: bucket, publicBaseURL: publicBaseURL}
}

func (o *MinIOOrigin) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (OriginUpload, error) {
	objectName := folder + "/" + filename

	_, err := o.client.PutObject(ctx, o.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return OriginUpload{}, fmt.Errorf("put object %q: %w", objectName, err)
	}

	return OriginUpload{
		URL:      fmt.Sprintf("%s/%s", o.publicBaseURL, objectName),
		PublicID: objectName,
	}, nil
}

func (o *MinIOOrigin) Remove(ctx context.Context, publicID string) error {
	return o.client.RemoveObject(ctx, o.bucket, publicID, minio.RemoveObjectOptions{})
}
