package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	miniogo "github.com/minio/minio-go/v7"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/infrastructure/forms"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// TemplateStore loads the pinned Form N1 template from object storage.  The
// template is an operator-provisioned asset; a missing object is a deployment
// fault and the store fails fast rather than substituting anything.
type TemplateStore struct {
	client    *Client
	objectKey string
	logger    logging.Logger
}

var _ forms.TemplateStore = (*TemplateStore)(nil)

func NewTemplateStore(client *Client, objectKey string, logger logging.Logger) *TemplateStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TemplateStore{client: client, objectKey: objectKey, logger: logger.Named("template_store")}
}

// LoadTemplate fetches the template bytes.
func (s *TemplateStore) LoadTemplate(ctx context.Context) ([]byte, error) {
	info, err := s.client.api.StatObject(ctx, s.client.bucket, s.objectKey, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage,
			fmt.Sprintf("form template %s not available in bucket %s", s.objectKey, s.client.bucket))
	}

	obj, err := s.client.api.GetObject(ctx, s.client.bucket, s.objectKey, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to open form template")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to read form template")
	}

	s.logger.Debug("form template loaded",
		logging.String("object_key", s.objectKey),
		logging.Int64("size", info.Size))
	return data, nil
}

// FilledFormArchive writes filled forms back to object storage so a produced
// PDF can be retrieved later without re-rendering.
type FilledFormArchive struct {
	client *Client
	logger logging.Logger
}

func NewFilledFormArchive(client *Client, logger logging.Logger) *FilledFormArchive {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FilledFormArchive{client: client, logger: logger.Named("form_archive")}
}

// ArchiveKey names the object a filled form is stored under.
func ArchiveKey(claimID common.ID, docType claim.DocumentType, at time.Time) string {
	return fmt.Sprintf("filled/%s/%s-%s.pdf", claimID, docType, at.UTC().Format("20060102T150405Z"))
}

// Store uploads one filled form.  Failures are reported but callers treat
// archiving as best effort; the rendered bytes have already been returned.
func (a *FilledFormArchive) Store(ctx context.Context, claimID common.ID, docType claim.DocumentType, pdf []byte, at time.Time) (string, error) {
	key := ArchiveKey(claimID, docType, at)
	_, err := a.client.api.PutObject(ctx, a.client.bucket, key,
		bytes.NewReader(pdf), int64(len(pdf)),
		miniogo.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorage, "failed to archive filled form")
	}
	a.logger.Info("filled form archived",
		logging.String("claim_id", string(claimID)),
		logging.String("object_key", key))
	return key, nil
}
