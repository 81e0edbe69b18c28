package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"hrportal/internal/blob"
	"hrportal/internal/cache"
	apperrors "hrportal/internal/errors"
	"hrportal/internal/logging"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

const (
	documentListCacheTTL  = 5 * time.Minute
	defaultUploadMaxBytes = 20 << 20
)

// Upload is one document handed to the registry by an administrator.
type Upload struct {
	Filename string
	Owner    string
	Period   string
	Body     io.Reader
}

// DocumentService is the document registry: it records uploads, lists an
// employee's documents and resolves links to their content.
type DocumentService interface {
	Upload(ctx context.Context, in Upload) (*model.Document, error)
	ListDocuments(ctx context.Context, owner string) ([]model.Document, error)
	OpenLink(ctx context.Context, identity *model.Identity, ref string) (string, error)
	Fetch(ctx context.Context, ref string) (io.ReadCloser, *model.Document, error)
}

type documentService struct {
	repo     repository.DocumentRepository
	blobs    blob.Store
	linker   blob.Linker
	cache    *cache.Client
	logger   logging.Logger
	maxBytes int64
}

// NewDocumentService wires the registry. maxBytes <= 0 selects the default limit.
func NewDocumentService(
	repo repository.DocumentRepository,
	blobs blob.Store,
	linker blob.Linker,
	cache *cache.Client,
	logger logging.Logger,
	maxBytes int64,
) DocumentService {
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &documentService{
		repo:     repo,
		blobs:    blobs,
		linker:   linker,
		cache:    cache,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// Cached lists are versioned by a per-owner generation that every upload
// bumps, so a list read before an upload can never be served after it.
func listGenerationKey(owner string) string {
	return "documents:owner:" + owner + ":gen"
}

func listCacheKey(owner string, generation int64) string {
	return fmt.Sprintf("documents:owner:%s:v%d", owner, generation)
}

// Upload stores the PDF in the blob store, then appends its metadata row.
// The two writes are not atomic: when the append fails the blob stays
// orphaned and is only reported in the log.
func (s *documentService) Upload(ctx context.Context, in Upload) (*model.Document, error) {
	owner := model.NormalizeIdentifier(in.Owner)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner identifier is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Period) == "" {
		return nil, fmt.Errorf("%w: period is required", apperrors.ErrInvalidInput)
	}
	if in.Body == nil {
		return nil, fmt.Errorf("%w: file is required", apperrors.ErrInvalidDocument)
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: file is empty", apperrors.ErrInvalidDocument)
	case int64(len(data)) > s.maxBytes:
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrInvalidDocument, s.maxBytes)
	}
	if mt := mimetype.Detect(data); !mt.Is(model.DocumentContentType) {
		return nil, fmt.Errorf("%w: expected %s, got %s", apperrors.ErrInvalidDocument, model.DocumentContentType, mt.String())
	}

	name := model.BlobName(owner, in.Period)
	filename := in.Filename
	if filename == "" {
		filename = name
	}

	ref, err := s.blobs.Put(ctx, blob.Object{
		Name:        name,
		ContentType: model.DocumentContentType,
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		Filename:        filename,
		PeriodLabel:     in.Period,
		OwnerIdentifier: owner,
		BlobRef:         ref,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Warn(ctx, "document stored but not registered", "owner", owner, "ref", ref, "error", err)
		return nil, err
	}

	if err := s.cache.Bump(ctx, listGenerationKey(owner)); err != nil {
		s.logger.Warn(ctx, "document list cache not invalidated", "owner", owner, "error", err)
	}
	s.logger.Info(ctx, "document uploaded", "owner", owner, "period", in.Period, "ref", ref)
	return doc, nil
}

// ListDocuments returns the owner's documents in upload order, or an empty
// slice when there are none.
func (s *documentService) ListDocuments(ctx context.Context, owner string) ([]model.Document, error) {
	owner = model.NormalizeIdentifier(owner)

	generation, err := s.cache.Generation(ctx, listGenerationKey(owner))
	if err != nil {
		// no cache, or one we cannot version
		return s.repo.ListByOwner(ctx, owner)
	}
	key := listCacheKey(owner, generation)

	cached := make([]model.Document, 0)
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	docs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, docs, documentListCacheTTL)
	return docs, nil
}

// OpenLink returns a URL for the document stored under ref, provided the
// identity owns it or is an administrator.
func (s *documentService) OpenLink(ctx context.Context, identity *model.Identity, ref string) (string, error) {
	doc, err := s.repo.FindByBlobRef(ctx, ref)
	if err != nil {
		return "", err
	}
	if !identity.CanAccess(doc.OwnerIdentifier) {
		return "", apperrors.ErrForbidden
	}
	return s.linker.Link(ctx, doc.BlobRef)
}

// Fetch retrieves the content of a registered document. The caller closes
// the reader.
func (s *documentService) Fetch(ctx context.Context, ref string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.repo.FindByBlobRef(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, doc.BlobRef)
	if err != nil {
		return nil, nil, err
	}
	return rc, doc, nil
}
