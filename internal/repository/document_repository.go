package repository

import (
	"context"

	"gorm.io/gorm"

	apperrors "hrportal/internal/errors"
	"hrportal/internal/model"
)

// DocumentRepository defines persistence operations on the documents table.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	ListByOwner(ctx context.Context, owner string) ([]model.Document, error)
	FindByBlobRef(ctx context.Context, ref string) (*model.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create appends a document row.
func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return apperrors.NewStoreError(recordStore, "create document", r.db.WithContext(ctx).Create(doc).Error)
}

// ListByOwner returns the owner's documents in insertion order. The result is
// never nil and holds only exact owner matches.
func (r *documentRepository) ListByOwner(ctx context.Context, owner string) ([]model.Document, error) {
	owner = model.NormalizeIdentifier(owner)
	var rows []model.Document
	err := r.db.WithContext(ctx).
		Where("owner_identifier = ?", owner).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewStoreError(recordStore, "list documents", err)
	}

	docs := make([]model.Document, 0, len(rows))
	for _, doc := range rows {
		if doc.OwnerIdentifier == owner {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// FindByBlobRef returns the document stored under ref.
func (r *documentRepository) FindByBlobRef(ctx context.Context, ref string) (*model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Where("blob_ref = ?", ref).Order("id").Find(&docs).Error
	if err != nil {
		return nil, apperrors.NewStoreError(recordStore, "find document", err)
	}
	for i := range docs {
		if docs[i].BlobRef == ref {
			return &docs[i], nil
		}
	}
	return nil, apperrors.ErrDocumentNotFound
}
