package handler

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"hrportal/internal/model"
	"hrportal/internal/service"
)

// LinkVerifier checks the signature carried by a document link.
type LinkVerifier interface {
	Verify(ref, token string) error
}

// ContentHandler streams document content to holders of a signed link.
type ContentHandler struct {
	svc   service.DocumentService
	links LinkVerifier
}

// NewContentHandler creates a new content handler.
func NewContentHandler(svc service.DocumentService, links LinkVerifier) *ContentHandler {
	return &ContentHandler{svc: svc, links: links}
}

// View streams the document behind a link built by the signed linker. It sits
// outside /api and needs no session.
func (h *ContentHandler) View(c echo.Context) error {
	ref := c.Param("ref")
	if err := h.links.Verify(ref, c.QueryParam("token")); err != nil {
		return fromDomainError(err)
	}

	rc, doc, err := h.svc.Fetch(c.Request().Context(), ref)
	if err != nil {
		return fromDomainError(err)
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("inline", map[string]string{"filename": doc.Filename})
	if disposition == "" {
		disposition = fmt.Sprintf("inline; filename=%q", model.BlobName(doc.OwnerIdentifier, doc.PeriodLabel))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	c.Response().Header().Set("Cache-Control", "private, no-store")
	return c.Stream(http.StatusOK, model.DocumentContentType, rc)
}
