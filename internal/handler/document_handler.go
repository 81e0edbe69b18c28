package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hrportal/internal/errors"
	"hrportal/internal/service"
)

// DocumentHandler serves document upload, listing and links.
type DocumentHandler struct {
	svc service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// LinkResponse carries the URL a document can be opened at.
type LinkResponse struct {
	URL string `json:"url"`
}

// Upload godoc
// @Summary Upload a pay slip for an employee
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF document"
// @Param owner formData string true "Owner identifier"
// @Param period formData string true "Period label, e.g. March/2025"
// @Success 201 {object} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /admin/documents [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "file is required",
			Code:  "INVALID_REQUEST",
		})
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable file",
			Code:  "INVALID_REQUEST",
		})
	}
	defer f.Close()

	doc, err := h.svc.Upload(c.Request().Context(), service.Upload{
		Filename: fh.Filename,
		Owner:    c.FormValue("owner"),
		Period:   c.FormValue("period"),
		Body:     f,
	})
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListForUser godoc
// @Summary List an employee's documents
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param identifier path string true "Owner identifier"
// @Success 200 {array} model.Document
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users/{identifier}/documents [get]
func (h *DocumentHandler) ListForUser(c echo.Context) error {
	docs, err := h.svc.ListDocuments(c.Request().Context(), c.Param("identifier"))
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, docs)
}

// ListMine godoc
// @Summary List the caller's documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Document
// @Failure 401 {object} errors.ErrorResponse
// @Router /documents [get]
func (h *DocumentHandler) ListMine(c echo.Context) error {
	identity := IdentityFrom(c)
	if identity == nil {
		return unauthorized()
	}
	docs, err := h.svc.ListDocuments(c.Request().Context(), identity.Identifier)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, docs)
}

// OpenLink godoc
// @Summary Link to open a document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param ref path string true "Blob reference"
// @Success 200 {object} LinkResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documents/{ref}/link [get]
func (h *DocumentHandler) OpenLink(c echo.Context) error {
	identity := IdentityFrom(c)
	if identity == nil {
		return unauthorized()
	}
	url, err := h.svc.OpenLink(c.Request().Context(), identity, c.Param("ref"))
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, LinkResponse{URL: url})
}
