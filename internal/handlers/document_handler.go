package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/witthaya/prakan/internal/errors"
	"github.com/witthaya/prakan/internal/middleware"
	"github.com/witthaya/prakan/internal/models"
	"github.com/witthaya/prakan/internal/services"
	"github.com/witthaya/prakan/internal/storage"
)

// maxDocumentBytes caps an individual upload.
const maxDocumentBytes = 20 << 20 // 20 MiB

// DocumentHandler handles policy document upload, download, and removal.
// Metadata lives on the policy record; bytes live in the document store.
type DocumentHandler struct {
	policies services.PolicyService
	store    storage.DocumentStore
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(policies services.PolicyService, store storage.DocumentStore) *DocumentHandler {
	return &DocumentHandler{
		policies: policies,
		store:    store,
	}
}

// DocumentListResponse is the response for the list endpoint.
type DocumentListResponse struct {
	Documents []models.PolicyDocument `json:"documents"`
	Count     int                     `json:"count"`
}

// Upload handles POST /api/v1/policies/:id/documents.
// Expects a multipart form with a file field and an optional category field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	policyID := c.Param("id")
	userID := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file field in multipart form", nil)
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		apierrors.BadRequest(c, "File too large", map[string]interface{}{
			"max_bytes": maxDocumentBytes,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read uploaded file", err)
		return
	}
	defer file.Close()

	docID := uuid.New().String()
	if _, err := h.store.Save(c.Request.Context(), policyID, docID, file); err != nil {
		apierrors.InternalServerError(c, "Failed to store document", err)
		return
	}

	doc := models.PolicyDocument{
		ID:         docID,
		Name:       fileHeader.Filename,
		Category:   c.PostForm("category"),
		MimeType:   fileHeader.Header.Get("Content-Type"),
		URL:        fmt.Sprintf("/api/v1/policies/%s/documents/%s/content", policyID, docID),
		UploadedAt: time.Now(),
	}

	if err := h.policies.AttachDocument(c.Request.Context(), userID, policyID, doc); err != nil {
		// Keep the store consistent with the metadata we failed to attach
		_ = h.store.Delete(c.Request.Context(), policyID, docID)
		if errors.Is(err, services.ErrPolicyNotFound) {
			apierrors.NotFound(c, "Policy not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to attach document", err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List handles GET /api/v1/policies/:id/documents.
func (h *DocumentHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	policies, err := h.policies.ListPolicies(c.Request.Context(), userID, time.Now())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load policies", err)
		return
	}

	policyID := c.Param("id")
	for _, p := range policies {
		if p.ID != policyID {
			continue
		}
		docs := p.Documents
		if docs == nil {
			docs = []models.PolicyDocument{}
		}
		c.JSON(http.StatusOK, DocumentListResponse{
			Documents: docs,
			Count:     len(docs),
		})
		return
	}

	apierrors.NotFound(c, "Policy not found")
}

// Download handles GET /api/v1/policies/:id/documents/:docID/content.
func (h *DocumentHandler) Download(c *gin.Context) {
	policyID := c.Param("id")
	docID := c.Param("docID")
	userID := middleware.GetUserID(c)

	doc, err := h.policies.FindDocument(c.Request.Context(), userID, policyID, docID)
	if err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) || errors.Is(err, services.ErrDocumentNotFound) {
			apierrors.NotFound(c, "Document not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load document", err)
		return
	}

	content, err := h.store.Open(c.Request.Context(), policyID, docID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			apierrors.NotFound(c, "Document content not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to open document", err)
		return
	}
	defer content.Close()

	if doc.MimeType != "" {
		c.Header("Content-Type", doc.MimeType)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, content); err != nil {
		// Headers are already out; nothing useful left to send
		c.Abort()
	}
}

// Delete handles DELETE /api/v1/policies/:id/documents/:docID.
func (h *DocumentHandler) Delete(c *gin.Context) {
	policyID := c.Param("id")
	docID := c.Param("docID")
	userID := middleware.GetUserID(c)

	if _, err := h.policies.RemoveDocument(c.Request.Context(), userID, policyID, docID); err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) || errors.Is(err, services.ErrDocumentNotFound) {
			apierrors.NotFound(c, "Document not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to remove document", err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), policyID, docID); err != nil {
		apierrors.InternalServerError(c, "Failed to delete document content", err)
		return
	}

	c.Status(http.StatusNoContent)
}
