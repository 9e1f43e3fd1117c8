package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookforge/cover-service/internal/cover"
	"github.com/bookforge/cover-service/internal/model"
	"github.com/bookforge/cover-service/internal/service"
	"github.com/bookforge/cover-service/internal/storage"
)

// maxUploadBytes caps source uploads on the generate and convert routes.
const maxUploadBytes = 100 << 20

// CoverHandler handles cover generation, conversion, and download.
type CoverHandler struct {
	covers *service.CoverService
	logger *zap.Logger
}

// NewCoverHandler creates a new CoverHandler with the cover service.
func NewCoverHandler(covers *service.CoverService, logger *zap.Logger) *CoverHandler {
	return &CoverHandler{
		covers: covers,
		logger: logger,
	}
}

// Generate renders (or serves from cache) a cover for a JSON spec.
// Route: POST /api/v1/covers
//
// Multipart is also accepted so a background image can ride along: part
// "spec" holds the JSON, part "source" the upload.
func (h *CoverHandler) Generate(c *gin.Context) {
	var spec model.CoverSpec

	if isMultipart(c) {
		specStr := c.PostForm("spec")
		if specStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing spec form field"})
			return
		}
		if err := bindSpecJSON(specStr, &spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spec: " + err.Error()})
			return
		}
		source, err := readUpload(c, "source")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		spec.Source = source
	} else {
		if err := c.ShouldBindJSON(&spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spec: " + err.Error()})
			return
		}
	}

	gen, err := h.covers.Generate(c.Request.Context(), spec)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.respond(c, gen)
}

// Convert re-targets an uploaded cover document to another cover class.
// Route: POST /api/v1/covers/convert (multipart: spec + source)
func (h *CoverHandler) Convert(c *gin.Context) {
	specStr := c.PostForm("spec")
	if specStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing spec form field"})
		return
	}
	var spec model.CoverSpec
	if err := bindSpecJSON(specStr, &spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spec: " + err.Error()})
		return
	}

	target := model.CoverClass(c.DefaultQuery("target", string(spec.Class)))
	if !model.ValidClass(string(target)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target class"})
		return
	}

	source, err := readUpload(c, "source")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(source) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing source upload"})
		return
	}

	gen, err := h.covers.Convert(c.Request.Context(), source, target, spec)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.respond(c, gen)
}

// Download serves a previously rendered artifact by digest.
// Route: GET /api/v1/covers/:digest
func (h *CoverHandler) Download(c *gin.Context) {
	digest := c.Param("digest")

	rec, data, err := h.covers.Download(c.Request.Context(), digest)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cover not found"})
			return
		}
		h.logger.Warn("download failed",
			zap.String("digest", digest),
			zap.Error(err),
		)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	// Artifacts are content-addressed, so they never change.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType(rec.Format), data)
}

// respond returns either the artifact bytes or a JSON receipt, depending
// on the Accept header. The receipt carries the digest for later download.
func (h *CoverHandler) respond(c *gin.Context, gen *service.Generated) {
	if c.GetHeader("Accept") == "application/json" {
		c.JSON(http.StatusOK, gin.H{
			"digest":    gen.Cover.Digest,
			"class":     gen.Cover.Class,
			"format":    gen.Cover.Format,
			"byte_size": gen.Cover.ByteSize,
			"warnings":  gen.Warnings,
		})
		return
	}

	for _, w := range gen.Warnings {
		c.Writer.Header().Add("X-Cover-Warning", w)
	}
	c.Header("X-Cover-Digest", gen.Cover.Digest)
	c.Data(http.StatusOK, contentType(gen.Cover.Format), gen.Data)
}

func (h *CoverHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cover.ErrInvalidSpec):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cover.ErrUnsupportedSource):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, cover.ErrOutputTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	default:
		h.logger.Error("render failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func contentType(format string) string {
	if format == "pdf" {
		return "application/pdf"
	}
	return "image/jpeg"
}

func isMultipart(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "multipart/form-data"
}

func bindSpecJSON(raw string, spec *model.CoverSpec) error {
	return json.Unmarshal([]byte(raw), spec)
}

// readUpload pulls an optional file part, enforcing the upload cap.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil // part absent
	}
	if fh.Size > maxUploadBytes {
		return nil, errors.New("source upload exceeds " + strconv.Itoa(maxUploadBytes>>20) + "MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
}
