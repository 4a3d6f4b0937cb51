package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ssovee/Open-Data-API/objectstore"
)

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type imageView struct {
	objectstore.Object
	URL string `json:"url"`
}

type Images struct {
	store    objectstore.Store
	maxBytes int64
	basePath string
	logger   *slog.Logger
}

func NewImages(store objectstore.Store, maxBytes int64, logger *slog.Logger) *Images {
	return &Images{store: store, maxBytes: maxBytes, logger: logger}
}

func (h *Images) Register(g *gin.RouterGroup) {
	h.basePath = strings.TrimRight(g.BasePath(), "/")
	g.GET("/", h.List)
	g.GET("/:name", h.Get)
	g.POST("/", h.Upload)
	g.DELETE("/:name", h.Delete)
}

func (h *Images) view(o objectstore.Object) imageView {
	return imageView{Object: o, URL: h.basePath + "/" + o.Name}
}

func (h *Images) List(c *gin.Context) {
	objs, err := h.store.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]imageView, 0, len(objs))
	for _, o := range objs {
		out = append(out, h.view(o))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *Images) Get(c *gin.Context) {
	rc, obj, err := h.store.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=3600")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, rc, nil)
}

func (h *Images) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds " + strconv.FormatInt(h.maxBytes, 10) + " bytes"})
}

// Upload stores the multipart "file" field under a generated name.
func (h *Images) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fh, err := c.FormFile("file")
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		h.tooLarge(c)
		return
	case err != nil:
		badRequest(c, "multipart field \"file\" is required")
		return
	case fh.Size > h.maxBytes:
		h.tooLarge(c)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageTypes[contentType]
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported image type " + contentType})
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if orig := strings.ToLower(filepath.Ext(fh.Filename)); orig != "" && mime.TypeByExtension(orig) == contentType {
		ext = orig
	}

	obj, err := h.store.Put(c.Request.Context(), uuid.NewString()+ext, f, fh.Size, contentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(*obj))
}

func (h *Images) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("name")})
}
