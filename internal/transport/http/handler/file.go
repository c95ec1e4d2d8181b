package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bytebazaar/internal/core/storage"
	"bytebazaar/internal/transport/http/ez"
	resp "bytebazaar/internal/transport/http/response"
)

// FileHandler 上传先落 TmpDir 再转发到 Store
type FileHandler struct {
	Store  storage.Provider
	TmpDir string
	Gates  Gates
	Log    *zap.Logger
}

type uploadOut struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
	FileID  string `json:"fileId"`
}

func (h *FileHandler) MountAPI(api *gin.RouterGroup) {
	files := api.Group("/files", h.Gates.Auth)
	files.POST("/upload", h.upload("file"))
	files.GET("/download/:fileId", h.download)
	files.DELETE("/:fileId", h.delete)

	projects := api.Group("/projects", h.Gates.Auth)
	projects.POST("/upload-thumbnail", h.upload("thumbnail"))
	projects.POST("/upload-project-file", h.upload("file"))
}

func (h *FileHandler) upload(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile(field)
		if err != nil {
			ez.Fail(c, ez.BadRequest("No file uploaded"), "")
			return
		}
		obj, err := storage.UploadMultipart(c.Request.Context(), h.Store, h.TmpDir, fh)
		if err != nil {
			h.Log.Error("upload failed", zap.String("name", fh.Filename), zap.Error(err))
			ez.Fail(c, ez.Internal("Error uploading file", err), "")
			return
		}
		h.Log.Info("file uploaded", zap.String("file_id", obj.FileID), zap.String("user_id", ez.UserID(c)), zap.Int64("size", fh.Size))
		c.JSON(http.StatusOK, uploadOut{Message: "File uploaded successfully", FileURL: obj.URL, FileID: obj.FileID})
	}
}

func (h *FileHandler) download(c *gin.Context) {
	id := c.Param("fileId")
	rc, err := h.Store.Download(c.Request.Context(), id)
	if err != nil {
		ez.Fail(c, storageErr("Error downloading file", err), "")
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": id}))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.Log.Warn("download interrupted", zap.String("file_id", id), zap.Error(err))
	}
}

func (h *FileHandler) delete(c *gin.Context) {
	id := c.Param("fileId")
	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		ez.Fail(c, storageErr("Error deleting file", err), "")
		return
	}
	h.Log.Info("file deleted", zap.String("file_id", id), zap.String("user_id", ez.UserID(c)))
	c.JSON(http.StatusOK, resp.Msg("File deleted successfully"))
}

func storageErr(msg string, err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return ez.NotFound("File not found")
	}
	return ez.Internal(msg, err)
}
