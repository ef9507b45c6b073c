package handlers

import (
	"net/http"

	"gym_club_backend/internal/services"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(us services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: us}
}

// Upload expects a multipart form with a "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondValidationFailed(c, "Debe adjuntar un archivo en el campo 'file'")
		return
	}
	f, err := header.Open()
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	defer f.Close()

	res, err := h.uploadService.Upload(c.Request.Context(), header.Filename, f)
	if err != nil {
		respondError(c, err, "Upload: error from uploadService.Upload")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *UploadHandler) ServeFile(c *gin.Context) {
	path, err := h.uploadService.LocalPath(c.Param("filename"))
	if err != nil {
		respondError(c, err, "ServeFile: error from uploadService.LocalPath")
		return
	}
	c.File(path)
}

func (h *UploadHandler) DeleteFile(c *gin.Context) {
	if err := h.uploadService.Delete(c.Request.Context(), c.Param("filename")); err != nil {
		respondError(c, err, "DeleteFile: error from uploadService.Delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Archivo eliminado"})
}

// DeleteRemote removes a Cloudinary asset. The public id may contain the
// folder, so the route uses a catch-all parameter.
func (h *UploadHandler) DeleteRemote(c *gin.Context) {
	publicID := trimLeadingSlash(c.Param("publicId"))
	if err := h.uploadService.DeleteRemote(c.Request.Context(), publicID); err != nil {
		respondError(c, err, "DeleteRemote: error from uploadService.DeleteRemote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Archivo eliminado"})
}

func trimLeadingSlash(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	return s
}
