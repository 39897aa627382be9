package handler

import (
	"github.com/gin-gonic/gin"

	"Forge/config"
	"Forge/middleware"
	"Forge/pkg/context"
	"Forge/pkg/response"
	"Forge/service"
	"Forge/types"
)

type UploadHandler struct {
	Config     *config.Config
	OssService service.IOssService
}

func (h *UploadHandler) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	r.POST("/v1/upload/image", authorize, context.Wrap(h.UploadImage))
	r.GET("/v1/upload/images", authorize, context.Wrap(h.ListImages))
}

// UploadImage 表单字段 file
func (h *UploadHandler) UploadImage(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return response.Validation("missing image")
	}

	resp, err := h.OssService.UploadImage(c.Request.Context(), userID, header)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (h *UploadHandler) ListImages(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}
	var req types.ListImagesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return response.Validation("invalid limit")
	}

	items, err := h.OssService.ListImages(c.Request.Context(), userID, req.Limit)
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"items": items})
	return nil
}
