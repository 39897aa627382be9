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

type ProfileHandler struct {
	Config         *config.Config
	ProfileService service.IProfileService
}

func (h *ProfileHandler) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	g := r.Group("/v1/profiles")
	g.GET("/me", authorize, context.Wrap(h.Me))
	g.PUT("/me", authorize, context.Wrap(h.Update))
	g.GET("/me/saved", authorize, context.Wrap(h.Saved))
	g.GET("/:id", context.Wrap(h.Get))
}

func (h *ProfileHandler) Get(c *gin.Context) error {
	resp, err := h.ProfileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (h *ProfileHandler) Me(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}
	resp, err := h.ProfileService.Get(c.Request.Context(), userID)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

// Update 修改资料，用户名全局唯一
func (h *ProfileHandler) Update(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}
	var req types.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.Validation(err.Error())
	}

	resp, err := h.ProfileService.Update(c.Request.Context(), userID, &req)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

// Saved 当前用户的收藏，跨内容类型合并
func (h *ProfileHandler) Saved(c *gin.Context) error {
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}
	items, err := h.ProfileService.Saved(c.Request.Context(), userID)
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"items": items})
	return nil
}
