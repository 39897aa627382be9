package handler

import (
	"github.com/gin-gonic/gin"

	"Forge/config"
	"Forge/middleware"
	"Forge/pkg/context"
	"Forge/pkg/response"
	"Forge/schema"
	"Forge/service"
	"Forge/types"
)

type ContentHandler struct {
	Config         *config.Config
	ContentService service.IContentService
}

func (h *ContentHandler) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	g := r.Group("/v1/content")
	g.GET("/:kind", context.Wrap(h.Feed))
	g.POST("/:kind", authorize, context.Wrap(h.Create))
	g.DELETE("/:kind/:id", authorize, context.Wrap(h.Delete))
}

// Create 发布内容
func (h *ContentHandler) Create(c *gin.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}

	var req types.CreateContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.Validation(err.Error())
	}

	item, err := h.ContentService.Create(c.Request.Context(), userID, kind, &req)
	if err != nil {
		return err
	}
	response.Success(c, item)
	return nil
}

// Feed 最新内容，owner_id 过滤个人主页
func (h *ContentHandler) Feed(c *gin.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	var req types.FeedReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return response.Validation(err.Error())
	}

	items, err := h.ContentService.Feed(c.Request.Context(), kind, &req)
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"items": items})
	return nil
}

func (h *ContentHandler) Delete(c *gin.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	userID, err := context.GetUserID(c)
	if err != nil {
		return err
	}

	n, err := h.ContentService.Delete(c.Request.Context(), userID, kind, c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, types.DeleteContentResp{Deleted: n})
	return nil
}

func parseKind(c *gin.Context) (schema.ParentKind, error) {
	kind, err := schema.ParseParentKind(c.Param("kind"))
	if err != nil {
		return 0, response.Validation(err.Error())
	}
	return kind, nil
}
