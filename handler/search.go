package handler

import (
	"github.com/gin-gonic/gin"

	"Forge/pkg/context"
	"Forge/pkg/response"
	"Forge/service"
	"Forge/types"
)

type SearchHandler struct {
	SearchService service.ISearchService
}

func (h *SearchHandler) RegisterRouter(r gin.IRouter) {
	r.GET("/v1/search", context.Wrap(h.Search))
}

// Search 全局搜索
func (h *SearchHandler) Search(c *gin.Context) error {
	var req types.SearchReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return response.Validation(err.Error())
	}

	resp, err := h.SearchService.Search(c.Request.Context(), &req)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}
