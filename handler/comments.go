package handler

import (
	"github.com/gin-gonic/gin"

	"Forge/pkg/context"
	"Forge/pkg/response"
	"Forge/service"
)

// CommentsHandler 只读评论接口，实时评论走 /live
type CommentsHandler struct {
	ContentService service.IContentService
}

func (ch *CommentsHandler) RegisterRouter(r gin.IRouter) {
	comments := r.Group("/v1/comments")
	comments.GET("/:kind/:id", context.Wrap(ch.GetComments))
}

// GetComments 按时间正序返回全部评论
func (ch *CommentsHandler) GetComments(c *gin.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if id == "" {
		return response.Validation("id is required")
	}

	items, err := ch.ContentService.Comments(c.Request.Context(), kind, id)
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"items": items, "count": len(items)})
	return nil
}
