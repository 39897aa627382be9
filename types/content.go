package types

// CreateContentReq 四种内容共用一份表单，按 kind 取用对应字段
type CreateContentReq struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Content     string   `json:"content" validate:"max=20000"`
	Description string   `json:"description" validate:"max=20000"`
	Category    string   `json:"category" validate:"omitempty,max=64"`
	Source      string   `json:"source" validate:"omitempty,http_url"`
	Status      string   `json:"status" validate:"omitempty,oneof='In Progress' Completed"`
	LiveURL     string   `json:"live_url" validate:"omitempty,http_url"`
	GithubURL   string   `json:"github_url" validate:"omitempty,http_url"`
	ImageURL    string   `json:"image_url" validate:"omitempty,http_url"`
	Tags        []string `json:"tags" validate:"max=5,dive,required,max=32"`
}

// FeedReq 内容流查询参数
type FeedReq struct {
	OwnerID string `form:"owner_id"`
	Limit   int    `form:"limit,default=20"`
}

type DeleteContentResp struct {
	Deleted int64 `json:"deleted"`
}
