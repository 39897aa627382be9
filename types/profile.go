package types

import "time"

type ProfileStats struct {
	Posts     int64 `json:"posts"`
	Builds    int64 `json:"builds"`
	Shares    int64 `json:"shares"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Learned   int64 `json:"learned"`
	Inspired  int64 `json:"inspired"`
}

type ProfileResp struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	FullName  string       `json:"full_name"`
	Bio       string       `json:"bio"`
	AvatarURL string       `json:"avatar_url"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     ProfileStats `json:"stats"`
}

// UpdateProfileReq 只更新非 nil 字段
type UpdateProfileReq struct {
	Username  *string `json:"username" validate:"omitempty,username"`
	FullName  *string `json:"full_name" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,http_url"`
}
