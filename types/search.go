package types

// SearchReq 全局搜索参数
type SearchReq struct {
	Query string `form:"q"`
}

type SearchItem struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
	// Snippet 正文前 160 字
	Snippet string `json:"snippet"`
}

type SearchProfileItem struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// SearchResp 每类最多 3 条
type SearchResp struct {
	Posts    []SearchItem        `json:"posts"`
	Builds   []SearchItem        `json:"builds"`
	Shares   []SearchItem        `json:"shares"`
	Profiles []SearchProfileItem `json:"profiles"`
}

func (r *SearchResp) Empty() bool {
	return len(r.Posts)+len(r.Builds)+len(r.Shares)+len(r.Profiles) == 0
}
