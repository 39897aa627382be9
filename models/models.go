package models

// All 参与迁移的全部模型
func All() []any {
	return []any{
		&Post{}, &Build{}, &Share{}, &AINews{},
		&Comment{}, &BuildComment{}, &ShareComment{}, &AINewsComment{},
		&Like{}, &SavedItem{}, &Engagement{}, &Follower{},
		&Profile{}, &Image{},
	}
}
