package types

import "time"

type UploadImageResp struct {
	ImageID     int64     `json:"image_id,string"`
	Url         string    `json:"url"`
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListImagesReq struct {
	Limit int `form:"limit"`
}
