package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"Forge/config"
	"Forge/models"
	"Forge/pkg/log"
	"Forge/pkg/response"
	"Forge/pkg/snowflake"
	"Forge/types"
)

// ObjectStore 图片落地的对象存储
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(key string) string
	Bucket() string
}

type ImageRecorder interface {
	CreateImage(ctx context.Context, image *models.Image) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Image, error)
}

const (
	defaultImageListLimit = 20
	maxImageListLimit     = 100
)

// 嗅探出的类型 -> 扩展名
var imageExt = map[string]string{
	"image/jpeg":   "jpg",
	"image/png":    "png",
	"image/gif":    "gif",
	"image/webp":   "webp",
	"image/bmp":    "bmp",
	"image/x-icon": "ico",
}

type OssService struct {
	Store  ObjectStore
	Images ImageRecorder
	Conf   *config.Upload
}

var _ IOssService = (*OssService)(nil)

type IOssService interface {
	// UploadImage 上传单张图片，返回公开访问地址
	UploadImage(ctx context.Context, userID string, header *multipart.FileHeader) (*types.UploadImageResp, error)
	// ListImages 当前用户最近上传的图片
	ListImages(ctx context.Context, userID string, limit int) ([]*types.UploadImageResp, error)
}

func (s *OssService) UploadImage(ctx context.Context, userID string, header *multipart.FileHeader) (*types.UploadImageResp, error) {
	if userID == "" {
		return nil, response.ErrAuthRequired
	}
	if header == nil {
		return nil, response.Validation("missing image")
	}

	maxSize := s.Conf.MaxBytes()
	tooLarge := response.Validation(fmt.Sprintf("image must be at most %d bytes", maxSize))

	declared := header.Header.Get("Content-Type")
	if !strings.HasPrefix(declared, "image/") {
		return nil, response.Validation("only image files can be uploaded")
	}
	// header.Size 不可信，但可做第一道拦截
	if header.Size > maxSize {
		return nil, tooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, response.Validation("unreadable image")
	}
	defer f.Close()

	// 多读一个字节判断是否超限
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, response.Validation("unreadable image")
	}
	if int64(len(data)) > maxSize {
		return nil, tooLarge
	}
	if len(data) == 0 {
		return nil, response.Validation("image is empty")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return nil, response.Validation("unsupported image type: " + contentType)
	}

	imageID := snowflake.GenID()
	objectKey := fmt.Sprintf("%s/%s/%d.%s", s.Conf.Prefix(), userID, imageID, ext)
	size := int64(len(data))

	putCtx, cancel := context.WithTimeout(ctx, s.Conf.Timeout())
	err = s.Store.Put(putCtx, objectKey, bytes.NewReader(data), size, contentType)
	cancel()
	if err != nil {
		log.L.Warn("put object failed", zap.String("key", objectKey), zap.Error(err))
		return nil, response.OperationFailed("upload image failed", err)
	}

	url := s.Store.URL(objectKey)
	img := models.Image{
		ID:          imageID,
		UserID:      userID,
		Bucket:      s.Store.Bucket(),
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        size,
		URL:         url,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Images.CreateImage(ctx, &img); err != nil {
		log.L.Error("record image failed", zap.String("key", objectKey), zap.Error(err))
		return nil, response.OperationFailed("record image failed", err)
	}

	return toUploadResp(&img), nil
}

func (s *OssService) ListImages(ctx context.Context, userID string, limit int) ([]*types.UploadImageResp, error) {
	if userID == "" {
		return nil, response.ErrAuthRequired
	}
	if limit <= 0 {
		limit = defaultImageListLimit
	}
	limit = min(limit, maxImageListLimit)

	images, err := s.Images.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, response.OperationFailed("list images failed", err)
	}
	items := make([]*types.UploadImageResp, 0, len(images))
	for _, img := range images {
		items = append(items, toUploadResp(img))
	}
	return items, nil
}

func toUploadResp(img *models.Image) *types.UploadImageResp {
	return &types.UploadImageResp{
		ImageID:     img.ID,
		Url:         img.URL,
		Key:         img.ObjectKey,
		Size:        img.Size,
		ContentType: img.ContentType,
		CreatedAt:   img.CreatedAt,
	}
}
