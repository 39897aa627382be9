package server

import (
	"Forge/handler"
)

type Handlers struct {
	Content  *handler.ContentHandler
	Comments *handler.CommentsHandler
	Search   *handler.SearchHandler
	Profile  *handler.ProfileHandler
	Upload   *handler.UploadHandler
	Live     *handler.LiveHandler
}
