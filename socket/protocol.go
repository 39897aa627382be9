package socket

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"Forge/pkg/response"
)

// 客户端事件
const (
	EventToggleMount  = "toggle.mount"
	EventToggleFlip   = "toggle.flip"
	EventThreadMount  = "thread.mount"
	EventThreadSubmit = "thread.submit"
	EventThreadRemove = "thread.remove"
	EventFeedMount    = "feed.mount"
	EventUnmount      = "unmount"
	EventPing         = "ping"
)

// 服务端推送
const (
	EventToggleState = "toggle.state"
	EventThreadItems = "thread.items"
	EventThreadCount = "thread.count"
	EventFeedItems   = "feed.items"
	EventError       = "error"
	EventPong        = "pong"
)

// Inbound 客户端帧 {"event","ref","payload"}，payload 按需用 gjson 取字段
type Inbound struct {
	Event   string
	Ref     string
	Payload gjson.Result
}

func ParseInbound(data []byte) (Inbound, bool) {
	if !gjson.ValidBytes(data) {
		return Inbound{}, false
	}
	r := gjson.ParseBytes(data)
	in := Inbound{
		Event:   r.Get("event").String(),
		Ref:     r.Get("ref").String(),
		Payload: r.Get("payload"),
	}
	return in, in.Event != ""
}

// Outbound 服务端帧
type Outbound struct {
	Event   string `json:"event"`
	Ref     string `json:"ref,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type ItemsPayload[T any] struct {
	Items []T `json:"items"`
}

type CountPayload struct {
	Count int `json:"count"`
}

func errorFrame(ref string, err error) Outbound {
	msg := "internal error"
	var be *response.BizError
	if errors.As(err, &be) {
		msg = be.Msg
	}
	return Outbound{Event: EventError, Ref: ref, Payload: ErrorPayload{Code: response.CodeOf(err), Msg: msg}}
}

func encode(frame Outbound) ([]byte, error) {
	return json.Marshal(frame)
}
