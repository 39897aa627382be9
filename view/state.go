package view

import "fmt"

// Presence 当前用户与主体之间是否存在边
type Presence uint8

const (
	// PresenceUnknown 首次读取返回之前
	PresenceUnknown Presence = iota
	PresenceAbsent
	PresencePresent
)

var presenceNames = [...]string{"unknown", "absent", "present"}

func (p Presence) String() string {
	if int(p) < len(presenceNames) {
		return presenceNames[p]
	}
	return fmt.Sprintf("Presence(%d)", uint8(p))
}

func (p Presence) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// EdgeState 挂载中的开关视图的本地状态
type EdgeState struct {
	Presence Presence `json:"presence"`
	Count    int64    `json:"count"`
	// Following 主体自己关注的人数，只有关注开关会填
	Following int64 `json:"following,omitempty"`
	// Pending 乐观更新已生效、远端写入尚未返回
	Pending bool `json:"pending"`
}

func (s EdgeState) Active() bool {
	return s.Presence == PresencePresent
}
