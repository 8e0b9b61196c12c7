package model

import "time"

// User はストアの利用者を表す。
// 購入とはIDではなくEmailで紐付く。
type User struct {
	ID        int64
	Email     string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
}
