package model

import "time"

// DefaultTrackYear はyear未指定で登録されたトラックの年。
const DefaultTrackYear = 2024

// Track は音楽トラックを表す。価格は整数（ルーブル）で保持する。
type Track struct {
	ID             int64
	Title          string
	Artist         string
	Duration       string
	Cover          string
	AudioURL       string
	Genre          string
	Year           *int
	Price          int
	IsAdultContent bool
	CreatedAt      time.Time
}
