package model

import "time"

// Todo はユーザーが所有するTODO項目を表す。
// UserIDは作成時に確定し、以降変更されない。
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
}
