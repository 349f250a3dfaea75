package models

import "time"

// User — автор комментария (поле from Graph API).
type User struct {
	ID   string `bson:"id"   json:"id"`
	Name string `bson:"name" json:"name"`
}

// Comment — нормализованный комментарий.
// Дерево двухуровневое: пост -> корневой комментарий -> ответы.
// ParentID заполнен только у ответов второго уровня.
type Comment struct {
	CommentID    string    `bson:"comment_id"          json:"comment_id"`
	PostID       string    `bson:"post_id"             json:"post_id"`
	CreatedTime  time.Time `bson:"created_time"        json:"created_time"`
	CommentCount int64     `bson:"comment_count"       json:"comment_count"`
	LikeCount    int64     `bson:"like_count"          json:"like_count"`
	Message      string    `bson:"message"             json:"message"`
	User         User      `bson:"user"                json:"user"`
	ParentID     string    `bson:"parent_id,omitempty" json:"parent_id,omitempty"`

	RunID       string    `bson:"run_id"       json:"run_id"`
	CollectedAt time.Time `bson:"collected_at" json:"collected_at"`
}

// IsReply сообщает, является ли комментарий ответом второго уровня.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}
