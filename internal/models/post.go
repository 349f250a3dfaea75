// Package models содержит доменные сущности коллектора: посты, комментарии и данные статей.
// Записи — плоские value-объекты, готовые к записи в хранилище документов как есть.
package models

import "time"

// Reactions — разбивка реакций поста по восьми фиксированным типам.
type Reactions struct {
	Total    int64 `bson:"total_count" json:"total_count"`
	Like     int64 `bson:"like"        json:"like"`
	Love     int64 `bson:"love"        json:"love"`
	Wow      int64 `bson:"wow"         json:"wow"`
	Haha     int64 `bson:"haha"        json:"haha"`
	Sad      int64 `bson:"sad"         json:"sad"`
	Angry    int64 `bson:"angry"       json:"angry"`
	Thankful int64 `bson:"thankful"    json:"thankful"`
}

// Post — нормализованный пост страницы.
//
// Особенности:
//   - PostID уникален в пределах одного прогона; upsert-семантики нет, каждый прогон пишет новые документы;
//   - ShareCount == nil — у поста нет блока shares (это не то же самое, что 0);
//   - поля статьи (Tags..MainCategory) заполняются только при успешном обогащении;
//   - CreatedTime/CollectedAt — в UTC.
type Post struct {
	PostID       string    `bson:"post_id"               json:"post_id"`
	ArticleURL   string    `bson:"article_url,omitempty" json:"article_url,omitempty"`
	CreatedTime  time.Time `bson:"created_time"          json:"created_time"`
	CommentCount int64     `bson:"comment_count"         json:"comment_count"`
	ShareCount   *int64    `bson:"share_count,omitempty" json:"share_count,omitempty"`
	Message      string    `bson:"message"               json:"message"`
	Reactions    Reactions `bson:"reactions"             json:"reactions"`

	Tags         []string `bson:"tags,omitempty"          json:"tags,omitempty"`
	ArticleTitle string   `bson:"article_title,omitempty" json:"article_title,omitempty"`
	Authors      []string `bson:"authors,omitempty"       json:"authors,omitempty"`
	Categories   []string `bson:"categories,omitempty"    json:"categories,omitempty"`
	MainCategory string   `bson:"main_category,omitempty" json:"main_category,omitempty"`

	RunID       string    `bson:"run_id"       json:"run_id"`
	CollectedAt time.Time `bson:"collected_at" json:"collected_at"`
}

// ApplyArticle переносит в пост поля, извлечённые со страницы статьи.
// nil — обогащения не было, пост не меняется.
func (p *Post) ApplyArticle(a *Article) {
	if a == nil {
		return
	}

	p.Tags = a.Tags
	p.ArticleTitle = a.Title
	p.Authors = a.Authors
	p.Categories = a.Categories
	p.MainCategory = a.MainCategory
}
