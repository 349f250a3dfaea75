package graph

import "encoding/json"

// Page — одна страница ответа connection-запроса.
// Пустой Paging.Next означает конец последовательности.
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Paging Paging            `json:"paging"`
}

// Paging — блок пагинации Graph API.
type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next,omitempty"`
}

// Cursors — курсоры страницы. Для продолжения используется только Paging.Next.
type Cursors struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Summary — блок summary у connection-полей (comments.summary, reactions.summary).
type Summary struct {
	TotalCount *int64 `json:"total_count"`
}

// Connection — вложенная connection с summary, запрошенная как поле объекта.
type Connection struct {
	Summary *Summary `json:"summary"`
}

// Shares — блок shares поста; у постов без репостов отсутствует целиком.
type Shares struct {
	Count *int64 `json:"count"`
}

// Author — поле from у комментария.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParentRef — поле parent у ответа второго уровня.
type ParentRef struct {
	ID string `json:"id"`
}

// RawPost — пост в форме Graph API. Указатели различают «поле отсутствует» и нулевое значение.
type RawPost struct {
	ID          *string     `json:"id"`
	Message     *string     `json:"message"`
	CreatedTime *string     `json:"created_time"`
	Link        *string     `json:"link"`
	Shares      *Shares     `json:"shares"`
	Comments    *Connection `json:"comments"`

	// Reactions подмешивается отдельным запросом объекта поста.
	Reactions *RawReactions `json:"-"`
}

// RawReactions — ответ запроса реакций: восемь алиасов reactions.type(X).as(alias).
type RawReactions struct {
	Total    *Connection `json:"total"`
	Like     *Connection `json:"like"`
	Love     *Connection `json:"love"`
	Wow      *Connection `json:"wow"`
	Haha     *Connection `json:"haha"`
	Sad      *Connection `json:"sad"`
	Angry    *Connection `json:"angry"`
	Thankful *Connection `json:"thankful"`
}

// RawComment — комментарий в форме Graph API.
type RawComment struct {
	ID           *string    `json:"id"`
	CreatedTime  *string    `json:"created_time"`
	CommentCount *int64     `json:"comment_count"`
	LikeCount    *int64     `json:"like_count"`
	Message      *string    `json:"message"`
	From         *Author    `json:"from"`
	Parent       *ParentRef `json:"parent"`

	// PostID проставляет оркестратор: в ответе Graph API его нет.
	PostID string `json:"-"`
}
