package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/fb-collector/internal/graph"
	"github.com/pribylovaa/fb-collector/internal/models"
)

// graphTimeLayout — формат created_time в ответах Graph API (2020-01-01T00:00:00+0000).
const graphTimeLayout = "2006-01-02T15:04:05-0700"

// Виды записей.
const (
	kindPost    = "post"
	kindComment = "comment"
)

// MalformedRecordError перечисляет все отсутствующие или некорректные поля записи.
// errors.Is(err, ErrMalformedRecord) для него истинно.
type MalformedRecordError struct {
	Kind   string
	ID     string
	Fields []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record id=%q: missing or invalid fields: %s",
		e.Kind, e.ID, strings.Join(e.Fields, ", "))
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// fieldCollector накапливает проблемные поля записи.
type fieldCollector struct {
	fields []string
}

func (c *fieldCollector) str(name string, v *string) string {
	if v == nil {
		c.fields = append(c.fields, name)
		return ""
	}

	return *v
}

func (c *fieldCollector) num(name string, v *int64) int64 {
	if v == nil {
		c.fields = append(c.fields, name)
		return 0
	}

	return *v
}

func (c *fieldCollector) ts(name string, v *string) time.Time {
	if v == nil {
		c.fields = append(c.fields, name)
		return time.Time{}
	}

	t, err := time.Parse(graphTimeLayout, *v)
	if err != nil {
		c.fields = append(c.fields, name)
		return time.Time{}
	}

	return t.UTC()
}

func (c *fieldCollector) summary(name string, conn *graph.Connection) int64 {
	if conn == nil || conn.Summary == nil {
		return c.num(name, nil)
	}

	return c.num(name, conn.Summary.TotalCount)
}

func (c *fieldCollector) err(kind, id string) error {
	if len(c.fields) == 0 {
		return nil
	}

	return &MalformedRecordError{Kind: kind, ID: id, Fields: c.fields}
}

// ToPost нормализует пост Graph API с подмешанными реакциями.
// Обязательны id, created_time, comments.summary.total_count, message и все восемь реакций;
// link и shares.count необязательны.
func ToPost(raw graph.RawPost) (models.Post, error) {
	var c fieldCollector

	p := models.Post{
		PostID:       c.str("id", raw.ID),
		CreatedTime:  c.ts("created_time", raw.CreatedTime),
		CommentCount: c.summary("comments.summary.total_count", raw.Comments),
		Message:      c.str("message", raw.Message),
	}

	if raw.Link != nil {
		p.ArticleURL = *raw.Link
	}

	if raw.Shares != nil && raw.Shares.Count != nil {
		n := *raw.Shares.Count
		p.ShareCount = &n
	}

	r := raw.Reactions
	if r == nil {
		r = &graph.RawReactions{}
	}

	p.Reactions = models.Reactions{
		Total:    c.summary("reactions.total", r.Total),
		Like:     c.summary("reactions.like", r.Like),
		Love:     c.summary("reactions.love", r.Love),
		Wow:      c.summary("reactions.wow", r.Wow),
		Haha:     c.summary("reactions.haha", r.Haha),
		Sad:      c.summary("reactions.sad", r.Sad),
		Angry:    c.summary("reactions.angry", r.Angry),
		Thankful: c.summary("reactions.thankful", r.Thankful),
	}

	if err := c.err(kindPost, p.PostID); err != nil {
		return models.Post{}, err
	}

	return p, nil
}

// ToComment нормализует комментарий Graph API.
// PostID проставляется вызывающим; parent_id заполняется только при наличии parent.
func ToComment(raw graph.RawComment) (models.Comment, error) {
	var c fieldCollector

	cm := models.Comment{
		CommentID:    c.str("id", raw.ID),
		CreatedTime:  c.ts("created_time", raw.CreatedTime),
		CommentCount: c.num("comment_count", raw.CommentCount),
		LikeCount:    c.num("like_count", raw.LikeCount),
		Message:      c.str("message", raw.Message),
	}

	if raw.PostID == "" {
		c.fields = append(c.fields, "post_id")
	}
	cm.PostID = raw.PostID

	if raw.From == nil {
		c.fields = append(c.fields, "from")
	} else {
		cm.User = models.User{ID: raw.From.ID, Name: raw.From.Name}
	}

	if raw.Parent != nil {
		cm.ParentID = raw.Parent.ID
	}

	if err := c.err(kindComment, cm.CommentID); err != nil {
		return models.Comment{}, err
	}

	return cm, nil
}
