package service

// Списки полей запросов Graph API.
const (
	postFields = "message,created_time,id,link,shares,comments.limit(0).summary(total_count)"

	reactionFields = "reactions.type(LIKE).limit(0).summary(total_count).as(like)," +
		"reactions.type(LOVE).limit(0).summary(total_count).as(love)," +
		"reactions.type(WOW).limit(0).summary(total_count).as(wow)," +
		"reactions.type(HAHA).limit(0).summary(total_count).as(haha)," +
		"reactions.type(SAD).limit(0).summary(total_count).as(sad)," +
		"reactions.type(ANGRY).limit(0).summary(total_count).as(angry)," +
		"reactions.type(THANKFUL).limit(0).summary(total_count).as(thankful)," +
		"reactions.type(NONE).limit(0).summary(total_count).as(total)"

	commentFields = "created_time,from,like_count,message,id,comment_count"

	// replyFields дополнительно запрашивает parent: ответы второго уровня ссылаются на корневой комментарий.
	replyFields = commentFields + ",parent"
)

// Имена connection.
const (
	connPosts    = "posts"
	connComments = "comments"
)
