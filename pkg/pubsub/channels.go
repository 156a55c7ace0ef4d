package pubsub

import "fmt"

// Channel naming convention: {stream}:{entity}:{id}:{action}.
// The Kafka backend maps a channel to topic "{stream}-{entity}-{action}"
// keyed by the entity id, so all events for one entity stay ordered
// within a partition.
const (
	ChannelPostEvent = "feed:post:%s:%s"
	ChannelUserEvent = "social:user:%s:%s"
)

// Actions carried on post channels.
const (
	EventPostCreated    = "created"
	EventPostDeleted    = "deleted"
	EventPostLiked      = "liked"
	EventPostUnliked    = "unliked"
	EventCommentAdded   = "commented"
	EventCommentDeleted = "uncommented"
)

// Actions carried on user channels.
const (
	EventUserFollowed   = "followed"
	EventUserUnfollowed = "unfollowed"
)

// PostChannel returns the channel name for an event on a post.
func PostChannel(postID, action string) string {
	return fmt.Sprintf(ChannelPostEvent, postID, action)
}

// UserChannel returns the channel name for an event on a user.
func UserChannel(userID, action string) string {
	return fmt.Sprintf(ChannelUserEvent, userID, action)
}

// PostEventPayload describes an engagement change on a post.
type PostEventPayload struct {
	PostID  string `json:"post_id"`
	ActorID string `json:"actor_id"`
	// CommentID is set for comment events only.
	CommentID    string `json:"comment_id,omitempty"`
	LikeCount    int64  `json:"like_count,omitempty"`
	CommentCount int64  `json:"comment_count,omitempty"`
}

// UserEventPayload describes a follow-graph change.
type UserEventPayload struct {
	TargetID  string `json:"target_id"`
	ActorID   string `json:"actor_id"`
	Following bool   `json:"following"`
}
