package events

import (
	"context"

	"github.com/moaahil1110/LikeLoop/pkg/log"
	"github.com/moaahil1110/LikeLoop/pkg/pubsub"
)

// Recorder publishes engagement events to the event bus. Publishing is
// best effort: the request that triggered the event has already
// committed, so a bus failure is logged and swallowed, never surfaced
// to the client. A Recorder around a nil Publisher is a no-op.
type Recorder struct {
	publisher pubsub.Publisher
}

// NewRecorder creates a Recorder. publisher may be nil.
func NewRecorder(publisher pubsub.Publisher) *Recorder {
	return &Recorder{publisher: publisher}
}

// PostCreated records a new post.
func (r *Recorder) PostCreated(ctx context.Context, postID, actorID string) {
	r.post(ctx, pubsub.EventPostCreated, pubsub.PostEventPayload{
		PostID:  postID,
		ActorID: actorID,
	})
}

// PostDeleted records a post removal.
func (r *Recorder) PostDeleted(ctx context.Context, postID, actorID string) {
	r.post(ctx, pubsub.EventPostDeleted, pubsub.PostEventPayload{
		PostID:  postID,
		ActorID: actorID,
	})
}

// LikeToggled records a like or unlike together with the resulting count.
func (r *Recorder) LikeToggled(ctx context.Context, postID, actorID string, liked bool, likeCount int64) {
	action := pubsub.EventPostLiked
	if !liked {
		action = pubsub.EventPostUnliked
	}
	r.post(ctx, action, pubsub.PostEventPayload{
		PostID:    postID,
		ActorID:   actorID,
		LikeCount: likeCount,
	})
}

// CommentAdded records a new comment.
func (r *Recorder) CommentAdded(ctx context.Context, postID, commentID, actorID string, commentCount int64) {
	r.post(ctx, pubsub.EventCommentAdded, pubsub.PostEventPayload{
		PostID:       postID,
		ActorID:      actorID,
		CommentID:    commentID,
		CommentCount: commentCount,
	})
}

// CommentDeleted records a comment removal.
func (r *Recorder) CommentDeleted(ctx context.Context, postID, commentID, actorID string, commentCount int64) {
	r.post(ctx, pubsub.EventCommentDeleted, pubsub.PostEventPayload{
		PostID:       postID,
		ActorID:      actorID,
		CommentID:    commentID,
		CommentCount: commentCount,
	})
}

// FollowToggled records a follow or unfollow of targetID by actorID.
func (r *Recorder) FollowToggled(ctx context.Context, targetID, actorID string, following bool) {
	if r.publisher == nil {
		return
	}

	action := pubsub.EventUserFollowed
	if !following {
		action = pubsub.EventUserUnfollowed
	}

	event, err := pubsub.NewEvent(action, targetID, pubsub.UserEventPayload{
		TargetID:  targetID,
		ActorID:   actorID,
		Following: following,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("events: failed to build user event")
		return
	}

	if err := r.publisher.Publish(ctx, pubsub.UserChannel(targetID, action), event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldTargetID, targetID).Msg("events: failed to publish user event")
	}
}

func (r *Recorder) post(ctx context.Context, action string, payload pubsub.PostEventPayload) {
	if r.publisher == nil {
		return
	}

	event, err := pubsub.NewEvent(action, payload.PostID, payload)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("events: failed to build post event")
		return
	}

	if err := r.publisher.Publish(ctx, pubsub.PostChannel(payload.PostID, action), event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldPostID, payload.PostID).Msg("events: failed to publish post event")
	}
}
