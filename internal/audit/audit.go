package audit

import (
	"context"

	"github.com/moaahil1110/LikeLoop/pkg/log"
)

// Audit actions.
const (
	ActionCreatePost    = "post.create"
	ActionDeletePost    = "post.delete"
	ActionLikePost      = "post.like"
	ActionAddComment    = "comment.add"
	ActionDeleteComment = "comment.delete"
	ActionFollowUser    = "user.follow"
	ActionUpdateProfile = "user.update_profile"
	ActionUpdateAvatar  = "user.update_avatar"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithTarget emits an audit log naming the entity acted on.
func LogWithTarget(ctx context.Context, action string, userID string, targetID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}
