package services

import (
	"context"
	"fmt"
	"sync"

	"myblog/internal/contenttypes"
	"myblog/internal/models"
	"myblog/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CommentPosted is delivered after a comment has been saved.
type CommentPosted struct {
	Comment *models.ThreadedComment
	Target  contenttypes.Object
	Label   string
	Actor   *models.User
}

type CommentPostedReceiver func(ctx context.Context, ev CommentPosted)

// Signals fans a posted comment out to its receivers, synchronously and in
// connection order.
type Signals struct {
	mu        sync.RWMutex
	receivers []CommentPostedReceiver
}

func NewSignals() *Signals {
	return &Signals{}
}

func (s *Signals) Connect(r CommentPostedReceiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers = append(s.receivers, r)
}

func (s *Signals) Send(ctx context.Context, ev CommentPosted) {
	s.mu.RLock()
	receivers := append([]CommentPostedReceiver(nil), s.receivers...)
	s.mu.RUnlock()
	for _, r := range receivers {
		r(ctx, ev)
	}
}

// InvalidateObjectCache drops the cached detail page of the commented object.
func InvalidateObjectCache(_ context.Context, ev CommentPosted) {
	utils.GetCache().Delete(utils.ObjectKey(ev.Label, ev.Target.ContentID()))
}

// NotifyOwner creates an in-site notification for the owner of the
// commented object, or for the author of the comment being replied to.
func NotifyOwner(conn *gorm.DB, log zerolog.Logger) CommentPostedReceiver {
	return func(ctx context.Context, ev CommentPosted) {
		var actorID *uint
		if ev.Actor != nil {
			actorID = &ev.Actor.ID
		}
		link := ev.Comment.AbsoluteURL(ev.Target.AbsoluteURL())

		notification := models.Notification{
			ActorID:   actorID,
			CommentID: ev.Comment.ID,
			Link:      link,
		}

		if ev.Comment.RepliedToID != nil {
			var parent models.ThreadedComment
			if err := conn.WithContext(ctx).First(&parent, *ev.Comment.RepliedToID).Error; err != nil || parent.UserID == nil {
				return
			}
			notification.UserID = *parent.UserID
			notification.Type = models.NotificationTypeReply
			notification.Reason = fmt.Sprintf("%s replied to your comment on %s", ev.Comment.UserName, ev.Target)
		} else {
			owner := ev.Target.OwnerID()
			if owner == nil {
				return
			}
			notification.UserID = *owner
			notification.Type = models.NotificationTypeComment
			notification.Reason = fmt.Sprintf("%s commented on %s", ev.Comment.UserName, ev.Target)
		}

		// 不要通知自己
		if actorID != nil && *actorID == notification.UserID {
			return
		}
		if err := conn.WithContext(ctx).Create(&notification).Error; err != nil {
			log.Error().Err(err).Uint("comment_id", ev.Comment.ID).Msg("Failed to create notification")
		}
	}
}
