package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myblog/internal/config"
	"myblog/internal/contenttypes"
	"myblog/internal/forms"
	"myblog/internal/models"
	"myblog/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrNotificationFailed wraps a mail failure after the comment was saved.
var ErrNotificationFailed = errors.New("comment notification failed")

// NewComment is a validated submission ready to be stored.
type NewComment struct {
	Form   *forms.CommentForm
	Target contenttypes.Object
	Label  string
	User   *models.User
	IP     string
}

type CommentService struct {
	db      *gorm.DB
	cfg     *config.Config
	mailer  Mailer
	signals *Signals
	log     zerolog.Logger
}

func NewCommentService(db *gorm.DB, cfg *config.Config, mailer Mailer, signals *Signals, log zerolog.Logger) *CommentService {
	return &CommentService{
		db:      db,
		cfg:     cfg,
		mailer:  mailer,
		signals: signals,
		log:     log.With().Str("component", "comments").Logger(),
	}
}

// Save stores the comment, fires CommentPosted and mails the configured
// recipients. The comment is returned even when only the mail failed; the
// error is then ErrNotificationFailed, or nil in debug mode.
func (s *CommentService) Save(ctx context.Context, in NewComment) (*models.ThreadedComment, error) {
	comment := &models.ThreadedComment{
		ContentType: in.Label,
		ObjectPK:    in.Target.ContentID(),
		UserName:    in.Form.Name,
		UserEmail:   in.Form.Email,
		UserURL:     in.Form.URL,
		Comment:     in.Form.Comment,
		SubmitDate:  time.Now(),
		IPAddress:   in.IP,
		IsPublic:    s.cfg.Comments.DefaultApproved,
		RepliedToID: utils.OptionalUint(in.Form.RepliedTo),
	}
	if in.User != nil {
		comment.UserID = &in.User.ID
		if owner := in.Target.OwnerID(); owner != nil && *owner == in.User.ID {
			comment.ByAuthor = true
		}
	}

	// gorm 的 default:true 会吞掉 false，先建后改
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	if !s.cfg.Comments.DefaultApproved {
		if err := s.db.WithContext(ctx).Model(comment).Update("is_public", false).Error; err != nil {
			return nil, fmt.Errorf("failed to hold comment for moderation: %w", err)
		}
		comment.IsPublic = false
	}

	s.log.Info().
		Uint("comment_id", comment.ID).
		Str("content_type", in.Label).
		Uint("object_pk", comment.ObjectPK).
		Msg("Comment posted")

	if s.signals != nil {
		s.signals.Send(ctx, CommentPosted{Comment: comment, Target: in.Target, Label: in.Label, Actor: in.User})
	}

	if err := s.notify(comment, in.Target); err != nil {
		if s.cfg.Debug {
			s.log.Warn().Err(err).Uint("comment_id", comment.ID).Msg("Comment notification failed")
			return comment, nil
		}
		return comment, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return comment, nil
}

func (s *CommentService) notify(comment *models.ThreadedComment, target contenttypes.Object) error {
	recipients := s.cfg.Comments.NotificationEmails
	if len(recipients) == 0 || s.mailer == nil {
		return nil
	}

	link := s.cfg.Server.SiteURL + utils.AddCacheBypass(comment.AbsoluteURL(target.AbsoluteURL()))
	body, err := RenderEmail("comment_notification.html", map[string]any{
		"Comment": comment,
		"Object":  target.String(),
		"Link":    link,
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(recipients, "New comment for: "+target.String(), body)
}

// Thread returns the visible comments of an object, oldest first.
func (s *CommentService) Thread(ctx context.Context, label string, pk uint) ([]models.ThreadedComment, error) {
	var comments []models.ThreadedComment
	err := s.db.WithContext(ctx).
		Where("content_type = ? AND object_pk = ? AND is_public = ? AND is_removed = ?", label, pk, true, false).
		Order("submit_date ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}
