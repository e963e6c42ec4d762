package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"myblog/internal/config"
	"myblog/internal/db"
	"myblog/internal/forms"
	"myblog/internal/models"

	"github.com/rs/zerolog"
)

type fakeMailer struct {
	to      []string
	subject string
	body    string
	sent    int
	err     error
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{SiteURL: "http://example.com"},
		Comments: config.CommentsConfig{
			DefaultApproved:    true,
			NotificationEmails: []string{"admin@example.com"},
		},
	}
}

func commentForm(name string) *forms.CommentForm {
	return &forms.CommentForm{
		ContentType: models.PostContentType,
		ObjectPK:    "1",
		Name:        name,
		Email:       "visitor@example.com",
		Comment:     "Nice post",
	}
}

func TestCommentSave(t *testing.T) {
	conn := db.OpenTest(t)
	owner, post := seedPost(t, conn)
	mailer := &fakeMailer{}
	signals := NewSignals()
	signals.Connect(NotifyOwner(conn, zerolog.Nop()))
	svc := NewCommentService(conn, testConfig(), mailer, signals, zerolog.Nop())
	ctx := context.Background()

	comment, err := svc.Save(ctx, NewComment{Form: commentForm("Ann"), Target: post, Label: models.PostContentType, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if comment.UserID != nil || comment.ByAuthor || !comment.IsPublic {
		t.Errorf("Unexpected anonymous comment %+v", comment)
	}
	if comment.IPAddress != "10.0.0.1" || comment.ObjectPK != post.ID {
		t.Errorf("Comment not stamped: %+v", comment)
	}

	if mailer.sent != 1 || mailer.subject != "New comment for: Hello" {
		t.Errorf("Unexpected mail %d %q", mailer.sent, mailer.subject)
	}
	if !strings.Contains(mailer.body, "http://example.com/blog/hello/?t=") || !strings.Contains(mailer.body, "#comment-1") {
		t.Errorf("Mail body lacks the permalink: %s", mailer.body)
	}

	var notifications []models.Notification
	conn.Find(&notifications)
	if len(notifications) != 1 || notifications[0].UserID != owner.ID || notifications[0].Type != models.NotificationTypeComment {
		t.Fatalf("Expected one owner notification, got %+v", notifications)
	}

	// The owner commenting is flagged and does not notify themselves.
	own, err := svc.Save(ctx, NewComment{Form: commentForm("Owner"), Target: post, Label: models.PostContentType, User: owner})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !own.ByAuthor || own.UserID == nil || *own.UserID != owner.ID {
		t.Errorf("Expected by-author comment, got %+v", own)
	}
	var count int64
	conn.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected no new notification, got %d", count)
	}

	thread, err := svc.Thread(ctx, models.PostContentType, post.ID)
	if err != nil || len(thread) != 2 {
		t.Errorf("Expected 2 comments in thread, got %d (%v)", len(thread), err)
	}
}

func TestCommentSaveReplyNotifiesParentAuthor(t *testing.T) {
	conn := db.OpenTest(t)
	_, post := seedPost(t, conn)
	reader := &models.User{Username: "reader", Email: "reader@example.com", Password: "x"}
	conn.Create(reader)

	signals := NewSignals()
	signals.Connect(NotifyOwner(conn, zerolog.Nop()))
	cfg := testConfig()
	cfg.Comments.NotificationEmails = nil
	svc := NewCommentService(conn, cfg, nil, signals, zerolog.Nop())
	ctx := context.Background()

	parent, err := svc.Save(ctx, NewComment{Form: commentForm("Reader"), Target: post, Label: models.PostContentType, User: reader})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	conn.Where("1 = 1").Delete(&models.Notification{})

	reply := commentForm("Ann")
	reply.RepliedTo = "1"
	if _, err := svc.Save(ctx, NewComment{Form: reply, Target: post, Label: models.PostContentType}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var n models.Notification
	if err := conn.First(&n).Error; err != nil {
		t.Fatalf("Expected a reply notification: %v", err)
	}
	if n.UserID != reader.ID || n.Type != models.NotificationTypeReply || !strings.HasSuffix(n.Link, "#comment-2") {
		t.Errorf("Unexpected notification %+v (parent %d)", n, parent.ID)
	}
}

func TestCommentSaveMailFailure(t *testing.T) {
	conn := db.OpenTest(t)
	_, post := seedPost(t, conn)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	cfg := testConfig()
	svc := NewCommentService(conn, cfg, mailer, nil, zerolog.Nop())
	ctx := context.Background()

	comment, err := svc.Save(ctx, NewComment{Form: commentForm("Ann"), Target: post, Label: models.PostContentType})
	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("Expected ErrNotificationFailed, got %v", err)
	}
	if comment == nil || comment.ID == 0 {
		t.Fatalf("Comment must be saved before the mail is attempted")
	}

	cfg.Debug = true
	if _, err := svc.Save(ctx, NewComment{Form: commentForm("Bob"), Target: post, Label: models.PostContentType}); err != nil {
		t.Errorf("Debug mode must swallow mail errors, got %v", err)
	}
}

func TestCommentSaveHeldForModeration(t *testing.T) {
	conn := db.OpenTest(t)
	_, post := seedPost(t, conn)
	cfg := testConfig()
	cfg.Comments.DefaultApproved = false
	svc := NewCommentService(conn, cfg, &fakeMailer{}, nil, zerolog.Nop())
	ctx := context.Background()

	comment, err := svc.Save(ctx, NewComment{Form: commentForm("Ann"), Target: post, Label: models.PostContentType})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if comment.IsPublic {
		t.Errorf("Returned comment must report it is held")
	}

	var stored models.ThreadedComment
	conn.First(&stored, comment.ID)
	if stored.IsPublic {
		t.Errorf("Expected comment held for moderation")
	}
	if thread, _ := svc.Thread(ctx, models.PostContentType, post.ID); len(thread) != 0 {
		t.Errorf("Held comments must not be listed, got %d", len(thread))
	}
}
