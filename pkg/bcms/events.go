package bcms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink.
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) UserRegistered(ctx context.Context, user *User) error { return nil }

func (n *NoopEventSink) PostCreated(ctx context.Context, post *Post) error { return nil }

func (n *NoopEventSink) PostUpdated(ctx context.Context, post *Post) error { return nil }

func (n *NoopEventSink) PostDeleted(ctx context.Context, postID uuid.UUID) error { return nil }

func (n *NoopEventSink) CategoryCreated(ctx context.Context, category *PostCategory) error {
	return nil
}

func (n *NoopEventSink) CategoryDeleted(ctx context.Context, categoryID uuid.UUID) error {
	return nil
}

// LoggingEventSink logs each event and takes no other action. Useful for
// development and debugging.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink that logs through the given
// logger, or slog.Default when nil.
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) UserRegistered(ctx context.Context, user *User) error {
	l.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return nil
}

func (l *LoggingEventSink) PostCreated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post created", "post_id", post.ID, "client_id", post.ClientID, "user_id", post.UserID)
	return nil
}

func (l *LoggingEventSink) PostUpdated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post updated", "post_id", post.ID, "client_id", post.ClientID)
	return nil
}

func (l *LoggingEventSink) PostDeleted(ctx context.Context, postID uuid.UUID) error {
	l.logger.InfoContext(ctx, "post deleted", "post_id", postID)
	return nil
}

func (l *LoggingEventSink) CategoryCreated(ctx context.Context, category *PostCategory) error {
	l.logger.InfoContext(ctx, "post category created", "category_id", category.ID, "client_id", category.ClientID)
	return nil
}

func (l *LoggingEventSink) CategoryDeleted(ctx context.Context, categoryID uuid.UUID) error {
	l.logger.InfoContext(ctx, "post category deleted", "category_id", categoryID)
	return nil
}
