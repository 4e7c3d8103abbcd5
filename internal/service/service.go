package service

import (
	"context"
	"log/slog"

	"github.com/merrkry/tgsweep/internal/model"
	"github.com/merrkry/tgsweep/internal/moderation"
	"github.com/merrkry/tgsweep/internal/telegram"
)

type MessageDeleter interface {
	// Ready reports whether the deleter is configured to make requests.
	Ready() error

	// DeleteMessage makes a single delete attempt and classifies its result.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) (telegram.Outcome, error)
}

// Result describes what happened to one update.
type Result struct {
	Kind    model.UpdateKind
	Ref     model.MessageRef
	HasRef  bool
	Markers []string
	Service bool

	// Attempted is true when a delete request was issued.
	Attempted bool
	Outcome   telegram.Outcome
	Err       error
}

type SweepService struct {
	deleter  MessageDeleter
	observer Observer
	logger   *slog.Logger
}

type Option func(*SweepService)

func WithObserver(o Observer) Option {
	return func(s *SweepService) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewSweepService(deleter MessageDeleter, logger *slog.Logger, opts ...Option) *SweepService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SweepService{
		deleter:  deleter,
		observer: nopObserver{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SweepService) Ready() error {
	return s.deleter.Ready()
}

// Sweep deletes the update's message if it is a service message.
// Deletion failures are logged and reported in the Result, never returned.
func (s *SweepService) Sweep(ctx context.Context, update *model.Update) Result {
	r := s.sweep(ctx, update)
	s.observer.ObserveSweep(ctx, r)
	return r
}

func (s *SweepService) sweep(ctx context.Context, update *model.Update) Result {
	msg, kind := update.EffectiveMessage()
	r := Result{Kind: kind}

	if msg == nil {
		kinds := update.Kinds()
		if len(kinds) == 0 {
			s.logger.Warn("Unknown update type received")
		} else {
			s.logger.Info("No message found in update", "kinds", kinds)
		}
		return r
	}

	if msg.Chat == nil || msg.Chat.ID == nil {
		s.logger.Error("Message has no chat information", "kind", kind)
		return r
	}

	r.Ref, r.HasRef = msg.Ref()
	r.Markers = moderation.Markers(msg)
	r.Service = len(r.Markers) > 0

	logger := s.logger.With("kind", kind, "chat_id", *msg.Chat.ID, "chat_type", msg.Chat.Type)

	if !r.Service {
		logger.Debug("Not a service message, skipping")
		return r
	}

	if !r.HasRef {
		r.Outcome, r.Err = telegram.OutcomeRejected, telegram.ErrMissingIdentifier
		logger.Error("Cannot delete service message", "markers", r.Markers, "err", r.Err)
		return r
	}

	logger = logger.With("message_id", r.Ref.MessageID)
	logger.Info("Deleting service message", "markers", r.Markers)

	r.Attempted = true
	r.Outcome, r.Err = s.deleter.DeleteMessage(ctx, r.Ref.ChatID, r.Ref.MessageID)

	switch r.Outcome {
	case telegram.OutcomeDeleted:
		logger.Info("Service message deleted")
	case telegram.OutcomeChatGone:
		logger.Warn("Chat not found, possibly left or deleted", "err", r.Err)
	case telegram.OutcomeForbidden:
		logger.Warn("Cannot delete message, insufficient permissions or message too old", "err", r.Err)
	case telegram.OutcomeAlreadyGone:
		logger.Warn("Message already deleted or not found", "err", r.Err)
	default:
		logger.Error("Failed to delete service message", "outcome", r.Outcome, "err", r.Err)
	}

	return r
}
