package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merrkry/tgsweep/internal/model"
	"github.com/merrkry/tgsweep/internal/telegram"
)

type deleteCall struct {
	chatID    int64
	messageID int
}

type fakeDeleter struct {
	outcome telegram.Outcome
	err     error
	calls   []deleteCall
}

func (f *fakeDeleter) Ready() error { return nil }

func (f *fakeDeleter) DeleteMessage(_ context.Context, chatID int64, messageID int) (telegram.Outcome, error) {
	f.calls = append(f.calls, deleteCall{chatID, messageID})
	return f.outcome, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeUpdate(t *testing.T, payload string) *model.Update {
	t.Helper()
	var u model.Update
	require.NoError(t, json.Unmarshal([]byte(payload), &u))
	return &u
}

func TestSweep_DeletesServiceMessage(t *testing.T) {
	d := &fakeDeleter{outcome: telegram.OutcomeDeleted}
	s := NewSweepService(d, testLogger())

	r := s.Sweep(context.Background(), decodeUpdate(t,
		`{"message": {"message_id": 5, "chat": {"id": 100}, "date": 123, "new_chat_members": [{"id": 7}]}}`))

	assert.Equal(t, []deleteCall{{100, 5}}, d.calls)
	assert.True(t, r.Service)
	assert.True(t, r.Attempted)
	assert.Equal(t, telegram.OutcomeDeleted, r.Outcome)
	assert.Equal(t, []string{"new_chat_members"}, r.Markers)
	assert.Equal(t, model.UpdateKindMessage, r.Kind)
}

func TestSweep_SkipsRegularMessage(t *testing.T) {
	d := &fakeDeleter{outcome: telegram.OutcomeDeleted}
	s := NewSweepService(d, testLogger())

	r := s.Sweep(context.Background(), decodeUpdate(t,
		`{"message": {"message_id": 5, "chat": {"id": 100}, "date": 123, "text": "hi", "delete_chat_photo": false}}`))

	assert.Empty(t, d.calls)
	assert.False(t, r.Service)
	assert.False(t, r.Attempted)
}

func TestSweep_ChannelPost(t *testing.T) {
	d := &fakeDeleter{outcome: telegram.OutcomeDeleted}
	s := NewSweepService(d, testLogger())

	r := s.Sweep(context.Background(), decodeUpdate(t,
		`{"channel_post": {"message_id": 9, "chat": {"id": -100200}, "date": 1, "pinned_message": {"message_id": 8}}}`))

	assert.Equal(t, []deleteCall{{-100200, 9}}, d.calls)
	assert.Equal(t, model.UpdateKindChannelPost, r.Kind)
}

func TestSweep_NoMessage(t *testing.T) {
	d := &fakeDeleter{}
	s := NewSweepService(d, testLogger())

	r := s.Sweep(context.Background(), decodeUpdate(t, `{"update_id": 1, "my_chat_member": {"chat": {"id": 1}}}`))
	assert.Empty(t, d.calls)
	assert.Equal(t, model.UpdateKindUnknown, r.Kind)

	r = s.Sweep(context.Background(), decodeUpdate(t, `{"update_id": 1}`))
	assert.Empty(t, d.calls)
	assert.False(t, r.Attempted)
}

func TestSweep_MissingChat(t *testing.T) {
	d := &fakeDeleter{}
	s := NewSweepService(d, testLogger())

	r := s.Sweep(context.Background(), decodeUpdate(t,
		`{"message": {"message_id": 5, "date": 1, "new_chat_title": "x"}}`))
	assert.Empty(t, d.calls)
	assert.False(t, r.HasRef)
	assert.False(t, r.Attempted)
}

func TestSweep_MissingMessageID(t *testing.T) {
	d := &fakeDeleter{}
	s := NewSweepService(d, testLogger())

	r := s.Sweep(context.Background(), decodeUpdate(t,
		`{"message": {"chat": {"id": 100}, "date": 1, "new_chat_title": "x"}}`))
	assert.Empty(t, d.calls)
	assert.True(t, r.Service)
	assert.Equal(t, telegram.OutcomeRejected, r.Outcome)
	assert.ErrorIs(t, r.Err, telegram.ErrMissingIdentifier)
}

func TestSweep_FailuresAreReported(t *testing.T) {
	for _, outcome := range []telegram.Outcome{
		telegram.OutcomeChatGone,
		telegram.OutcomeForbidden,
		telegram.OutcomeAlreadyGone,
		telegram.OutcomeAPIError,
		telegram.OutcomeTransportError,
	} {
		t.Run(outcome.String(), func(t *testing.T) {
			apiErr := &telegram.APIError{StatusCode: 400, ErrorCode: 400, Description: "Bad Request"}
			d := &fakeDeleter{outcome: outcome, err: apiErr}
			s := NewSweepService(d, testLogger())

			r := s.Sweep(context.Background(), decodeUpdate(t,
				`{"message": {"message_id": 5, "chat": {"id": 100}, "date": 1, "left_chat_member": {"id": 3}}}`))
			assert.Len(t, d.calls, 1)
			assert.Equal(t, outcome, r.Outcome)
			assert.Equal(t, apiErr, r.Err)
		})
	}
}

func TestSweep_Observer(t *testing.T) {
	d := &fakeDeleter{outcome: telegram.OutcomeAlreadyGone}
	var observed []Result
	s := NewSweepService(d, testLogger(), WithObserver(ObserverFunc(func(_ context.Context, r Result) {
		observed = append(observed, r)
	})))

	s.Sweep(context.Background(), decodeUpdate(t,
		`{"message": {"message_id": 5, "chat": {"id": 100}, "date": 1, "group_chat_created": true}}`))
	s.Sweep(context.Background(), decodeUpdate(t, `{"inline_query": {"id": "q"}}`))

	require.Len(t, observed, 2)
	assert.Equal(t, telegram.OutcomeAlreadyGone, observed[0].Outcome)
	assert.Equal(t, model.MessageRef{ChatID: 100, MessageID: 5}, observed[0].Ref)
	assert.False(t, observed[1].Attempted)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogObserver{Logger: logger}.ObserveSweep(context.Background(), Result{
		Kind:      model.UpdateKindMessage,
		Ref:       model.MessageRef{ChatID: 100, MessageID: 5},
		HasRef:    true,
		Markers:   []string{"pinned_message"},
		Service:   true,
		Attempted: true,
		Outcome:   telegram.OutcomeDeleted,
	})

	out := buf.String()
	assert.Contains(t, out, "Sweep trace")
	assert.Contains(t, out, "outcome=deleted")
	assert.Contains(t, out, "chat_id=100")
	assert.Contains(t, out, "pinned_message")
}

func TestLogObserver_InfoLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogObserver{Logger: logger}.ObserveSweep(context.Background(), Result{Kind: model.UpdateKindMessage})
	assert.Empty(t, buf.String())
}
