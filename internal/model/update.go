package model

import (
	"encoding/json"
	"fmt"
)

type UpdateKind int

const (
	UpdateKindUnknown UpdateKind = iota
	UpdateKindMessage
	UpdateKindEditedMessage
	UpdateKindChannelPost
	UpdateKindEditedChannelPost
	UpdateKindCallbackQuery
	UpdateKindInlineQuery
	UpdateKindChosenInlineResult
	UpdateKindShippingQuery
	UpdateKindPreCheckoutQuery
	UpdateKindPoll
	UpdateKindPollAnswer
	UpdateKindMyChatMember
	UpdateKindChatMember
	UpdateKindChatJoinRequest
)

var updateKindNames = map[UpdateKind]string{
	UpdateKindUnknown:            "unknown",
	UpdateKindMessage:            "message",
	UpdateKindEditedMessage:      "edited_message",
	UpdateKindChannelPost:        "channel_post",
	UpdateKindEditedChannelPost:  "edited_channel_post",
	UpdateKindCallbackQuery:      "callback_query",
	UpdateKindInlineQuery:        "inline_query",
	UpdateKindChosenInlineResult: "chosen_inline_result",
	UpdateKindShippingQuery:      "shipping_query",
	UpdateKindPreCheckoutQuery:   "pre_checkout_query",
	UpdateKindPoll:               "poll",
	UpdateKindPollAnswer:         "poll_answer",
	UpdateKindMyChatMember:       "my_chat_member",
	UpdateKindChatMember:         "chat_member",
	UpdateKindChatJoinRequest:    "chat_join_request",
}

func (k UpdateKind) String() string {
	if name, ok := updateKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UpdateKind(%d)", int(k))
}

// IsMessage reports whether updates of this kind carry a Message.
func (k UpdateKind) IsMessage() bool {
	switch k {
	case UpdateKindMessage, UpdateKindEditedMessage, UpdateKindChannelPost, UpdateKindEditedChannelPost:
		return true
	}
	return false
}

// MessageKinds are the update kinds whose payload is a Message, in lookup order.
var MessageKinds = []UpdateKind{
	UpdateKindMessage,
	UpdateKindEditedMessage,
	UpdateKindChannelPost,
	UpdateKindEditedChannelPost,
}

// Update is one webhook delivery from the Bot API.
// Only the message-like variants are decoded; the others are kept as raw JSON
// so that their presence can still be reported.
type Update struct {
	UpdateID int64 `json:"update_id"`

	Message           *Message `json:"message,omitempty"`
	EditedMessage     *Message `json:"edited_message,omitempty"`
	ChannelPost       *Message `json:"channel_post,omitempty"`
	EditedChannelPost *Message `json:"edited_channel_post,omitempty"`

	CallbackQuery      json.RawMessage `json:"callback_query,omitempty"`
	InlineQuery        json.RawMessage `json:"inline_query,omitempty"`
	ChosenInlineResult json.RawMessage `json:"chosen_inline_result,omitempty"`
	ShippingQuery      json.RawMessage `json:"shipping_query,omitempty"`
	PreCheckoutQuery   json.RawMessage `json:"pre_checkout_query,omitempty"`
	Poll               json.RawMessage `json:"poll,omitempty"`
	PollAnswer         json.RawMessage `json:"poll_answer,omitempty"`
	MyChatMember       json.RawMessage `json:"my_chat_member,omitempty"`
	ChatMember         json.RawMessage `json:"chat_member,omitempty"`
	ChatJoinRequest    json.RawMessage `json:"chat_join_request,omitempty"`
}

func (u *Update) message(kind UpdateKind) *Message {
	switch kind {
	case UpdateKindMessage:
		return u.Message
	case UpdateKindEditedMessage:
		return u.EditedMessage
	case UpdateKindChannelPost:
		return u.ChannelPost
	case UpdateKindEditedChannelPost:
		return u.EditedChannelPost
	}
	return nil
}

// EffectiveMessage returns the first message-like variant present.
func (u *Update) EffectiveMessage() (*Message, UpdateKind) {
	if u == nil {
		return nil, UpdateKindUnknown
	}
	for _, kind := range MessageKinds {
		if msg := u.message(kind); msg != nil {
			return msg, kind
		}
	}
	return nil, UpdateKindUnknown
}

// Kinds lists every variant present in the update.
func (u *Update) Kinds() []UpdateKind {
	if u == nil {
		return nil
	}
	kinds := make([]UpdateKind, 0, 1)
	for _, kind := range MessageKinds {
		if u.message(kind) != nil {
			kinds = append(kinds, kind)
		}
	}
	raw := []struct {
		kind UpdateKind
		data json.RawMessage
	}{
		{UpdateKindCallbackQuery, u.CallbackQuery},
		{UpdateKindInlineQuery, u.InlineQuery},
		{UpdateKindChosenInlineResult, u.ChosenInlineResult},
		{UpdateKindShippingQuery, u.ShippingQuery},
		{UpdateKindPreCheckoutQuery, u.PreCheckoutQuery},
		{UpdateKindPoll, u.Poll},
		{UpdateKindPollAnswer, u.PollAnswer},
		{UpdateKindMyChatMember, u.MyChatMember},
		{UpdateKindChatMember, u.ChatMember},
		{UpdateKindChatJoinRequest, u.ChatJoinRequest},
	}
	for _, r := range raw {
		if present(r.data) {
			kinds = append(kinds, r.kind)
		}
	}
	return kinds
}

func present(data json.RawMessage) bool {
	return len(data) > 0 && string(data) != "null"
}
