package model

import (
	"encoding/json"
	"fmt"
)

type Chat struct {
	ID    *int64 `json:"id"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Message is the subset of a Bot API message this service looks at.
//
// Service markers use the narrowest type that keeps "absent", "empty" and
// "populated" apart: slices for lists, bools for flags, strings for text, and
// *json.RawMessage for objects whose content is irrelevant (nil when absent or null).
type Message struct {
	MessageID *int   `json:"message_id"`
	Date      int64  `json:"date"`
	Chat      *Chat  `json:"chat"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`

	NewChatMembers        []User           `json:"new_chat_members,omitempty"`
	LeftChatMember        *json.RawMessage `json:"left_chat_member,omitempty"`
	NewChatTitle          string           `json:"new_chat_title,omitempty"`
	NewChatPhoto          []PhotoSize      `json:"new_chat_photo,omitempty"`
	DeleteChatPhoto       bool             `json:"delete_chat_photo,omitempty"`
	GroupChatCreated      bool             `json:"group_chat_created,omitempty"`
	SupergroupChatCreated bool             `json:"supergroup_chat_created,omitempty"`
	ChannelChatCreated    bool             `json:"channel_chat_created,omitempty"`
	MigrateToChatID       int64            `json:"migrate_to_chat_id,omitempty"`
	MigrateFromChatID     int64            `json:"migrate_from_chat_id,omitempty"`
	PinnedMessage         *json.RawMessage `json:"pinned_message,omitempty"`
	ConnectedWebsite      string           `json:"connected_website,omitempty"`

	MessageAutoDeleteTimerChanged *json.RawMessage `json:"message_auto_delete_timer_changed,omitempty"`
	ProximityAlertTriggered       *json.RawMessage `json:"proximity_alert_triggered,omitempty"`
	ForumTopicCreated             *json.RawMessage `json:"forum_topic_created,omitempty"`
	ForumTopicEdited              *json.RawMessage `json:"forum_topic_edited,omitempty"`
	ForumTopicClosed              *json.RawMessage `json:"forum_topic_closed,omitempty"`
	ForumTopicReopened            *json.RawMessage `json:"forum_topic_reopened,omitempty"`
	GeneralForumTopicHidden       *json.RawMessage `json:"general_forum_topic_hidden,omitempty"`
	GeneralForumTopicUnhidden     *json.RawMessage `json:"general_forum_topic_unhidden,omitempty"`
	SuccessfulPayment             *json.RawMessage `json:"successful_payment,omitempty"`
	PassportData                  *json.RawMessage `json:"passport_data,omitempty"`
	WriteAccessAllowed            *json.RawMessage `json:"write_access_allowed,omitempty"`
	UsersShared                   *json.RawMessage `json:"users_shared,omitempty"`
	ChatShared                    *json.RawMessage `json:"chat_shared,omitempty"`
	BoostAdded                    *json.RawMessage `json:"boost_added,omitempty"`
	VideoChatScheduled            *json.RawMessage `json:"video_chat_scheduled,omitempty"`
	VideoChatStarted              *json.RawMessage `json:"video_chat_started,omitempty"`
	VideoChatEnded                *json.RawMessage `json:"video_chat_ended,omitempty"`
	VideoChatParticipantsInvited  *json.RawMessage `json:"video_chat_participants_invited,omitempty"`
	WebAppData                    *json.RawMessage `json:"web_app_data,omitempty"`
}

// MessageRef identifies a message for the deleteMessage call.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

func (r MessageRef) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		fmt.Fprintf(f, "%d/%d", r.ChatID, r.MessageID)
	default:
		fmt.Fprintf(f, "MessageRef{ChatID: %d, MessageID: %d}", r.ChatID, r.MessageID)
	}
}

// Ref returns the chat and message identifiers, and false if either is missing.
func (m *Message) Ref() (MessageRef, bool) {
	if m == nil || m.Chat == nil || m.Chat.ID == nil || m.MessageID == nil {
		return MessageRef{}, false
	}
	return MessageRef{ChatID: *m.Chat.ID, MessageID: *m.MessageID}, true
}
