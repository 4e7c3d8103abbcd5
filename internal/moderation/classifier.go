// Package moderation decides which messages are service notices that should be swept.
package moderation

import (
	"encoding/json"

	"github.com/merrkry/tgsweep/internal/model"
)

// Rule is the truthiness policy applied to a service marker.
type Rule int

const (
	RuleList   Rule = iota + 1 // non-empty list
	RuleFlag                   // true
	RuleText                   // non-empty string
	RuleID                     // non-zero chat id
	RuleObject                 // present, not null or "", {} included
)

func (r Rule) String() string {
	switch r {
	case RuleList:
		return "list"
	case RuleFlag:
		return "flag"
	case RuleText:
		return "text"
	case RuleID:
		return "id"
	case RuleObject:
		return "object"
	default:
		return "unknown"
	}
}

// ServiceField is one row of the service marker table.
type ServiceField struct {
	Name string
	Rule Rule
	set  func(*model.Message) bool
}

// Set reports whether the field is populated on m under its rule.
func (f ServiceField) Set(m *model.Message) bool {
	if m == nil {
		return false
	}
	return f.set(m)
}

func list[T any](name string, get func(*model.Message) []T) ServiceField {
	return ServiceField{Name: name, Rule: RuleList, set: func(m *model.Message) bool { return len(get(m)) > 0 }}
}

func flag(name string, get func(*model.Message) bool) ServiceField {
	return ServiceField{Name: name, Rule: RuleFlag, set: get}
}

func text(name string, get func(*model.Message) string) ServiceField {
	return ServiceField{Name: name, Rule: RuleText, set: func(m *model.Message) bool { return get(m) != "" }}
}

func chatID(name string, get func(*model.Message) int64) ServiceField {
	return ServiceField{Name: name, Rule: RuleID, set: func(m *model.Message) bool { return get(m) != 0 }}
}

func object(name string, get func(*model.Message) *json.RawMessage) ServiceField {
	return ServiceField{Name: name, Rule: RuleObject, set: func(m *model.Message) bool {
		raw := get(m)
		if raw == nil {
			return false
		}
		switch string(*raw) {
		case "", "null", `""`:
			return false
		}
		return true
	}}
}

// ServiceFields is the complete table of recognized service markers.
var ServiceFields = []ServiceField{
	list("new_chat_members", func(m *model.Message) []model.User { return m.NewChatMembers }),
	object("left_chat_member", func(m *model.Message) *json.RawMessage { return m.LeftChatMember }),
	text("new_chat_title", func(m *model.Message) string { return m.NewChatTitle }),
	list("new_chat_photo", func(m *model.Message) []model.PhotoSize { return m.NewChatPhoto }),
	flag("delete_chat_photo", func(m *model.Message) bool { return m.DeleteChatPhoto }),
	flag("group_chat_created", func(m *model.Message) bool { return m.GroupChatCreated }),
	flag("supergroup_chat_created", func(m *model.Message) bool { return m.SupergroupChatCreated }),
	flag("channel_chat_created", func(m *model.Message) bool { return m.ChannelChatCreated }),
	object("message_auto_delete_timer_changed", func(m *model.Message) *json.RawMessage { return m.MessageAutoDeleteTimerChanged }),
	chatID("migrate_to_chat_id", func(m *model.Message) int64 { return m.MigrateToChatID }),
	chatID("migrate_from_chat_id", func(m *model.Message) int64 { return m.MigrateFromChatID }),
	object("pinned_message", func(m *model.Message) *json.RawMessage { return m.PinnedMessage }),
	object("successful_payment", func(m *model.Message) *json.RawMessage { return m.SuccessfulPayment }),
	object("users_shared", func(m *model.Message) *json.RawMessage { return m.UsersShared }),
	object("chat_shared", func(m *model.Message) *json.RawMessage { return m.ChatShared }),
	text("connected_website", func(m *model.Message) string { return m.ConnectedWebsite }),
	object("write_access_allowed", func(m *model.Message) *json.RawMessage { return m.WriteAccessAllowed }),
	object("passport_data", func(m *model.Message) *json.RawMessage { return m.PassportData }),
	object("proximity_alert_triggered", func(m *model.Message) *json.RawMessage { return m.ProximityAlertTriggered }),
	object("boost_added", func(m *model.Message) *json.RawMessage { return m.BoostAdded }),
	object("forum_topic_created", func(m *model.Message) *json.RawMessage { return m.ForumTopicCreated }),
	object("forum_topic_edited", func(m *model.Message) *json.RawMessage { return m.ForumTopicEdited }),
	object("forum_topic_closed", func(m *model.Message) *json.RawMessage { return m.ForumTopicClosed }),
	object("forum_topic_reopened", func(m *model.Message) *json.RawMessage { return m.ForumTopicReopened }),
	object("general_forum_topic_hidden", func(m *model.Message) *json.RawMessage { return m.GeneralForumTopicHidden }),
	object("general_forum_topic_unhidden", func(m *model.Message) *json.RawMessage { return m.GeneralForumTopicUnhidden }),
	object("video_chat_scheduled", func(m *model.Message) *json.RawMessage { return m.VideoChatScheduled }),
	object("video_chat_started", func(m *model.Message) *json.RawMessage { return m.VideoChatStarted }),
	object("video_chat_ended", func(m *model.Message) *json.RawMessage { return m.VideoChatEnded }),
	object("video_chat_participants_invited", func(m *model.Message) *json.RawMessage { return m.VideoChatParticipantsInvited }),
	object("web_app_data", func(m *model.Message) *json.RawMessage { return m.WebAppData }),
}

// Markers returns the names of all service markers populated on m, in table order.
func Markers(m *model.Message) []string {
	if m == nil {
		return nil
	}
	var found []string
	for _, f := range ServiceFields {
		if f.Set(m) {
			found = append(found, f.Name)
		}
	}
	return found
}

// IsServiceMessage reports whether at least one service marker is populated on m.
func IsServiceMessage(m *model.Message) bool {
	if m == nil {
		return false
	}
	for _, f := range ServiceFields {
		if f.Set(m) {
			return true
		}
	}
	return false
}
