package telegram

import (
	"fmt"
	"strings"
)

// Outcome classifies the result of a single deleteMessage attempt.
type Outcome int

const (
	OutcomeDeleted Outcome = iota + 1 // start from 1 to avoid confusion with zero value
	OutcomeChatGone
	OutcomeForbidden
	OutcomeAlreadyGone
	OutcomeAPIError
	OutcomeTransportError
	// OutcomeRejected means the identifiers were missing and no request was made.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeChatGone:
		return "chat_gone"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeAlreadyGone:
		return "already_gone"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Benign reports whether the outcome needs no attention from an operator.
func (o Outcome) Benign() bool {
	switch o {
	case OutcomeDeleted, OutcomeChatGone, OutcomeForbidden, OutcomeAlreadyGone:
		return true
	}
	return false
}

// The Bot API reports these conditions only through its human-readable
// description, so matching breaks if Telegram rewords them.
var descriptionOutcomes = []struct {
	substr  string
	outcome Outcome
}{
	{"chat not found", OutcomeChatGone},
	{"message can't be deleted", OutcomeForbidden},
	{"message to delete not found", OutcomeAlreadyGone},
}

// classifyDescription maps an API error description onto an Outcome.
func classifyDescription(description string) Outcome {
	lower := strings.ToLower(description)
	for _, d := range descriptionOutcomes {
		if strings.Contains(lower, d.substr) {
			return d.outcome
		}
	}
	return OutcomeAPIError
}
