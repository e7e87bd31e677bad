package messages

import (
	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/auth"
)

// Tab identifies one of the top-level panels, in status bar order.
type Tab int

const (
	TabChat Tab = iota
	TabUpload
	TabHistory
)

// View transition messages.
type (
	OpenLoginMsg  struct{}
	OpenAgentsMsg struct{}
)

// Data messages.
type (
	// SessionMsg forwards a session transition into the program loop.
	SessionMsg struct {
		Snapshot auth.Snapshot
	}

	LoginResultMsg struct {
		Username string
		Err      error
	}

	AgentChosenMsg struct {
		Agent string
	}

	AnswerMsg struct {
		Agent          string
		Question       string
		ConversationID string
		Answer         *api.Answer
		Err            error
	}

	UploadResultMsg struct {
		Agent  string
		Path   string
		Result *api.UploadResult
		Err    error
	}

	ConnectivityMsg struct {
		Offline bool
	}

	StatusMsg struct {
		Text string
	}
)
