package chatbot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/parleylabs/parley/pkg/backend"
	"github.com/parleylabs/parley/pkg/chat"
)

// SearchIndicator is woven into the output stream exactly once when the
// agent starts searching.
const SearchIndicator = "\n\n🔍 *Searching the web...*\n\n"

// normalizer flattens the backend's heterogeneous chunk kinds into display
// text. One normalizer serves one stream; it remembers whether the search
// indicator has been emitted.
type normalizer struct {
	logger    *zap.Logger
	errPrefix string
	indicated bool
}

func newNormalizer(logger *zap.Logger, errPrefix string) *normalizer {
	return &normalizer{logger: logger, errPrefix: errPrefix}
}

// normalize returns the display text for one chunk. A false return means
// the chunk contributes no output.
func (n *normalizer) normalize(c backend.Chunk) (string, bool) {
	switch c.Kind {
	case backend.KindModelUpdate, backend.KindMessagesUpdate:
		if c.Update == nil {
			return "", false
		}
		return updateContent(c.Update.Messages)
	case backend.KindMessage:
		return c.Message.Content, c.Message.Content != ""
	case backend.KindText:
		return c.Text, c.Text != ""
	case backend.KindToolCall:
		if n.indicated {
			return "", false
		}
		n.indicated = true
		return SearchIndicator, true
	case backend.KindError:
		return fmt.Sprintf("%s: %v", n.errPrefix, c.Err), true
	default:
		n.logger.Warn("skipping unrecognized stream chunk",
			zap.String("kind", string(c.Kind)),
			zap.Any("raw", c.Raw),
		)
		return "", false
	}
}

// updateContent joins the content of assistant messages in a state update.
// Tool traffic rides the same updates but stays out of the display stream.
func updateContent(messages []chat.Message) (string, bool) {
	var sb strings.Builder
	for _, m := range messages {
		if m.Role != chat.RoleAssistant && m.Role != "" {
			continue
		}
		sb.WriteString(m.Content)
	}
	return sb.String(), sb.Len() > 0
}
