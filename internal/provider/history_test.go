package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateHistory_KeepsAllWhenUnderWindow(t *testing.T) {
	t.Parallel()

	history := []Message{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}}
	assert.Equal(t, history, TruncateHistory(history, 5))
}

func TestTruncateHistory_KeepsOnlyLastNWhenOverWindow(t *testing.T) {
	t.Parallel()

	var history []Message
	for i := 0; i < 20; i++ {
		history = append(history, Message{Role: RoleUser, Content: "msg"})
	}
	truncated := TruncateHistory(history, 5)
	assert.Len(t, truncated, 5)
}

func TestTruncateHistory_DefaultsWindowWhenNonPositive(t *testing.T) {
	t.Parallel()

	var history []Message
	for i := 0; i < 20; i++ {
		history = append(history, Message{Role: RoleUser, Content: "msg"})
	}
	truncated := TruncateHistory(history, 0)
	assert.Len(t, truncated, defaultHistoryWindow)
}

func TestFormatHistory_RendersRoleAndContent(t *testing.T) {
	t.Parallel()

	out := FormatHistory([]Message{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}})
	assert.Equal(t, "user: hi\nassistant: hello", out)
}
