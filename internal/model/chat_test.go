package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatTurn_Validate(t *testing.T) {
	assert.NoError(t, ChatTurn{Type: RoleHuman, Content: "hi"}.Validate())
	assert.NoError(t, ChatTurn{Type: RoleAssistant, Content: "hello"}.Validate())

	err := ChatTurn{Type: "system", Content: "x"}.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "system")

	assert.Error(t, ChatTurn{Type: "", Content: "x"}.Validate())
	// 角色标签大小写敏感
	assert.Error(t, ChatTurn{Type: "Human", Content: "x"}.Validate())
}

func TestValidateHistory(t *testing.T) {
	assert.NoError(t, ValidateHistory(nil))
	assert.NoError(t, ValidateHistory([]ChatTurn{
		{Type: RoleHuman, Content: "q"},
		{Type: RoleAssistant, Content: "a"},
	}))
	assert.Error(t, ValidateHistory([]ChatTurn{
		{Type: RoleHuman, Content: "q"},
		{Type: "tool", Content: "t"},
	}))
}
