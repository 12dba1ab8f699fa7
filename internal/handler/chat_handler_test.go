package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finreport-rag-go/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	answer      string
	err         error
	calls       int
	lastHistory []model.ChatTurn
}

func (f *fakeChatService) Answer(_ context.Context, _ string, history []model.ChatTurn) (string, error) {
	f.calls++
	f.lastHistory = history
	return f.answer, f.err
}

func newChatRouter(svc *fakeChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat/", NewChatHandler(svc).Chat)
	return r
}

func postChat(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat_Success(t *testing.T) {
	svc := &fakeChatService{answer: "The revenue grew 12%."}
	w := postChat(newChatRouter(svc), `{"question":"How did revenue develop?","chat_history":[{"type":"human","content":"hi"},{"type":"assistant","content":"hello"}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "The revenue grew 12%.", resp.Answer)
	require.Len(t, svc.lastHistory, 2)
	assert.Equal(t, model.RoleHuman, svc.lastHistory[0].Type)
}

func TestChat_HistoryDefaultsToEmpty(t *testing.T) {
	svc := &fakeChatService{answer: "ok"}
	w := postChat(newChatRouter(svc), `{"question":"q"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, svc.lastHistory)
}

func TestChat_MissingQuestion(t *testing.T) {
	svc := &fakeChatService{}
	w := postChat(newChatRouter(svc), `{"chat_history":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestChat_RejectsUnknownRoleTag(t *testing.T) {
	svc := &fakeChatService{}
	w := postChat(newChatRouter(svc), `{"question":"q","chat_history":[{"type":"system","content":"x"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "system")
	assert.Equal(t, 0, svc.calls)
}

func TestChat_PipelineErrorBecomesGeneric500(t *testing.T) {
	svc := &fakeChatService{err: assert.AnError}
	w := postChat(newChatRouter(svc), `{"question":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, assert.AnError.Error())
}
