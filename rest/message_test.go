package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"chat-pulse/auth"
	"chat-pulse/repositories"
	"chat-pulse/runtime"
	"chat-pulse/runtime/workers"
)

func newMessageApp(t *testing.T) (*fiber.App, *runtime.Orchestrator) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	log := slog.Default()
	repository := repositories.NewMessageRepository(db, log, nil)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log), runtime.NewRegistry(),
		repository, 16, time.Second, time.Minute, time.Minute)

	app := NewApp(log)
	protected := app.Group("", RequireAuth(testSecret))
	InitRestMessage(protected, orchestrator, 64)
	return app, orchestrator
}

func authedRequest(t *testing.T, method, target, userID, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if body != "" {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	token, err := auth.GenerateToken(testSecret, userID, time.Minute)
	require.NoError(t, err)
	request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return request
}

func decodeEnvelope(t *testing.T, response *http.Response) map[string]json.RawMessage {
	t.Helper()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func Test_Create_Room_Then_Join(t *testing.T) {
	req := require.New(t)
	app, _ := newMessageApp(t)

	response, err := app.Test(authedRequest(t, http.MethodPost, "/room/create", "alice",
		`{"id":1,"name":"standup","max_participants":5}`), -1)
	req.NoError(err)
	req.Equal(http.StatusCreated, response.StatusCode)

	response, err = app.Test(authedRequest(t, http.MethodPost, "/room/join", "bob",
		`{"room_id":1}`), -1)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)

	response, err = app.Test(authedRequest(t, http.MethodPost, "/room/join", "bob",
		`{"room_id":9}`), -1)
	req.NoError(err)
	req.Equal(http.StatusNotFound, response.StatusCode)
}

func Test_Create_Group_Room_Without_Name(t *testing.T) {
	req := require.New(t)
	app, _ := newMessageApp(t)

	response, err := app.Test(authedRequest(t, http.MethodPost, "/room/create", "alice",
		`{"id":1,"max_participants":5}`), -1)
	req.NoError(err)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}

func Test_Send_Message_Is_Accepted_And_Listed(t *testing.T) {
	req := require.New(t)
	app, orchestrator := newMessageApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req.NoError(orchestrator.Start(ctx))

	response, err := app.Test(authedRequest(t, http.MethodPost, "/room/create", "alice",
		`{"id":1,"max_participants":2}`), -1)
	req.NoError(err)
	req.Equal(http.StatusCreated, response.StatusCode)

	response, err = app.Test(authedRequest(t, http.MethodPost, "/message/send", "alice",
		`{"room_id":1,"content":"hello"}`), -1)
	req.NoError(err)
	req.Equal(http.StatusAccepted, response.StatusCode)

	// Ingestion is asynchronous: poll the history until the worker lands it.
	deadline := time.Now().Add(5 * time.Second)
	for {
		response, err = app.Test(authedRequest(t, http.MethodGet, "/message/list?room=1", "alice", ""), -1)
		req.NoError(err)
		req.Equal(http.StatusOK, response.StatusCode)
		envelope := decodeEnvelope(t, response)
		var data struct {
			Messages []struct {
				Author  string `json:"author"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		req.NoError(json.Unmarshal(envelope["data"], &data))
		if len(data.Messages) == 1 {
			req.Equal("alice", data.Messages[0].Author)
			req.Equal("hello", data.Messages[0].Content)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("message never reached the store")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func Test_Send_Message_Validation(t *testing.T) {
	req := require.New(t)
	app, _ := newMessageApp(t)

	cases := map[string]string{
		"missing content":  `{"room_id":1}`,
		"missing room":     `{"content":"hi"}`,
		"content too long": `{"room_id":1,"content":"` + strings.Repeat("x", 65) + `"}`,
		"not json":         `room_id=1`,
	}
	for name, body := range cases {
		response, err := app.Test(authedRequest(t, http.MethodPost, "/message/send", "alice", body), -1)
		req.NoError(err, name)
		req.Equal(http.StatusBadRequest, response.StatusCode, name)
	}
}

func Test_Send_Message_To_Admins_Only_Room(t *testing.T) {
	req := require.New(t)
	app, _ := newMessageApp(t)

	response, err := app.Test(authedRequest(t, http.MethodPost, "/room/create", "alice",
		`{"id":1,"name":"announcements","max_participants":5,"admins_only":true}`), -1)
	req.NoError(err)
	req.Equal(http.StatusCreated, response.StatusCode)

	response, err = app.Test(authedRequest(t, http.MethodPost, "/room/join", "bob",
		`{"room_id":1}`), -1)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)

	response, err = app.Test(authedRequest(t, http.MethodPost, "/message/send", "bob",
		`{"room_id":1,"content":"hi"}`), -1)
	req.NoError(err)
	req.Equal(http.StatusForbidden, response.StatusCode)
}

func Test_List_Messages_Requires_Room(t *testing.T) {
	req := require.New(t)
	app, _ := newMessageApp(t)

	response, err := app.Test(authedRequest(t, http.MethodGet, "/message/list", "alice", ""), -1)
	req.NoError(err)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}
