package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wastetrack/internal/client/iocli"
	"github.com/iudanet/wastetrack/internal/client/session"
	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/pkg/api"
)

// fakeServer имитирует backend для сквозных тестов команд
type fakeServer struct {
	mu           sync.Mutex
	messages     []models.PendingMessage
	logouts      int
	failMessages bool
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret-password" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, api.ErrorResponse{Error: "Unauthorized", Message: "invalid credentials"})
			return
		}
		writeJSON(w, api.TokenResponse{AccessToken: "access-1", RefreshToken: "refresh-1", UserID: "u-1", ExpiresIn: 900})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/permissions", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			grants := append([]string{models.PermSubprocessApprove}, models.DefaultGrants...)
			writeJSON(w, models.Permissions{Account: models.Account{UserID: "u-1", UserName: "driver01"}, Grants: grants})
		}
	})
	mux.HandleFunc("GET /api/v1/inventory", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			writeJSON(w, models.Inventory{Items: []models.InventoryItem{{PointID: "pt-1", MaterialID: "mat-paper", Unit: "kg", Quantity: 40}}})
		}
	})
	mux.HandleFunc("GET /api/v1/masterdata", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			writeJSON(w, models.MasterData{
				Materials: []models.CatalogItem{{ID: "mat-paper", Name: "Paper", Unit: "kg"}},
				Points:    []models.CatalogItem{{ID: "pt-1", Name: "Depot"}},
			})
		}
	})
	mux.HandleFunc("GET /api/v1/operation", func(w http.ResponseWriter, r *http.Request) {
		if authorized(w, r) {
			writeJSON(w, models.Operation{
				Processes:    []models.Process{{ID: "proc-1", Title: "Route 7", StatusID: models.StatusPending}},
				Subprocesses: []models.Subprocess{{ID: "sub-1", ProcessID: "proc-1", PointID: "pt-1", Kind: "pickup", StatusID: models.StatusPending}},
				Tasks: []models.Task{{
					ID: "task-1", SubprocessID: "sub-1", MaterialID: "mat-paper", Unit: "kg",
					StatusID: models.StatusPending, Quantity: 10,
				}},
			})
		}
	})
	mux.HandleFunc("POST /api/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failMessages {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, api.ErrorResponse{Error: "Internal Server Error", Message: "database is locked"})
			return
		}
		var msg models.PendingMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		f.messages = append(f.messages, msg)
		writeJSON(w, api.MessageResponse{ID: msg.ID})
	})
	return mux
}

func (f *fakeServer) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func (f *fakeServer) received() []models.PendingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PendingMessage(nil), f.messages...)
}

type harness struct {
	t      *testing.T
	fs     afero.Fs
	server *httptest.Server
	dbPath string
}

func newHarness(t *testing.T, fake *fakeServer) *harness {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	return &harness{
		t:      t,
		fs:     afero.NewMemMapFs(),
		server: server,
		dbPath: filepath.Join(t.TempDir(), "client.db"),
	}
}

// run выполняет одну команду так, как это сделал бы отдельный процесс
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	var out bytes.Buffer
	c := New(iocli.New(strings.NewReader(""), &out), h.fs)
	c.logOut = io.Discard

	cmd := c.Command("test")
	cmd.SetArgs(append([]string{"--server", h.server.URL, "--db", h.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	require.NoError(h.t, c.Close())
	return out.String(), err
}

func TestLoginEditLogout(t *testing.T) {
	fake := &fakeServer{}
	h := newHarness(t, fake)

	out, err := h.run("login", "-u", "driver01", "--password", "secret-password")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as driver01")
	assert.Contains(t, out, "Session started")

	out, err = h.run("status", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "User:       driver01")
	assert.Contains(t, out, "State:      offline")
	assert.Contains(t, out, "Pending:    0 request(s)")
	assert.Contains(t, out, "permissions")

	out, err = h.run("task", "set-qty", "task-1", "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded to server")

	received := fake.received()
	require.Len(t, received, 1)
	assert.Equal(t, models.EntityTask, received[0].Entity)
	assert.Equal(t, models.CRUDUpdate, received[0].CRUD)

	out, err = h.run("operation")
	require.NoError(t, err)
	assert.Contains(t, out, "Route 7")
	assert.Contains(t, out, "mat-paper: 12.5 kg")

	out, err = h.run("sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synchronization completed")

	// После sync снапшот снова серверный
	out, err = h.run("operation")
	require.NoError(t, err)
	assert.Contains(t, out, "mat-paper: 10 kg")

	out, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logout successful")
	assert.Equal(t, 1, fake.logoutCount())

	out, err = h.run("status", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
	assert.Contains(t, out, "State:      no_session")
}

func TestOfflineQueueAndForceQuit(t *testing.T) {
	fake := &fakeServer{}
	h := newHarness(t, fake)

	_, err := h.run("login", "-u", "driver01", "--password", "secret-password")
	require.NoError(t, err)

	out, err := h.run("--offline", "task", "add", "--transaction", "sub-1", "--material", "mat-paper", "--qty", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Offline: change queued (1 pending)")

	out, err = h.run("--offline", "transaction", "approve", "sub-1")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 pending)")

	out, err = h.run("--offline", "sync")
	require.ErrorIs(t, err, session.ErrOffline)
	assert.Contains(t, out, "Server unreachable")

	out, err = h.run("pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending Requests (2)")
	assert.Contains(t, out, "create")
	assert.Contains(t, out, "subprocess")

	_, err = h.run("start")
	require.ErrorIs(t, err, session.ErrPendingRequests)

	_, err = h.run("force-quit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 pending request(s) would be lost")

	out, err = h.run("force-quit", "--export", "/export/pending.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 pending request(s)")

	data, err := afero.ReadFile(h.fs, "/export/pending.json")
	require.NoError(t, err)
	var exported []models.PendingMessage
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, models.EntityTask, exported[0].Entity)
	assert.Equal(t, models.EntitySubprocess, exported[1].Entity)

	assert.Empty(t, fake.received())
	assert.Zero(t, fake.logoutCount())

	out, err = h.run("status", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestLogout_UploadFailureKeepsSession(t *testing.T) {
	fake := &fakeServer{}
	h := newHarness(t, fake)

	_, err := h.run("login", "-u", "driver01", "--password", "secret-password")
	require.NoError(t, err)

	_, err = h.run("--offline", "task", "delete", "task-1")
	require.NoError(t, err)

	fake.mu.Lock()
	fake.failMessages = true
	fake.mu.Unlock()

	out, err := h.run("logout")
	require.ErrorIs(t, err, session.ErrUploadFailed)
	assert.Contains(t, out, "force-quit --export FILE")

	out, err = h.run("status", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "User:       driver01")
	assert.Contains(t, out, "Pending:    1 request(s)")
}

func TestLogin_Errors(t *testing.T) {
	h := newHarness(t, &fakeServer{})

	out, err := h.run("login", "-u", "driver01", "--password", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.NotContains(t, out, "Session started")

	_, err = h.run("login", "-u", "driver01", "--password", "secret-password")
	require.NoError(t, err)

	out, err = h.run("login", "-u", "driver01", "--password", "secret-password")
	require.Error(t, err)
	assert.Contains(t, out, "Already logged in")
}

func TestGetPassword_FromEnvVar(t *testing.T) {
	c := New(&iocli.IOMock{}, afero.NewMemMapFs())
	t.Setenv(PasswordEnv, "env-password")
	c.flags.password = "flag-password"

	password, err := c.getPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "env-password", password)
}

func TestGetPassword_FromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/secrets/pw", []byte("file-password\n"), 0o600))

	c := New(&iocli.IOMock{}, fs)
	c.flags.passwordFile = "/secrets/pw"
	c.flags.password = "flag-password"

	password, err := c.getPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "file-password", password)

	require.NoError(t, afero.WriteFile(fs, "/secrets/empty", []byte("  \n"), 0o600))
	c.flags.passwordFile = "/secrets/empty"
	_, err = c.getPassword("Password: ")
	assert.Error(t, err)

	c.flags.passwordFile = "/secrets/missing"
	_, err = c.getPassword("Password: ")
	assert.Error(t, err)
}

func TestGetPassword_FromFlag(t *testing.T) {
	c := New(&iocli.IOMock{}, afero.NewMemMapFs())
	c.flags.password = "flag-password"

	password, err := c.getPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "flag-password", password)
}

func TestGetPassword_Prompt(t *testing.T) {
	mockIO := &iocli.IOMock{
		ReadPasswordFunc: func(prompt string) (string, error) {
			return "typed-password", nil
		},
	}
	c := New(mockIO, afero.NewMemMapFs())

	password, err := c.getPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "typed-password", password)
	require.Len(t, mockIO.ReadPasswordCalls(), 1)
	assert.Equal(t, "Password: ", mockIO.ReadPasswordCalls()[0].Prompt)

	mockIO.ReadPasswordFunc = func(prompt string) (string, error) { return "", nil }
	_, err = c.getPassword("Password: ")
	assert.Error(t, err)

	mockIO.ReadPasswordFunc = func(prompt string) (string, error) { return "", errors.New("no tty") }
	_, err = c.getPassword("Password: ")
	assert.Error(t, err)
}
