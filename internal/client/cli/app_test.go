package cli

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skincare/internal/client/identity"
	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/client/pipeline"
	"github.com/dmitrijs2005/skincare/internal/client/services"
	"github.com/dmitrijs2005/skincare/internal/common"
)

func stubSecret(t *testing.T, token string, err error) {
	t.Helper()
	orig := getSecret
	getSecret = func(string, io.Writer) (string, error) { return token, err }
	t.Cleanup(func() { getSecret = orig })
}

func strPtr(s string) *string { return &s }

func TestEnter_Guest(t *testing.T) {
	ta := newTestApp(t, "")
	ta.identity.resolveErr = common.ErrUnauthenticated

	ta.enter(context.Background())

	assert.False(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Welcome, Guest")
	assert.Empty(t, ta.registry.listUID)
}

func TestEnter_SignedInListsSessions(t *testing.T) {
	ta := newTestApp(t, "")
	ta.identity.resolveRet = &models.Identity{UID: "u1", DisplayName: "Ann"}
	ta.bridge.fetchRet = services.ProfileView{UID: "u1", Name: "Ann B"}
	ta.registry.listRet = []models.Session{{ID: "s1", Name: "Morning"}, {ID: "s2"}}

	ta.enter(context.Background())

	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, "u1", ta.bridge.fetchUID)
	assert.Equal(t, "u1", ta.registry.listUID)
	out := ta.out.String()
	assert.Contains(t, out, "Welcome, Ann B")
	assert.Contains(t, out, "1. Morning (s1)")
	assert.Contains(t, out, "2. Unnamed Session (s2)")
	assert.Equal(t, "(Ann B)", ta.getStatus())
}

func TestEnter_AsksForNameWhenMissing(t *testing.T) {
	ta := newTestApp(t, "Ann\n")
	ta.identity.resolveRet = &models.Identity{UID: "u1"}
	ta.bridge.fetchRet = services.ProfileView{UID: "u1", Name: "unknown", NeedsName: true}

	ta.enter(context.Background())

	assert.Equal(t, "u1", ta.bridge.updateUID)
	assert.Equal(t, "Ann", ta.bridge.updateName)
	assert.Contains(t, ta.out.String(), "Welcome, Ann")
}

func TestLogin_Success(t *testing.T) {
	ta := newTestApp(t, "")
	stubSecret(t, "tok", nil)
	ta.signer.signInRet = &identity.Principal{UID: "u1"}
	ta.identity.resolveRet = &models.Identity{UID: "u1", DisplayName: "Ann"}

	require.NoError(t, ta.Login(context.Background()))

	assert.Equal(t, "tok", ta.signer.signInToken)
	assert.True(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Login successful")
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"exchange", &common.AuthExchangeError{Reason: "token rejected by backend"}, "Login unsuccessful: token rejected by backend"},
		{"invalid token", common.ErrUnauthenticated, "Login unsuccessful: invalid token"},
		{"other", errors.New("disk full"), "Login unsuccessful: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, "")
			stubSecret(t, "tok", nil)
			ta.signer.signInErr = tt.err

			err := ta.Login(context.Background())
			require.Error(t, err)
			assert.Contains(t, ta.out.String(), tt.want)
			assert.False(t, ta.isLoggedIn())
		})
	}
}

func TestLogin_EmptyToken(t *testing.T) {
	ta := newTestApp(t, "")
	stubSecret(t, "", nil)

	err := ta.Login(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Empty(t, ta.signer.signInToken)
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	ta := newTestApp(t, "")
	ta.uid = "u1"
	ta.bridge.name = "Ann"

	require.NoError(t, ta.Login(context.Background()))
	assert.Contains(t, ta.out.String(), "Already logged in as Ann")
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, "")
	ta.uid = "u1"
	ta.bridge.name = "Ann"
	ta.current = ta.pipe
	ta.identity.signOutErr = errors.New("provider down")

	err := ta.Logout(context.Background())
	require.Error(t, err)

	assert.True(t, ta.identity.signOutCalled)
	assert.False(t, ta.isLoggedIn())
	assert.Nil(t, ta.current)
	assert.Empty(t, ta.bridge.DisplayName())
	assert.Contains(t, ta.out.String(), "Logged out")
	assert.Equal(t, "(guest)", ta.getStatus())
}

func TestWhoAmI(t *testing.T) {
	ta := newTestApp(t, "")
	ta.uid = "u1"

	require.NoError(t, ta.WhoAmI(context.Background()))
	assert.Contains(t, ta.out.String(), "Welcome, Guest")
	assert.Contains(t, ta.out.String(), "User ID: u1")
}

func TestSetName_ValidationMessage(t *testing.T) {
	ta := newTestApp(t, "   \n")
	ta.uid = "u1"
	ta.bridge.updateErr = &common.ValidationError{Field: "name", Message: "Name cannot be empty."}

	err := ta.SetName(context.Background())
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, ta.out.String(), "Name cannot be empty.")
}

func TestSetName_BackendFailure(t *testing.T) {
	ta := newTestApp(t, "Ann\n")
	ta.uid = "u1"
	ta.bridge.updateErr = errors.New("boom")

	require.Error(t, ta.SetName(context.Background()))
	assert.Contains(t, ta.out.String(), "Failed to update your name")
}

func TestList_Failure(t *testing.T) {
	ta := newTestApp(t, "")
	ta.registry.listErr = &services.NoticeError{Notice: services.NoticeListFailed, Err: common.ErrTransport}

	require.Error(t, ta.List(context.Background()))
	assert.Contains(t, ta.out.String(), services.NoticeListFailed)
}

func TestList_Empty(t *testing.T) {
	ta := newTestApp(t, "")

	require.NoError(t, ta.List(context.Background()))
	assert.Contains(t, ta.out.String(), "No sessions yet")
}

func TestList_ShowsClassification(t *testing.T) {
	ta := newTestApp(t, "")
	ta.registry.listRet = []models.Session{{
		ID:             "s1",
		Name:           "Morning",
		Classification: &models.Classification{AcneType: "papules"},
	}}

	require.NoError(t, ta.List(context.Background()))
	assert.Contains(t, ta.out.String(), "1. Morning (s1) [papules]")
}

func TestNew_CreatesAndOpens(t *testing.T) {
	ta := newTestApp(t, "Morning\n")
	ta.uid = "u1"
	ta.registry.createRet = "s9"
	ta.pipe.snap = pipeline.Snapshot{State: pipeline.NoImage, Detail: &models.SessionDetail{Name: "Morning"}}

	require.NoError(t, ta.New(context.Background()))

	assert.Equal(t, "u1", ta.registry.createUID)
	assert.Equal(t, "Morning", ta.registry.createName)
	assert.Equal(t, "s9", ta.registry.opened)
	assert.Equal(t, "s9", ta.pipeSession)
	assert.Equal(t, "u1", ta.pipeUID)
	assert.Equal(t, 1, ta.pipe.loadCalls)
	assert.Contains(t, ta.out.String(), "No image yet")
	assert.Equal(t, "u1", ta.registry.listUID)
	assert.Equal(t, []string{"create", "list", "open"}, ta.registry.calls)
}

func TestNew_RelistFailureStillOpens(t *testing.T) {
	ta := newTestApp(t, "Morning\n")
	ta.uid = "u1"
	ta.registry.createRet = "s9"
	ta.registry.listErr = errors.New("backend down")
	ta.pipe.snap = pipeline.Snapshot{State: pipeline.NoImage, Detail: &models.SessionDetail{}}

	require.NoError(t, ta.New(context.Background()))
	assert.Equal(t, 1, ta.registry.listCalls)
	assert.Equal(t, "s9", ta.registry.opened)
}

func TestNew_EmptyName(t *testing.T) {
	ta := newTestApp(t, "\n")
	ta.registry.createErr = &common.ValidationError{Field: "session_name", Message: "Session name cannot be empty."}

	require.Error(t, ta.New(context.Background()))
	assert.Contains(t, ta.out.String(), "Session name cannot be empty.")
	assert.Nil(t, ta.current)
}

func TestOpen_ByIndexAndByID(t *testing.T) {
	ta := newTestApp(t, "2\nraw-id\n")
	ta.registry.listRet = []models.Session{{ID: "a"}, {ID: "b"}}

	require.NoError(t, ta.Open(context.Background()))
	assert.Equal(t, "b", ta.pipeSession)

	require.NoError(t, ta.Open(context.Background()))
	assert.Equal(t, "raw-id", ta.pipeSession)
}

func TestOpen_LoadFailure(t *testing.T) {
	ta := newTestApp(t, "s1\n")
	ta.pipe.loadErr = common.ErrTransport

	require.Error(t, ta.Open(context.Background()))
	assert.Contains(t, ta.out.String(), "Failed to load session details")
	assert.NotNil(t, ta.current)
}

func TestOpen_NothingChosen(t *testing.T) {
	ta := newTestApp(t, "\n")

	require.ErrorIs(t, ta.Open(context.Background()), errNoSessionChosen)
	assert.Empty(t, ta.pipeSession)
}

func TestDelete_ClosesCurrent(t *testing.T) {
	ta := newTestApp(t, "s1\n")
	ta.current = ta.pipe

	require.NoError(t, ta.Delete(context.Background()))
	assert.Equal(t, "s1", ta.registry.deleteID)
	assert.Nil(t, ta.current)
}

func TestDelete_Failure(t *testing.T) {
	ta := newTestApp(t, "s1\n")
	ta.current = ta.pipe
	ta.registry.deleteErr = common.ErrTransport

	require.Error(t, ta.Delete(context.Background()))
	assert.NotNil(t, ta.current)
	assert.Contains(t, ta.out.String(), "Failed to delete session")
}

func TestUpload_RequiresSession(t *testing.T) {
	ta := newTestApp(t, "face.jpg\n")

	require.ErrorIs(t, ta.Upload(context.Background()), errNoSessionOpen)
}

func TestUpload_Success(t *testing.T) {
	ta := newTestApp(t, "face.jpg\n")
	ta.current = ta.pipe
	ta.readImage = func(path string) (models.ImageFile, error) {
		return models.ImageFile{Name: path, ContentType: pipeline.JPEG, Data: []byte{1}}, nil
	}
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	ta.pipe.afterSubmit = &pipeline.Snapshot{
		State: pipeline.Classified,
		Detail: &models.SessionDetail{
			Name:      "Morning",
			CreatedAt: created,
			Image:     &models.ImageRef{DisplayURL: "https://img/d", DeleteURL: "https://img/x"},
			Classification: &models.Classification{
				AcneType:   "papules",
				Confidence: 0.92,
			},
		},
	}

	require.NoError(t, ta.Upload(context.Background()))

	require.NotNil(t, ta.pipe.submitted)
	assert.Equal(t, "face.jpg", ta.pipe.submitted.Name)
	out := ta.out.String()
	assert.Contains(t, out, "Session: Morning")
	assert.Contains(t, out, "Created: 2024-05-01 09:30:00")
	assert.Contains(t, out, "Image: https://img/d")
	assert.Contains(t, out, "Acne type: papules")
	assert.Contains(t, out, "Confidence: 92.00%")
	assert.Contains(t, out, "Recommendations: None")
}

func TestUpload_GuardMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.ErrInvalidFileType, "Only JPG images are allowed."},
		{common.ErrMissingIdentity, "User ID not found. Please log in again."},
		{common.ErrImageAlreadyAttached, "Only 1 image per session is allowed."},
		{common.ErrUploadInProgress, "An upload is already in progress."},
		{common.ErrNotReady, "The session is not loaded yet."},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			ta := newTestApp(t, "face.png\n")
			ta.current = ta.pipe
			ta.readImage = func(string) (models.ImageFile, error) { return models.ImageFile{}, nil }
			ta.pipe.submitErr = tt.err

			require.ErrorIs(t, ta.Upload(context.Background()), tt.err)
			assert.Contains(t, ta.out.String(), tt.want)
		})
	}
}

func TestUpload_ReadError(t *testing.T) {
	ta := newTestApp(t, "missing.jpg\n")
	ta.current = ta.pipe
	ta.readImage = func(string) (models.ImageFile, error) { return models.ImageFile{}, errors.New("no such file") }

	require.Error(t, ta.Upload(context.Background()))
	assert.Nil(t, ta.pipe.submitted)
}

func TestShow_PendingClassification(t *testing.T) {
	ta := newTestApp(t, "")
	ta.current = ta.pipe
	ta.pipe.snap = pipeline.Snapshot{
		State: pipeline.HasResult,
		Detail: &models.SessionDetail{
			Image: &models.ImageRef{DisplayURL: "https://img/d"},
		},
	}

	require.NoError(t, ta.Show(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "Session: Unnamed Session")
	assert.Contains(t, out, "Classification pending.")
}

func TestShow_Recommendations(t *testing.T) {
	ta := newTestApp(t, "")
	ta.current = ta.pipe
	ta.pipe.snap = pipeline.Snapshot{
		State: pipeline.HasResult,
		Detail: &models.SessionDetail{
			Name:  "Evening",
			Image: &models.ImageRef{DisplayURL: "https://img/d"},
			Classification: &models.Classification{
				AcneType:        "comedones",
				Confidence:      0.5,
				Recommendations: strPtr("Use a gentle cleanser"),
			},
		},
	}

	require.NoError(t, ta.Show(context.Background()))
	assert.Contains(t, ta.out.String(), "Recommendations: Use a gentle cleanser")
}

func TestRetryAndReload(t *testing.T) {
	ta := newTestApp(t, "")
	ta.current = ta.pipe

	require.NoError(t, ta.Retry(context.Background()))
	assert.Contains(t, ta.out.String(), "Ready for a new image.")

	ta.pipe.retryErr = pipeline.ErrInvalidTransition
	require.Error(t, ta.Retry(context.Background()))
	assert.Contains(t, ta.out.String(), "Nothing to retry.")

	ta.pipe.reloadErr = pipeline.ErrInvalidTransition
	require.Error(t, ta.Reload(context.Background()))
	assert.Contains(t, ta.out.String(), "already up to date")

	ta.pipe.reloadErr = common.ErrTransport
	require.Error(t, ta.Reload(context.Background()))
	assert.Contains(t, ta.out.String(), "Failed to load session details.")

	ta.pipe.reloadErr = nil
	ta.pipe.snap = pipeline.Snapshot{State: pipeline.Loading}
	require.NoError(t, ta.Reload(context.Background()))
	assert.Contains(t, ta.out.String(), "State: loading")
}

func TestGetStatus_WithSession(t *testing.T) {
	ta := newTestApp(t, "")
	ta.uid = "u1"
	ta.bridge.name = "Ann"
	ta.current = ta.pipe

	assert.Equal(t, "(Ann s1)", ta.getStatus())
}
