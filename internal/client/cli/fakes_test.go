package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/skincare/internal/client/identity"
	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/client/pipeline"
	"github.com/dmitrijs2005/skincare/internal/client/services"
	"github.com/dmitrijs2005/skincare/internal/logging"
)

type fakeSigner struct {
	signInToken string
	signInRet   *identity.Principal
	signInErr   error

	restoreCalled bool
	restoreErr    error
}

func (f *fakeSigner) SignIn(_ context.Context, raw string) (*identity.Principal, error) {
	f.signInToken = raw
	return f.signInRet, f.signInErr
}

func (f *fakeSigner) Restore(context.Context) error {
	f.restoreCalled = true
	return f.restoreErr
}

type fakeIdentity struct {
	resolveRet *models.Identity
	resolveErr error

	signOutCalled bool
	signOutErr    error
}

func (f *fakeIdentity) Resolve(context.Context) (*models.Identity, error) {
	return f.resolveRet, f.resolveErr
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.signOutCalled = true
	return f.signOutErr
}

type fakeBridge struct {
	name string

	seeded *models.Identity

	fetchUID string
	fetchRet services.ProfileView

	updateUID  string
	updateName string
	updateErr  error
}

func (f *fakeBridge) Seed(id *models.Identity) {
	f.seeded = id
	if id != nil {
		f.name = id.DisplayName
	}
}

func (f *fakeBridge) DisplayName() string { return f.name }

func (f *fakeBridge) FetchProfile(_ context.Context, uid string) services.ProfileView {
	f.fetchUID = uid
	if f.fetchRet.Name != "" {
		f.name = f.fetchRet.Name
	}
	return f.fetchRet
}

func (f *fakeBridge) UpdateProfileName(_ context.Context, uid, name string) error {
	f.updateUID, f.updateName = uid, name
	if f.updateErr != nil {
		return f.updateErr
	}
	f.name = name
	return nil
}

type fakeRegistry struct {
	listUID   string
	listRet   []models.Session
	listErr   error
	listCalls int
	calls     []string

	createUID  string
	createName string
	createRet  string
	createErr  error

	deleteID  string
	deleteErr error

	opened string
}

func (f *fakeRegistry) List(_ context.Context, uid string) ([]models.Session, error) {
	f.listUID = uid
	f.listCalls++
	f.calls = append(f.calls, "list")
	return f.listRet, f.listErr
}

func (f *fakeRegistry) Create(_ context.Context, uid, name string) (string, error) {
	f.createUID, f.createName = uid, name
	f.calls = append(f.calls, "create")
	return f.createRet, f.createErr
}

func (f *fakeRegistry) Delete(_ context.Context, id string) error {
	f.deleteID = id
	return f.deleteErr
}

func (f *fakeRegistry) Sessions() []models.Session { return f.listRet }
func (f *fakeRegistry) Open(id string) {
	f.opened = id
	f.calls = append(f.calls, "open")
}

type fakePipeline struct {
	id   string
	snap pipeline.Snapshot

	loadErr   error
	reloadErr error
	retryErr  error
	submitErr error

	loadCalls   int
	submitted   *models.ImageFile
	afterSubmit *pipeline.Snapshot
}

func (f *fakePipeline) SessionID() string { return f.id }
func (f *fakePipeline) Load(context.Context) error {
	f.loadCalls++
	return f.loadErr
}
func (f *fakePipeline) Reload(context.Context) error { return f.reloadErr }
func (f *fakePipeline) Retry(context.Context) error  { return f.retryErr }
func (f *fakePipeline) Submit(_ context.Context, file models.ImageFile) error {
	f.submitted = &file
	if f.afterSubmit != nil {
		f.snap = *f.afterSubmit
	}
	return f.submitErr
}
func (f *fakePipeline) Snapshot() pipeline.Snapshot { return f.snap }

type testApp struct {
	*App
	signer   *fakeSigner
	identity *fakeIdentity
	bridge   *fakeBridge
	registry *fakeRegistry
	pipe     *fakePipeline
	out      *bytes.Buffer

	// pipeline factory arguments
	pipeSession string
	pipeUID     string
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	ta := &testApp{
		signer:   &fakeSigner{},
		identity: &fakeIdentity{},
		bridge:   &fakeBridge{},
		registry: &fakeRegistry{},
		pipe:     &fakePipeline{id: "s1"},
		out:      &bytes.Buffer{},
	}
	ta.App = &App{
		signer:   ta.signer,
		identity: ta.identity,
		bridge:   ta.bridge,
		registry: ta.registry,
		newPipeline: func(sessionID, uid string) sessionPipeline {
			ta.pipeSession, ta.pipeUID = sessionID, uid
			ta.pipe.id = sessionID
			return ta.pipe
		},
		log: logging.Discard(),
		in:  scannerOf(input),
		out: ta.out,
	}
	return ta
}
