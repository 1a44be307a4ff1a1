package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/skincare/internal/client/client"
	"github.com/dmitrijs2005/skincare/internal/client/models"
)

// fakeClient implements client.Client for the service tests. Profiles and
// sessions are kept in memory so round trips behave like a real backend.
type fakeClient struct {
	mu sync.Mutex

	VerifyTokenRet string
	VerifyTokenErr error

	Names          map[string]string
	CheckUserErr   error
	UpdateNameErr  error
	GetSessionsErr error
	StartErr       error
	DeleteErr      error

	// GetSessionsHook runs before GetSessions answers.
	GetSessionsHook func(call int)

	LastVerifyToken string
	LastUpdateUID   string
	LastUpdateName  string
	LastStartName   string
	LastDeleteID    string

	Calls       int
	getSessions int
	nextID      int
	sessions    map[string][]models.Session
}

func newFakeClient() *fakeClient {
	return &fakeClient{Names: map[string]string{}, sessions: map[string][]models.Session{}}
}

func (f *fakeClient) VerifyToken(_ context.Context, tok string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.LastVerifyToken = tok
	return f.VerifyTokenRet, f.VerifyTokenErr
}

func (f *fakeClient) CheckUserInfo(_ context.Context, uid string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.CheckUserErr != nil {
		return models.Profile{}, f.CheckUserErr
	}
	return models.Profile{UID: uid, Name: f.Names[uid]}, nil
}

func (f *fakeClient) UpdateName(_ context.Context, uid, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.LastUpdateUID, f.LastUpdateName = uid, name
	if f.UpdateNameErr != nil {
		return f.UpdateNameErr
	}
	f.Names[uid] = name
	return nil
}

func (f *fakeClient) GetSessions(_ context.Context, uid string) ([]models.Session, error) {
	f.mu.Lock()
	f.Calls++
	f.getSessions++
	call := f.getSessions
	hook := f.GetSessionsHook
	err := f.GetSessionsErr
	out := append([]models.Session(nil), f.sessions[uid]...)
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeClient) StartSession(_ context.Context, uid, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.LastStartName = name
	if f.StartErr != nil {
		return "", f.StartErr
	}
	f.nextID++
	id := "s" + string(rune('0'+f.nextID))
	f.sessions[uid] = append(f.sessions[uid], models.Session{ID: id, Name: name})
	return id, nil
}

func (f *fakeClient) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.LastDeleteID = id
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for uid, list := range f.sessions {
		kept := list[:0]
		for _, s := range list {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		f.sessions[uid] = kept
	}
	return nil
}

func (f *fakeClient) GetSession(context.Context, string) (*models.SessionDetail, error) {
	return nil, client.ErrNotFound
}

func (f *fakeClient) UploadImage(context.Context, string, string, models.ImageRef) error {
	return client.ErrUnavailable
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

var _ client.Client = (*fakeClient)(nil)
