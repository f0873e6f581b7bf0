package session

import (
	"context"
	"sync"
)

var _ persister = &persisterMock{}

type persisterMock struct {
	LoadFunc   func(ctx context.Context) ([]byte, error)
	SaveFunc   func(ctx context.Context, data []byte) error
	DeleteFunc func(ctx context.Context) error

	calls struct {
		Load   []struct{}
		Save   []struct{ Data []byte }
		Delete []struct{}
	}
	lockLoad   sync.RWMutex
	lockSave   sync.RWMutex
	lockDelete sync.RWMutex
}

func (mock *persisterMock) Load(ctx context.Context) ([]byte, error) {
	if mock.LoadFunc == nil {
		panic("persisterMock.LoadFunc: method is nil but persister.Load was just called")
	}
	mock.lockLoad.Lock()
	mock.calls.Load = append(mock.calls.Load, struct{}{})
	mock.lockLoad.Unlock()
	return mock.LoadFunc(ctx)
}

func (mock *persisterMock) LoadCalls() []struct{} {
	mock.lockLoad.RLock()
	defer mock.lockLoad.RUnlock()
	return mock.calls.Load
}

func (mock *persisterMock) Save(ctx context.Context, data []byte) error {
	if mock.SaveFunc == nil {
		panic("persisterMock.SaveFunc: method is nil but persister.Save was just called")
	}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, struct{ Data []byte }{Data: data})
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, data)
}

func (mock *persisterMock) SaveCalls() []struct{ Data []byte } {
	mock.lockSave.RLock()
	defer mock.lockSave.RUnlock()
	return mock.calls.Save
}

func (mock *persisterMock) Delete(ctx context.Context) error {
	if mock.DeleteFunc == nil {
		panic("persisterMock.DeleteFunc: method is nil but persister.Delete was just called")
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, struct{}{})
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx)
}

func (mock *persisterMock) DeleteCalls() []struct{} {
	mock.lockDelete.RLock()
	defer mock.lockDelete.RUnlock()
	return mock.calls.Delete
}
