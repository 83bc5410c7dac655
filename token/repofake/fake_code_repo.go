package tokenfakerepo

import (
	"sync"

	"github.com/jrsteele09/go-oauth-engine/token"
)

var _ token.CodeRepo = (*FakeCodeRepo)(nil)

type FakeCodeRepo struct {
	codes map[string]*token.AuthCode
	lock  sync.RWMutex
}

func NewFakeCodeRepo() token.CodeRepo {
	return &FakeCodeRepo{
		codes: make(map[string]*token.AuthCode),
	}
}

func (cr *FakeCodeRepo) Upsert(code *token.AuthCode) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	cr.codes[code.Code] = code
	return nil
}

func (cr *FakeCodeRepo) Get(code string) (*token.AuthCode, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	c, ok := cr.codes[code]
	if !ok {
		return nil, token.ErrNotFound
	}
	return c, nil
}

func (cr *FakeCodeRepo) Delete(code string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	if _, ok := cr.codes[code]; !ok {
		return token.ErrNotFound
	}
	delete(cr.codes, code)
	return nil
}
