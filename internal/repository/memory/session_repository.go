package memory

import (
	"time"

	"ai-writer-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Runs are short lived; the expiry is a safety net for jobs that never
	// reach teardown.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{cache: c}
}

func (r *SessionRepository) Save(run *store.AgentRun) {
	r.cache.Set(run.ID, run, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.AgentRun, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.AgentRun), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
