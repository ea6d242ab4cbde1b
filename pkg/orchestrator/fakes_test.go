package orchestrator

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/apodex/pkg/model"
)

// fakeService implements Locator, Fetcher and Persister and records how many
// collaborator calls are executing at any instant.
type fakeService struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	persisting  int
	maxPersist  int
	calls       int
	persisted   map[string][]byte

	delay       func(key model.Key) time.Duration
	failLocate  map[model.Key]bool
	failFetch   map[model.Key]bool
	failPersist map[string]bool
}

func newFakeService() *fakeService {
	return &fakeService{
		persisted:   map[string][]byte{},
		failLocate:  map[model.Key]bool{},
		failFetch:   map[model.Key]bool{},
		failPersist: map[string]bool{},
	}
}

func (f *fakeService) enter() {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
}

func (f *fakeService) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeService) sleep(key model.Key) {
	if f.delay != nil {
		time.Sleep(f.delay(key))
	}
}

func (f *fakeService) Locate(_ context.Context, key model.Key) (string, error) {
	f.enter()
	defer f.leave()
	f.sleep(key)
	if f.failLocate[key] {
		return "", stderrors.New("metadata unavailable")
	}
	return "https://img.example/" + string(key) + ".jpg", nil
}

func (f *fakeService) Fetch(_ context.Context, url string) ([]byte, error) {
	f.enter()
	defer f.leave()
	key := model.Key(strings.TrimSuffix(strings.TrimPrefix(url, "https://img.example/"), ".jpg"))
	f.sleep(key)
	if f.failFetch[key] {
		return nil, stderrors.New("unexpected status code: 500")
	}
	return []byte("image of " + string(key)), nil
}

func (f *fakeService) Persist(_ context.Context, name string, data []byte) error {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.persisting++
	if f.persisting > f.maxPersist {
		f.maxPersist = f.persisting
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.persisting--
		f.mu.Unlock()
	}()

	if f.delay != nil {
		time.Sleep(f.delay(""))
	}
	if f.failPersist[name] {
		return stderrors.New("disk full")
	}
	f.mu.Lock()
	f.persisted[name] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeService) orchestrator() *Orchestrator {
	return New(f, f, f, Hooks{})
}

func makeKeys(n int) []model.Key {
	keys := make([]model.Key, n)
	for i := range keys {
		keys[i] = model.Key(time.Date(2020, 3, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}
	return keys
}
