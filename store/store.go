package store

import (
	"catalog_server/client"
	"catalog_server/structs"
	"catalog_server/structs/tables"
	"context"
	"errors"
	"sync"

	"github.com/MonkyMars/gecho"
)

// ErrStale is returned by FetchProducts when a newer fetch was issued before this one finished.
var ErrStale = errors.New("store: superseded by a newer fetch")

// ProductAPI is the part of the HTTP client the store uses.
type ProductAPI interface {
	ListProducts(ctx context.Context, search string, page, limit int) (*structs.ProductListResponse, error)
	AddProduct(ctx context.Context, payload client.ProductPayload) (*tables.Product, error)
	EditProduct(ctx context.Context, id int64, payload client.ProductPayload) (*tables.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type Store struct {
	api    ProductAPI
	logger *gecho.Logger

	mu     sync.Mutex
	state  State
	seq    uint64
	nextID int
	subs   map[int]func(State)
}

func New(api ProductAPI, logger *gecho.Logger) *Store {
	return &Store{
		api:    api,
		logger: logger,
		state:  InitialState(),
		subs:   make(map[int]func(State)),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with every new state. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies action and notifies subscribers.
func (s *Store) Dispatch(action Action) {
	s.apply(action, func() bool { return true })
}

// dispatchIfCurrent applies action only while token is the latest fetch.
func (s *Store) dispatchIfCurrent(token uint64, action Action) bool {
	return s.apply(action, func() bool { return token == s.seq })
}

// apply reduces under the lock when ok holds, then notifies outside it.
func (s *Store) apply(action Action, ok func() bool) bool {
	s.mu.Lock()
	if !ok() {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, action)
	state := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return true
}

// FetchProducts loads one page. Results of a fetch that was overtaken by a newer one are dropped.
func (s *Store) FetchProducts(ctx context.Context, search string, page, limit int) error {
	// the token and the loading state are taken in one step so an older
	// fetch can never mark a newer result as loading again
	var token uint64
	s.apply(FetchStart{}, func() bool {
		s.seq++
		token = s.seq
		return true
	})

	list, err := s.api.ListProducts(ctx, search, page, limit)
	if err != nil {
		if !s.dispatchIfCurrent(token, FetchFailure{Message: errorMessage(err, client.MsgFetchFailed)}) {
			return ErrStale
		}
		return err
	}

	if !s.dispatchIfCurrent(token, FetchSuccess{
		Products:    list.Products,
		Total:       list.Total,
		CurrentPage: list.CurrentPage,
		TotalPages:  list.TotalPages,
	}) {
		s.logger.Debug("Dropped stale product list", gecho.Field("page", page), gecho.Field("search", search))
		return ErrStale
	}
	return nil
}

func (s *Store) AddProduct(ctx context.Context, payload client.ProductPayload) (*tables.Product, error) {
	product, err := s.api.AddProduct(ctx, payload)
	if err != nil {
		s.Dispatch(MutationFailure{Message: errorMessage(err, client.MsgAddFailed)})
		return nil, err
	}
	s.Dispatch(AddSuccess{Product: *product})
	return product, nil
}

func (s *Store) EditProduct(ctx context.Context, id int64, payload client.ProductPayload) (*tables.Product, error) {
	product, err := s.api.EditProduct(ctx, id, payload)
	if err != nil {
		s.Dispatch(MutationFailure{Message: errorMessage(err, client.MsgEditFailed)})
		return nil, err
	}
	s.Dispatch(EditSuccess{Product: *product})
	return product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.Dispatch(MutationFailure{Message: errorMessage(err, client.MsgDeleteFailed)})
		return err
	}
	s.Dispatch(DeleteSuccess{ID: id})
	return nil
}

func errorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
