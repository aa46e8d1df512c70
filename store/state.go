// Package store keeps the client-side view of the product catalog and drives it from the API.
package store

import (
	"catalog_server/structs/tables"
	"slices"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusErrored Status = "errored"
)

// State is the client's copy of one list page.
type State struct {
	Status      Status
	Products    []tables.Product
	Total       int
	CurrentPage int
	TotalPages  int
	Error       string
}

func InitialState() State {
	return State{
		Status:      StatusIdle,
		Products:    []tables.Product{},
		CurrentPage: 1,
		TotalPages:  1,
	}
}

// Action is one state transition. Exactly one of the concrete action types below.
type Action interface {
	isAction()
}

type FetchStart struct{}

type FetchSuccess struct {
	Products    []tables.Product
	Total       int
	CurrentPage int
	TotalPages  int
}

type FetchFailure struct {
	Message string
}

type AddSuccess struct {
	Product tables.Product
}

type EditSuccess struct {
	Product tables.Product
}

type DeleteSuccess struct {
	ID int64
}

// MutationFailure records a failed add, edit or delete. The list itself is left alone.
type MutationFailure struct {
	Message string
}

func (FetchStart) isAction()      {}
func (FetchSuccess) isAction()    {}
func (FetchFailure) isAction()    {}
func (AddSuccess) isAction()      {}
func (EditSuccess) isAction()     {}
func (DeleteSuccess) isAction()   {}
func (MutationFailure) isAction() {}

func (s State) clone() State {
	out := s
	out.Products = slices.Clone(s.Products)
	if out.Products == nil {
		out.Products = []tables.Product{}
	}
	return out
}

// Reduce returns the state after action. It never modifies s.
func Reduce(s State, action Action) State {
	next := s.clone()

	switch a := action.(type) {
	case FetchStart:
		next.Status = StatusLoading
		next.Error = ""

	case FetchSuccess:
		next.Status = StatusLoaded
		next.Products = slices.Clone(a.Products)
		if next.Products == nil {
			next.Products = []tables.Product{}
		}
		next.Total = a.Total
		next.CurrentPage = a.CurrentPage
		next.TotalPages = a.TotalPages

	case FetchFailure:
		// previous products stay visible
		next.Status = StatusErrored
		next.Error = a.Message

	case AddSuccess:
		next.Products = append(next.Products, a.Product)

	case EditSuccess:
		if i := slices.IndexFunc(next.Products, func(p tables.Product) bool { return p.ID == a.Product.ID }); i >= 0 {
			next.Products[i] = a.Product
		}

	case DeleteSuccess:
		next.Products = slices.DeleteFunc(next.Products, func(p tables.Product) bool { return p.ID == a.ID })

	case MutationFailure:
		next.Error = a.Message
	}

	return next
}
