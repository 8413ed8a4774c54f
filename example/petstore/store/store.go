// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package store keeps the pets of the example in memory.
package store

import (
	"cmp"
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
)

// ErrPetNotFound is returned when no pet has the given id.
var ErrPetNotFound = errors.New("pet not found")

type Pet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

type InMemory struct {
	mu     sync.Mutex
	nextID int64
	pets   map[int64]Pet
	images map[int64][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{
		pets:   make(map[int64]Pet),
		images: make(map[int64][]byte),
	}
}

// Add stores a new pet and assigns its id.
func (s *InMemory) Add(ctx context.Context, name, tag string) Pet {
	_, span := otel.Tracer("store").Start(ctx, "InMemory.Add")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	pet := Pet{ID: s.nextID, Name: name, Tag: tag}
	s.pets[pet.ID] = pet
	return pet
}

func (s *InMemory) Get(ctx context.Context, id int64) (Pet, bool) {
	_, span := otel.Tracer("store").Start(ctx, "InMemory.Get")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	pet, exists := s.pets[id]
	return pet, exists
}

// Delete reports whether a pet was removed.
func (s *InMemory) Delete(ctx context.Context, id int64) bool {
	_, span := otel.Tracer("store").Start(ctx, "InMemory.Delete")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.pets[id]
	delete(s.pets, id)
	delete(s.images, id)
	return exists
}

// List returns up to limit pets ordered by id. A limit of zero returns all.
func (s *InMemory) List(ctx context.Context, limit int) []Pet {
	_, span := otel.Tracer("store").Start(ctx, "InMemory.List")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	pets := make([]Pet, 0, len(s.pets))
	for _, pet := range s.pets {
		pets = append(pets, pet)
	}
	slices.SortFunc(pets, func(a, b Pet) int {
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(pets) > limit {
		pets = pets[:limit]
	}
	return pets
}

func (s *InMemory) SetImage(ctx context.Context, id int64, r io.Reader) error {
	_, span := otel.Tracer("store").Start(ctx, "InMemory.SetImage")
	defer span.End()

	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pets[id]; !exists {
		return ErrPetNotFound
	}
	s.images[id] = b
	return nil
}

func (s *InMemory) Image(ctx context.Context, id int64) ([]byte, bool) {
	_, span := otel.Tracer("store").Start(ctx, "InMemory.Image")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.images[id]
	return b, exists
}
