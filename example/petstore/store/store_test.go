// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemory_Add(t *testing.T) {
	t.Run("will assign increasing ids", func(t *testing.T) {
		s := NewInMemory()

		first := s.Add(context.Background(), "rex", "dog")
		second := s.Add(context.Background(), "tom", "")

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		assert.Contains(t, s.pets, int64(2))
	})
}

func TestInMemory_Get(t *testing.T) {
	t.Run("will not return pet", func(t *testing.T) {
		t.Run("if the pet id is not found", func(t *testing.T) {
			s := NewInMemory()
			s.Add(context.Background(), "rex", "")

			_, found := s.Get(context.Background(), 2)
			assert.False(t, found)
		})
	})

	t.Run("will return pet", func(t *testing.T) {
		t.Run("if pet id is found", func(t *testing.T) {
			s := NewInMemory()
			s.Add(context.Background(), "rex", "dog")

			pet, found := s.Get(context.Background(), 1)
			assert.True(t, found)
			assert.Equal(t, Pet{ID: 1, Name: "rex", Tag: "dog"}, pet)
		})
	})
}

func TestInMemory_Delete(t *testing.T) {
	t.Run("will delete the pet and its image", func(t *testing.T) {
		s := NewInMemory()
		pet := s.Add(context.Background(), "rex", "")
		assert.NoError(t, s.SetImage(context.Background(), pet.ID, strings.NewReader("png")))

		assert.True(t, s.Delete(context.Background(), pet.ID))
		assert.NotContains(t, s.pets, pet.ID)
		assert.NotContains(t, s.images, pet.ID)
	})

	t.Run("will report nothing was deleted", func(t *testing.T) {
		t.Run("if the pet id is not found", func(t *testing.T) {
			s := NewInMemory()
			assert.False(t, s.Delete(context.Background(), 1))
		})
	})
}

func TestInMemory_List(t *testing.T) {
	s := NewInMemory()
	for _, name := range []string{"a", "b", "c"} {
		s.Add(context.Background(), name, "")
	}

	t.Run("will return every pet ordered by id", func(t *testing.T) {
		pets := s.List(context.Background(), 0)
		assert.Len(t, pets, 3)
		assert.Equal(t, "a", pets[0].Name)
		assert.Equal(t, "c", pets[2].Name)
	})

	t.Run("will honor the limit", func(t *testing.T) {
		pets := s.List(context.Background(), 2)
		assert.Len(t, pets, 2)
	})
}

func TestInMemory_SetImage(t *testing.T) {
	t.Run("will return ErrPetNotFound", func(t *testing.T) {
		t.Run("if the pet does not exist", func(t *testing.T) {
			s := NewInMemory()
			err := s.SetImage(context.Background(), 1, strings.NewReader("png"))
			assert.ErrorIs(t, err, ErrPetNotFound)
		})
	})

	t.Run("will store the image", func(t *testing.T) {
		s := NewInMemory()
		pet := s.Add(context.Background(), "rex", "")

		assert.NoError(t, s.SetImage(context.Background(), pet.ID, strings.NewReader("png")))

		b, found := s.Image(context.Background(), pet.ID)
		assert.True(t, found)
		assert.Equal(t, "png", string(b))
	})
}
