// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := Make[int]()
	require.Empty(t, s)
	require.False(t, s.Has(3))

	s.Insert(3, 7)
	require.Len(t, s, 2)
	require.True(t, s.Has(3))
	require.True(t, s.Has(7))
	require.False(t, s.Has(5))

	// Inserting again is a no-op.
	s.Insert(3)
	require.Len(t, s, 2)

	s2 := MakeWith("a", "b", "a")
	require.Len(t, s2, 2)
	require.True(t, s2.Has("a"))
}

func TestSetSub(t *testing.T) {
	s := MakeWith(1, 2, 3, 4)
	sub := s.Sub(MakeWith(2, 4, 5))
	require.True(t, sub.Equal(MakeWith(1, 3)))

	// The receiver is untouched.
	require.Len(t, s, 4)
	require.Empty(t, s.Sub(s))
}

func TestSetEqual(t *testing.T) {
	require.True(t, Make[string]().Equal(Make[string]()))
	require.True(t, MakeWith(1, 2).Equal(MakeWith(2, 1)))
	require.False(t, MakeWith(1, 2).Equal(MakeWith(1, 3)))
	require.False(t, MakeWith(1).Equal(MakeWith(1, 2)))
}
