// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	count := 17
	in := make([]int, count)
	for ii := 0; ii < count; ii++ {
		in[ii] = ii
	}
	out := Map(in, func(v int) int32 { return int32(v + 1) })
	for ii := 0; ii < count; ii++ {
		assert.Equalf(t, int32(ii+1), out[ii], "element %d doesn't match", ii)
	}
}

func TestAtAndLast(t *testing.T) {
	slice := []int{0, 1, 2, 3, 4, 5}
	assert.Equal(t, 5, At(slice, -1))
	assert.Equal(t, 4, At(slice, -2))
	assert.Equal(t, 1, At(slice, 1))
	assert.Equal(t, 5, Last(slice))
	SetAt(slice, -1, 7)
	assert.Equal(t, 7, Last(slice))
	SetAt(slice, 0, -1)
	assert.Equal(t, -1, slice[0])
}

func TestCopy(t *testing.T) {
	slice := []int{0, 1, 2}
	c := Copy(slice)
	assert.Equal(t, slice, c)
	c[0] = 10
	assert.Equal(t, 0, slice[0])
	assert.Nil(t, Copy([]int(nil)))
}

func TestSliceWithValue(t *testing.T) {
	assert.Equal(t, []bool{true, true, true}, SliceWithValue(3, true))
	assert.Equal(t, []int{7, 7}, SliceWithValue(2, 7))
	assert.Empty(t, SliceWithValue(0, 1.0))
}

func TestKeys(t *testing.T) {
	m := map[string]int{"c": 2, "a": 0, "b": 1}
	keys := Keys(m)
	assert.Len(t, keys, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(m))
}
