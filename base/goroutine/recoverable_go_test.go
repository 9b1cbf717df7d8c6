package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverableGo(t *testing.T) {
	res := []string{}

	evt := <-RecoverableGo(
		func() {
			res = append(res, "refresh")
			panic("resolver exploded")
		},
		WithBeforeStart(func() {
			res = append(res, "before start")
		}),
		WithAfterEnded(func() {
			res = append(res, "after ended")
		}),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "after recovered")
			res = append(res, p.(string))
		}),
	)

	assert.Equal(t, []string{
		"before start",
		"refresh",
		"after ended",
		"after recovered",
		"resolver exploded",
	}, res)
	assert.NotNil(t, evt)
	assert.NotEmpty(t, evt.Stack)
}

func TestRecoverableGoWithoutPanic(t *testing.T) {
	ran := false
	evt, ok := <-RecoverableGo(func() { ran = true })
	assert.True(t, ran)
	assert.False(t, ok)
	assert.Nil(t, evt)
}
