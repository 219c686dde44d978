// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package conn

import (
	"errors"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endpoints(t *testing.T, raw ...string) []*url.URL {
	us := make([]*url.URL, len(raw))
	for i, r := range raw {
		u, err := url.Parse(r)
		require.NoError(t, err)
		us[i] = u
	}
	return us
}

func TestState_URL(t *testing.T) {
	s := &State{
		Endpoints: endpoints(t, "http://a:4001", "http://b:4001", "http://c:4001"),
	}
	assert.Equal(t, "http://a:4001", s.URL().String())
	s.Endpoint = 2
	assert.Equal(t, "http://c:4001", s.URL().String())
}

func TestState_Rotate(t *testing.T) {
	t.Run("single endpoint", func(t *testing.T) {
		s := &State{
			Endpoints: endpoints(t, "http://a:4001"),
		}
		s.Rotate()
		assert.Equal(t, 0, s.Endpoint)
		s.Rotate()
		assert.Equal(t, 0, s.Endpoint)
	})
	t.Run("wraps around", func(t *testing.T) {
		s := &State{
			Endpoints: endpoints(t, "http://a:4001", "http://b:4001", "http://c:4001"),
			Endpoint:  1,
		}
		s.Rotate()
		assert.Equal(t, 2, s.Endpoint)
		assert.Equal(t, "http://c:4001", s.URL().String())
		s.Rotate()
		assert.Equal(t, 0, s.Endpoint)
		s.Rotate()
		assert.Equal(t, 1, s.Endpoint)
	})
}

func TestState_Duration(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		s := &State{}
		assert.Equal(t, time.Duration(0), s.Duration())
	})
	t.Run("started", func(t *testing.T) {
		s := &State{}
		s.Start = time.Now()
		time.Sleep(2*time.Millisecond + 50*time.Microsecond)
		d := s.Duration()
		assert.LessOrEqual(t, d, time.Now().Sub(s.Start))
		assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	})
}

func TestState_Timeout(t *testing.T) {
	t.Run("no error", func(t *testing.T) {
		s := &State{}
		assert.False(t, s.Timeout())
	})
	t.Run("generic error not timeout", func(t *testing.T) {
		s := &State{
			Err: errors.New("foo"),
		}
		assert.False(t, s.Timeout())
	})
	t.Run("direct timeout", func(t *testing.T) {
		s := &State{
			Err: syscall.ETIMEDOUT,
		}
		assert.True(t, s.Timeout())
	})
	t.Run("indirect timeout", func(t *testing.T) {
		s := &State{
			Err: &url.Error{
				Err: syscall.ETIMEDOUT,
			},
		}
		assert.True(t, s.Timeout())
	})
	t.Run("refused not timeout", func(t *testing.T) {
		s := &State{
			Err: syscall.ECONNREFUSED,
		}
		assert.False(t, s.Timeout())
	})
}

func TestState_Value(t *testing.T) {
	t.Run("new State", func(t *testing.T) {
		s := &State{}
		assert.Nil(t, s.Value("foo"))
		s.SetValue("foo", "bar")
		assert.Equal(t, "bar", s.Value("foo"))
	})
	t.Run("different keys", func(t *testing.T) {
		s := &State{}
		assert.Nil(t, s.Value("funky"))
		assert.Nil(t, s.Value(funKey{}))
		assert.Nil(t, s.Value(funkyKey{}))
		s.SetValue("funky", "foo")
		s.SetValue(funKey{}, "bar")
		s.SetValue(funkyKey{}, "baz")
		assert.Equal(t, "foo", s.Value("funky"))
		assert.Equal(t, "bar", s.Value(funKey{}))
		assert.Equal(t, "baz", s.Value(funkyKey{}))
	})
	t.Run("same key multiple times", func(t *testing.T) {
		// People shouldn't put the same key twice into the same State,
		// because it results in a proliferation of contexts in the
		// chain. But it should still work, so we test it.
		s := &State{}
		assert.Nil(t, s.Value(funKey{}))
		assert.Nil(t, s.Value(funkyKey{}))
		s.SetValue(funKey{}, "ham")
		s.SetValue(funkyKey{}, "eggs")
		assert.Equal(t, "ham", s.Value(funKey{}))
		assert.Equal(t, "eggs", s.Value(funkyKey{}))
		s.SetValue(funKey{}, "spam")
		assert.Equal(t, "spam", s.Value(funKey{}))
		assert.Equal(t, "eggs", s.Value(funkyKey{}))
	})
}

type funKey struct{}

type funkyKey struct{}
