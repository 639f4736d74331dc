package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZero(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "nil", buf: nil},
		{name: "empty", buf: []byte{}},
		{name: "key sized", buf: bytes.Repeat([]byte{0xab}, KeySize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { Zero(tt.buf) })
			assert.Equal(t, make([]byte, len(tt.buf)), tt.buf)
		})
	}
}

func TestZero_SharedBacking(t *testing.T) {
	decoded := bytes.Repeat([]byte{0x01}, 2*KeySize)
	key := decoded[:KeySize]

	Zero(key)

	assert.Equal(t, make([]byte, KeySize), decoded[:KeySize])
	assert.Equal(t, bytes.Repeat([]byte{0x01}, KeySize), decoded[KeySize:])
}
