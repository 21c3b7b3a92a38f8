package app

import (
	"math/rand/v2"

	"github.com/dkeye/Punk/internal/domain"
)

const (
	DefaultCodeLength = 6
	codeAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateRoomCode draws letter codes until taken reports a free one.
// taken must see the current key set on every call.
func GenerateRoomCode(length int, taken func(domain.RoomCode) bool) domain.RoomCode {
	if length <= 0 {
		length = DefaultCodeLength
	}
	buf := make([]byte, length)
	for {
		for i := range buf {
			buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
		}
		code := domain.RoomCode(buf)
		if !taken(code) {
			return code
		}
	}
}
