package utils

import (
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	NanoidSize     = 21
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}

// ObjectKey builds a random, collision-resistant storage key under prefix,
// keeping the extension of the original file name.
func ObjectKey(prefix, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join(prefix, NanoID()+ext)
}
