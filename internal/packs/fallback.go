package packs

import (
	_ "embed"

	"creed-trivia/internal/domain"
	"creed-trivia/internal/normalize"
)

//go:embed fallback.json
var fallbackJSON []byte

// Fallback returns the embedded question set used when no pack yields a
// usable question. It goes through the same normalizer as real packs.
func Fallback() []domain.Question {
	raws, err := DecodePack(fallbackJSON)
	if err != nil {
		panic("packs: embedded fallback set is invalid: " + err.Error())
	}
	qs, _ := normalize.NormalizeList(raws)
	for i := range qs {
		qs[i].Pack = "fallback"
	}
	return qs
}
