// File path: internal/subclass/categories.go
package subclass

import "errors"

// Categories is the closed stage-2 set for "real" images. Items still sitting
// in the stage-1 real partition count as the implicit "pending" state.
var Categories = []string{
	"asiaticas",
	"bimbo",
	"castanas",
	"colores",
	"grupo",
	"lenceria",
	"morenas",
	"morochas",
	"otros",
	"pelirrojas",
	"rubias",
}

// ErrUnknownCategory rejects a category outside the fixed set.
var ErrUnknownCategory = errors.New("unknown category")

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

// KnownCategory reports whether category belongs to the fixed set.
func KnownCategory(category string) bool {
	_, ok := categorySet[category]
	return ok
}
