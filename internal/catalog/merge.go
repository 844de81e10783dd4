package catalog

import (
	"fmt"

	"github.com/pageza/flavr/backend/internal/models"
)

// Merge combines existing and incoming recipes, deduplicating on
// (title, source URL). When keys collide the later record wins, except that
// the id of the first record with that key is kept so references to it
// remain valid. The result lists each key once, in first-seen order.
// A new key whose id is already used by another key gets the id with a
// numeric suffix, so ids stay unique.
//
// Merge(Merge(a, b), b) equals Merge(a, b).
func Merge(existing, incoming []models.Recipe) []models.Recipe {
	out := make([]models.Recipe, 0, len(existing)+len(incoming))
	index := make(map[models.RecipeKey]int, len(existing)+len(incoming))
	ids := make(map[string]struct{}, len(existing)+len(incoming))

	claim := func(id string) string {
		if id == "" {
			return ""
		}
		if _, taken := ids[id]; taken {
			id = freeID(id, ids)
		}
		ids[id] = struct{}{}
		return id
	}

	add := func(r models.Recipe) {
		k := r.Key()
		if i, ok := index[k]; ok {
			id := out[i].ID
			out[i] = r.Clone()
			if id != "" {
				out[i].ID = id
			} else {
				out[i].ID = claim(r.ID)
			}
			return
		}
		c := r.Clone()
		c.ID = claim(c.ID)
		index[k] = len(out)
		out = append(out, c)
	}

	for _, r := range existing {
		add(r)
	}
	for _, r := range incoming {
		add(r)
	}
	return out
}

func freeID(base string, ids map[string]struct{}) string {
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s_%d", base, n)
		if _, taken := ids[id]; !taken {
			return id
		}
	}
}
