package playeridmap

import (
	"fmt"
	"mlbids/internal/normalize"
	"mlbids/lib/textutil"
	"sort"

	"github.com/antzucaro/matchr"
)

type Match struct {
	// Row is the index of the player in Data().
	Row        int
	PlayerID   string
	PlayerName string
	Similarity float64
}

// Search ranks players by the similarity of their name to `name`, the best
// `limit` matches are returned (all of them when limit <= 0).
func (m Map) Search(name string, limit int) ([]Match, error) {
	if !m.populated {
		return nil, ErrNotPopulated
	}
	query := textutil.NormalizeName(name)
	if query == "" {
		return nil, nil
	}

	nameCol := m.data.Index("PlayerName")
	idCol := m.data.Index("PlayerID")
	if nameCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("search: %w", normalize.ErrUnknownColumn)
	}

	var matches []Match
	for r, row := range m.data.Rows {
		playerName, _ := row[nameCol].(string)
		candidate := textutil.NormalizeName(playerName)
		if candidate == "" {
			continue
		}

		similarity := 1.0
		if candidate != query {
			similarity = matchr.JaroWinkler(query, candidate, false)
		}
		if similarity <= 0 {
			continue
		}

		playerID, _ := row[idCol].(string)
		matches = append(matches, Match{
			Row:        r,
			PlayerID:   playerID,
			PlayerName: playerName,
			Similarity: similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
