// Package catalog walks the upstream master replay list: a simple
// offset-paginated GET loop, explicitly outside the engine's scope
// (spec §1). The loop shape is grounded on the periodic-fetch-and-merge
// idiom used for provider model-catalog syncing in the gateway pack
// member, generalized from a background ticker to a one-shot walk to
// completion since the master catalog is pulled on demand (cobra's
// `catalog list`), not polled continuously.
package catalog

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

// Replay is one entry in the master catalog. Created is derived, never
// decoded directly: it is `created` if present, else `now - secondsSince`
// if present, else the wall-clock time the entry was observed.
type Replay struct {
	ID          string    `json:"-"`
	PlayerNames []string  `json:"friendlyNames,omitempty"`
	MapName     string    `json:"mapName,omitempty"`
	Created     time.Time `json:"-"`
}

type rawReplay struct {
	ID           string   `json:"_id"`
	PlayerNames  []string `json:"friendlyNames"`
	MapName      string   `json:"mapName"`
	Created      *string  `json:"created"`
	SecondsSince *float64 `json:"secondsSince"`
}

type page struct {
	Replays []rawReplay `json:"replays"`
	Total   int         `json:"total"`
}

// Walker fetches the full master catalog, optionally filtered to one
// player, via repeated offset-paginated GETs.
type Walker struct {
	client  *httpclient.Client
	timeout time.Duration
}

// New constructs a Walker against client, bounding each page fetch by
// timeout.
func New(client *httpclient.Client, timeout time.Duration) *Walker {
	return &Walker{client: client, timeout: timeout}
}

// List fetches every replay in the master catalog, optionally scoped to
// player (pass "" for no filter). Pagination stops when a page comes back
// empty or the running unique count reaches the server-reported total.
// Duplicate `_id` values across pages are dropped; the result is sorted by
// derived Created descending once, after the walk terminates, rather than
// re-sorted on every page.
func (w *Walker) List(ctx context.Context, player string) ([]Replay, error) {
	path := "find"
	if player != "" {
		path = "find/" + url.PathEscape(player)
	}

	seen := make(map[string]struct{})
	var out []Replay
	offset := 0

	for {
		res := httpclient.Get[page](ctx, w.client, withOffset(path, offset), w.timeout)
		if !res.OK {
			return nil, res.Error
		}
		if res.Data == nil || len(res.Data.Replays) == 0 {
			break
		}

		for _, raw := range res.Data.Replays {
			if _, dup := seen[raw.ID]; dup {
				continue
			}
			seen[raw.ID] = struct{}{}
			out = append(out, toReplay(raw))
		}

		offset += len(res.Data.Replays)
		if res.Data.Total > 0 && len(seen) >= res.Data.Total {
			break
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

func withOffset(path string, offset int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	return path + "?" + q.Encode()
}

func toReplay(raw rawReplay) Replay {
	r := Replay{
		ID:          raw.ID,
		PlayerNames: raw.PlayerNames,
		MapName:     raw.MapName,
	}
	switch {
	case raw.Created != nil:
		if t, err := time.Parse(time.RFC3339, *raw.Created); err == nil {
			r.Created = t
		} else {
			r.Created = time.Now()
		}
	case raw.SecondsSince != nil:
		r.Created = time.Now().Add(-time.Duration(*raw.SecondsSince) * time.Second)
	default:
		r.Created = time.Now()
	}
	return r
}
