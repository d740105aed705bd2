package elastic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

var errMalformedHit = errors.New("malformed search hit")

type searchResponse struct {
	Hits struct {
		Hits []rawHit `json:"hits"`
	} `json:"hits"`
}

type rawHit struct {
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

type hitSource struct {
	Title    string          `json:"title"`
	Source   string          `json:"source"`
	Page     json.RawMessage `json:"page"`
	Content  string          `json:"content"`
	DriveURL string          `json:"drive_url"`
}

func (r searchResponse) rankList() (domain.RankList, error) {
	out := make(domain.RankList, 0, len(r.Hits.Hits))
	for i, raw := range r.Hits.Hits {
		hit, err := raw.decode()
		if err != nil {
			return nil, fmt.Errorf("hit %d: %w", i, err)
		}
		out = append(out, hit)
	}
	return out, nil
}

func (h rawHit) decode() (domain.RankedHit, error) {
	if strings.TrimSpace(h.ID) == "" {
		return domain.RankedHit{}, fmt.Errorf("%w: missing _id", errMalformedHit)
	}
	if len(h.Source) == 0 || bytes.Equal(h.Source, []byte("null")) {
		return domain.RankedHit{}, fmt.Errorf("%w: %s has no _source", errMalformedHit, h.ID)
	}

	var src hitSource
	if err := json.Unmarshal(h.Source, &src); err != nil {
		return domain.RankedHit{}, fmt.Errorf("%w: %s: %v", errMalformedHit, h.ID, err)
	}
	page, err := decodePage(src.Page)
	if err != nil {
		return domain.RankedHit{}, fmt.Errorf("%w: %s: %v", errMalformedHit, h.ID, err)
	}

	var score float64
	if h.Score != nil {
		score = *h.Score
	}
	return domain.RankedHit{
		ID:       h.ID,
		Score:    score,
		Title:    src.Title,
		SourceID: src.Source,
		Page:     page,
		Content:  src.Content,
		Link:     src.DriveURL,
	}, nil
}

// decodePage accepts the page as a JSON number or a numeric string.
func decodePage(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("page %s is not a number", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("page %q is not a number", s)
	}
	return n, nil
}
