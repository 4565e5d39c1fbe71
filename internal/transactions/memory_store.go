package transactions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aberkane/fraudsight/internal/pagination"
)

// MemoryStore is an in-memory implementation of Store for development
// and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []*StoredTransaction
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, tx *StoredTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, q ListQuery) (*Page, error) {
	cursor, err := pagination.Decode(q.Cursor)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	s.mu.RLock()
	var matched []*StoredTransaction
	for _, tx := range s.rows {
		if q.OwnerID != "" && tx.OwnerID != q.OwnerID {
			continue
		}
		cp := *tx
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	// Newest first, ID as tiebreak, matching the postgres ordering.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if cursor != nil {
		pos := 0
		for pos < len(matched) {
			tx := matched[pos]
			if tx.CreatedAt.Before(cursor.CreatedAt) ||
				(tx.CreatedAt.Equal(cursor.CreatedAt) && tx.ID < cursor.ID) {
				break
			}
			pos++
		}
		matched = matched[pos:]
	}

	if len(matched) > limit+1 {
		matched = matched[:limit+1]
	}

	items, next, more := pagination.ComputePage(matched, limit, func(tx *StoredTransaction) (time.Time, string) {
		return tx.CreatedAt, tx.ID
	})
	if items == nil {
		items = []*StoredTransaction{}
	}
	return &Page{Transactions: items, NextCursor: next, HasMore: more}, nil
}

func (s *MemoryStore) Summarize(ctx context.Context, ownerID string) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &Summary{}
	var probTotal float64
	for _, tx := range s.rows {
		if ownerID != "" && tx.OwnerID != ownerID {
			continue
		}
		sum.Total++
		probTotal += tx.Probability
		if tx.Label == 1 {
			sum.FraudCount++
		}
	}
	if sum.Total > 0 {
		sum.FraudRate = float64(sum.FraudCount) / float64(sum.Total)
		sum.AverageProbability = probTotal / float64(sum.Total)
	}
	return sum, nil
}

func (s *MemoryStore) TopCountries(ctx context.Context, ownerID string, limit int) ([]CountryCount, error) {
	s.mu.RLock()
	counts := make(map[string]*CountryCount)
	for _, tx := range s.rows {
		if ownerID != "" && tx.OwnerID != ownerID {
			continue
		}
		country := tx.Input.TransactionCountry
		cc, ok := counts[country]
		if !ok {
			cc = &CountryCount{Country: country}
			counts[country] = cc
		}
		cc.Count++
		if tx.Label == 1 {
			cc.FraudCount++
		}
	}
	s.mu.RUnlock()

	out := make([]CountryCount, 0, len(counts))
	for _, cc := range counts {
		out = append(out, *cc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Daily(ctx context.Context, ownerID string, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = DefaultDailyWindow
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	s.mu.RLock()
	buckets := make(map[string]*DailyCount)
	for _, tx := range s.rows {
		if ownerID != "" && tx.OwnerID != ownerID {
			continue
		}
		if tx.CreatedAt.Before(since) {
			continue
		}
		day := tx.CreatedAt.UTC().Format("2006-01-02")
		dc, ok := buckets[day]
		if !ok {
			dc = &DailyCount{Day: day}
			buckets[day] = dc
		}
		dc.Count++
		if tx.Label == 1 {
			dc.FraudCount++
		}
	}
	s.mu.RUnlock()

	out := make([]DailyCount, 0, len(buckets))
	for _, dc := range buckets {
		out = append(out, *dc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}
