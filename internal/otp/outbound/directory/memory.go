package directory

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"github.com/shandysiswandi/shopauth/internal/otp/entity"
)

// Memory is a fixed user list for the mock deployment.
type Memory struct {
	mu    sync.RWMutex
	users map[string]struct{}
}

// NewMemory seeds the directory with emails. Addresses are normalized and
// blanks are dropped.
func NewMemory(emails ...string) *Memory {
	normalized := lo.Uniq(lo.Compact(lo.Map(emails, func(e string, _ int) string {
		return entity.NormalizeEmail(e)
	})))

	return &Memory{users: lo.SliceToMap(normalized, func(e string) (string, struct{}) {
		return e, struct{}{}
	})}
}

func (m *Memory) UserExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[entity.NormalizeEmail(email)]
	return ok, nil
}

// Add registers email. Used by demos that complete a registration.
func (m *Memory) Add(email string) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[email] = struct{}{}
}

// Emails returns the known addresses in unspecified order.
func (m *Memory) Emails() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Keys(m.users)
}
