package auth

import (
	"fmt"
	"sync"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

// Credential pairs an account with its clear-text password for gate
// construction only. The gate keeps bcrypt hashes.
type Credential struct {
	Account  domain.Account
	Password string
}

// DefaultCredentials are the two dashboard accounts.
func DefaultCredentials() []Credential {
	return []Credential{
		{
			Account:  domain.Account{ID: "1", Username: "admin", Name: "Reyhan Tahira", Role: domain.RoleAdmin},
			Password: "password",
		},
		{
			Account:  domain.Account{ID: "2", Username: "teknisi", Name: "Ahmad Fauzi", Role: domain.RoleTechnician},
			Password: "password",
		},
	}
}

type storedCredential struct {
	account domain.Account
	hash    string
}

// Gate checks staff credentials against a fixed allow-list and remembers the
// account that logged in last. There is a single session per process: the
// dashboard serves one viewer at a time, and bearer tokens are what
// authenticate individual requests.
type Gate struct {
	mu         sync.RWMutex
	byUsername map[string]storedCredential
	byID       map[string]domain.Account
	current    *domain.Account
}

// NewGate hashes every credential with the given bcrypt cost.
func NewGate(bcryptCost int, credentials ...Credential) (*Gate, error) {
	if len(credentials) == 0 {
		credentials = DefaultCredentials()
	}
	g := &Gate{
		byUsername: make(map[string]storedCredential, len(credentials)),
		byID:       make(map[string]domain.Account, len(credentials)),
	}
	for _, cred := range credentials {
		hash, err := HashPassword(cred.Password, bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", cred.Account.Username, err)
		}
		g.byUsername[cred.Account.Username] = storedCredential{account: cred.Account, hash: hash}
		g.byID[cred.Account.ID] = cred.Account
	}
	return g, nil
}

// Login verifies the pair. On success the account becomes the current
// session; on failure the session is left as it was.
func (g *Gate) Login(username, password string) (domain.Account, bool) {
	g.mu.RLock()
	cred, ok := g.byUsername[username]
	g.mu.RUnlock()
	if !ok || ComparePassword(cred.hash, password) != nil {
		return domain.Account{}, false
	}

	g.mu.Lock()
	account := cred.account
	g.current = &account
	g.mu.Unlock()
	return account, true
}

// Logout clears the current session.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()
}

// EndSession clears the current session only when it belongs to accountID.
// It reports whether a session was ended.
func (g *Gate) EndSession(accountID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil || g.current.ID != accountID {
		return false
	}
	g.current = nil
	return true
}

// Current returns the logged in account, if any.
func (g *Gate) Current() (domain.Account, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return domain.Account{}, false
	}
	return *g.current, true
}

// Account resolves an account id carried by an access token.
func (g *Gate) Account(id string) (domain.Account, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	account, ok := g.byID[id]
	return account, ok
}
