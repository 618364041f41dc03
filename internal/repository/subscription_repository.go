package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultSubscriptionKey is the Redis set holding subscribed service codes.
const DefaultSubscriptionKey = "service-tracker:subscriptions"

// SubscriptionRepository stores the set of service codes a viewer wants
// status notifications for. Adding a present code or removing an absent one
// is a no-op.
type SubscriptionRepository interface {
	Add(ctx context.Context, code string) error
	Remove(ctx context.Context, code string) error
	Contains(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

type memorySubscriptionRepository struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

// NewMemorySubscriptionRepository returns a process-local subscription set.
func NewMemorySubscriptionRepository() SubscriptionRepository {
	return &memorySubscriptionRepository{codes: make(map[string]struct{})}
}

func (r *memorySubscriptionRepository) Add(_ context.Context, code string) error {
	r.mu.Lock()
	r.codes[code] = struct{}{}
	r.mu.Unlock()
	return nil
}

func (r *memorySubscriptionRepository) Remove(_ context.Context, code string) error {
	r.mu.Lock()
	delete(r.codes, code)
	r.mu.Unlock()
	return nil
}

func (r *memorySubscriptionRepository) Contains(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codes[code]
	return ok, nil
}

func (r *memorySubscriptionRepository) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.codes))
	for code := range r.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

type redisSubscriptionRepository struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSubscriptionRepository keeps subscriptions in a Redis set so they
// survive restarts and are shared between replicas.
func NewRedisSubscriptionRepository(client redis.UniversalClient, key string) SubscriptionRepository {
	if key == "" {
		key = DefaultSubscriptionKey
	}
	return &redisSubscriptionRepository{client: client, key: key}
}

func (r *redisSubscriptionRepository) Add(ctx context.Context, code string) error {
	return r.client.SAdd(ctx, r.key, code).Err()
}

func (r *redisSubscriptionRepository) Remove(ctx context.Context, code string) error {
	return r.client.SRem(ctx, r.key, code).Err()
}

func (r *redisSubscriptionRepository) Contains(ctx context.Context, code string) (bool, error) {
	return r.client.SIsMember(ctx, r.key, code).Result()
}

func (r *redisSubscriptionRepository) List(ctx context.Context) ([]string, error) {
	codes, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(codes)
	return codes, nil
}
