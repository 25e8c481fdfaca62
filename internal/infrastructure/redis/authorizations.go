package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/go-auth-api/internal/domain"
)

// authorizationRecord is the wire form of a domain.Authorization. The
// tri-state active flag is flattened to an optional JSON boolean: absent
// means the account row has not been consulted for this session yet.
type authorizationRecord struct {
	UserID             string   `json:"userId"`
	AuthorizationToken string   `json:"authorizationToken"`
	IsAuthorize        bool     `json:"isAuthorize"`
	Expiration         int64    `json:"expiration"`
	IsActive           *bool    `json:"isActive,omitempty"`
	Roles              []string `json:"roles,omitempty"`
}

func (r *authorizationRecord) toDomain() *domain.Authorization {
	a := &domain.Authorization{
		UserID:             r.UserID,
		AuthorizationToken: r.AuthorizationToken,
		IsAuthorize:        r.IsAuthorize,
		Expiration:         r.Expiration,
		Active:             domain.ActiveUnknown,
		Roles:              r.Roles,
	}
	if r.IsActive != nil {
		if *r.IsActive {
			a.Active = domain.ActiveYes
		} else {
			a.Active = domain.ActiveNo
		}
	}
	return a
}

func recordFromDomain(a *domain.Authorization) *authorizationRecord {
	r := &authorizationRecord{
		UserID:             a.UserID,
		AuthorizationToken: a.AuthorizationToken,
		IsAuthorize:        a.IsAuthorize,
		Expiration:         a.Expiration,
		Roles:              a.Roles,
	}
	switch a.Active {
	case domain.ActiveYes:
		v := true
		r.IsActive = &v
	case domain.ActiveNo:
		v := false
		r.IsActive = &v
	}
	return r
}

// AuthorizationRepo manages per-login authorization records. The session
// token itself is the Redis key; the token is 256 bits of entropy, so no
// namespace prefix is needed and the stored layout stays inspectable.
type AuthorizationRepo struct {
	client goredis.UniversalClient
}

func NewAuthorizationRepo(client goredis.UniversalClient) *AuthorizationRepo {
	return &AuthorizationRepo{client: client}
}

func (r *AuthorizationRepo) Put(ctx context.Context, sessionToken string, a *domain.Authorization, ttl time.Duration) error {
	data, err := json.Marshal(recordFromDomain(a))
	if err != nil {
		return fmt.Errorf("marshal authorization: %w", err)
	}
	if err := r.client.Set(ctx, sessionToken, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *AuthorizationRepo) Get(ctx context.Context, sessionToken string) (*domain.Authorization, error) {
	data, err := r.client.Get(ctx, sessionToken).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("authorization not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	var rec authorizationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal authorization: %w", err)
	}
	return rec.toDomain(), nil
}

// Revoke deletes the record. Reports whether a record existed.
func (r *AuthorizationRepo) Revoke(ctx context.Context, sessionToken string) (bool, error) {
	n, err := r.client.Del(ctx, sessionToken).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return n > 0, nil
}

// Authorize flips IsAuthorize on the stored record without touching its
// remaining TTL.
func (r *AuthorizationRepo) Authorize(ctx context.Context, sessionToken string) error {
	return r.update(ctx, sessionToken, func(rec *authorizationRecord) {
		rec.IsAuthorize = true
	})
}

// SetActive attaches the account-active verdict and role list to the stored
// record without touching its remaining TTL.
func (r *AuthorizationRepo) SetActive(ctx context.Context, sessionToken string, active bool, roles []string) error {
	return r.update(ctx, sessionToken, func(rec *authorizationRecord) {
		rec.IsActive = &active
		rec.Roles = roles
	})
}

// update performs a TTL-preserving field merge: read the record and its
// remaining PTTL under WATCH, apply mutate, and rewrite with that same TTL.
// A plain SET would silently reset the session lifetime. Retries a bounded
// number of times on transaction contention.
func (r *AuthorizationRepo) update(ctx context.Context, sessionToken string, mutate func(*authorizationRecord)) error {
	const maxTxRetries = 4

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
			data, err := tx.Get(ctx, sessionToken).Bytes()
			if err != nil {
				return err
			}
			var rec authorizationRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}

			ttl, err := tx.PTTL(ctx, sessionToken).Result()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return goredis.Nil
			}

			mutate(&rec)

			updated, err := json.Marshal(&rec)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Set(ctx, sessionToken, updated, ttl)
				return nil
			})
			return err
		}, sessionToken)

		if err == goredis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return fmt.Errorf("authorization not found: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return nil
	}

	return fmt.Errorf("authorization record contended: %w", domain.ErrUnavailable)
}

// TTL reports the remaining lifetime of a session record.
func (r *AuthorizationRepo) TTL(ctx context.Context, sessionToken string) (time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, sessionToken).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return ttl, nil
}
