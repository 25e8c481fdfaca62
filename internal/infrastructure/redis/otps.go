package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/hash"
)

const otpKeyPrefix = "otp_key:"

// OTPRepo manages live OTP challenge records. Records are keyed by the HMAC
// of the email address so the store never holds raw addresses, and carry only
// the hashed code plus a retry counter.
type OTPRepo struct {
	client goredis.UniversalClient
	secret string
}

func NewOTPRepo(client goredis.UniversalClient, secret string) *OTPRepo {
	return &OTPRepo{client: client, secret: secret}
}

func (r *OTPRepo) key(email string) string {
	return otpKeyPrefix + hash.Keyed(r.secret, email)
}

// Put stores the record with the full issuance TTL, replacing any live
// record for the same email (retries reset with it).
func (r *OTPRepo) Put(ctx context.Context, email string, rec *domain.OTPRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if err := r.client.Set(ctx, r.key(email), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	data, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	var rec domain.OTPRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &rec, nil
}

func (r *OTPRepo) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// RecordFailure increments the retry counter inside an optimistic WATCH
// transaction, rewriting the record with its current remaining TTL so a
// failed attempt can never extend the challenge window. When the incremented
// count reaches maxRetries the record is deleted and lockedOut is true.
func (r *OTPRepo) RecordFailure(ctx context.Context, email string, maxRetries int) (lockedOut bool, err error) {
	const maxTxRetries = 4
	key := r.key(email)

	for i := 0; i < maxTxRetries; i++ {
		var exceeded bool
		err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			var rec domain.OTPRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}

			rec.Retries++
			if rec.Retries >= maxRetries {
				exceeded = true
				_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			ttl, err := tx.PTTL(ctx, key).Result()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return goredis.Nil
			}

			updated, err := json.Marshal(&rec)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == goredis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return false, fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
			}
			return false, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return exceeded, nil
	}

	return false, fmt.Errorf("otp record contended: %w", domain.ErrUnavailable)
}

// TTL reports the remaining lifetime of the record for an email, for tests
// and diagnostics.
func (r *OTPRepo) TTL(ctx context.Context, email string) (time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, r.key(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return ttl, nil
}
