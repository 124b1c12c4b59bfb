// Package repository реализует хранилище записей пользователей на основе Redis.
// Запись хранится как плоский JSON-документ под ключом user:<telegram id>.
// Помимо простых Get/Save есть Update — оптимистичное read-modify-write
// через WATCH/MULTI, чтобы несколько экземпляров бота могли разделять
// одно хранилище без гонок.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/kittygen-bot/internal/config"
	"github.com/magabrotheeeer/kittygen-bot/internal/models"
)

// максимум повторов CAS-цикла при конкурентных изменениях одного ключа
const maxUpdateRetries = 5

// Storage инкапсулирует подключение к Redis и реализует методы
// работы с записями пользователей.
type Storage struct {
	DB *redis.Client
}

// New создаёт подключение к Redis и проверяет его доступность.
func New(ctx context.Context, cfg config.RedisConnection) (*Storage, error) {
	const op = "storage.New"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

func accountKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// Get возвращает запись пользователя. Для неизвестного пользователя
// возвращается нулевая запись, ошибки нет.
func (s *Storage) Get(ctx context.Context, userID int64) (*models.Account, error) {
	const op = "storage.Get"

	raw, err := s.DB.Get(ctx, accountKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return &models.Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var acc models.Account
	if err := json.Unmarshal([]byte(raw), &acc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &acc, nil
}

// Save сохраняет запись пользователя целиком.
func (s *Storage) Save(ctx context.Context, userID int64, acc *models.Account) error {
	const op = "storage.Save"

	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.DB.Set(ctx, accountKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update атомарно изменяет запись пользователя: читает её под WATCH,
// применяет fn и записывает результат в MULTI-транзакции. Если ключ
// успел измениться, цикл повторяется. Ошибка из fn прерывает обновление,
// запись остаётся нетронутой.
func (s *Storage) Update(ctx context.Context, userID int64, fn func(acc *models.Account) error) (*models.Account, error) {
	const op = "storage.Update"
	key := accountKey(userID)

	var updated *models.Account
	txf := func(tx *redis.Tx) error {
		acc := &models.Account{}
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// новой записи в хранилище ещё нет
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(raw), acc); err != nil {
				return err
			}
		}

		if err := fn(acc); err != nil {
			return err
		}

		data, err := json.Marshal(acc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = acc
		return nil
	}

	for range maxUpdateRetries {
		err := s.DB.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, fmt.Errorf("%s: %w", op, redis.TxFailedErr)
}
