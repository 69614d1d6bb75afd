package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRow is the backing table for PGStore: one row per path, document
// body as jsonb.
type DocumentRow struct {
	Path      string    `gorm:"primaryKey;column:path"`
	Data      string    `gorm:"column:data;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DocumentRow) TableName() string { return "documents" }

// PGStore keeps documents in Postgres and fans out change notifications over
// Redis pub/sub, so subscribers on other instances see writes too.
//
// Txn takes a row lock on the path for the duration of the callback, which
// serializes concurrent read-modify-write sequences on the same document.
type PGStore struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewPGStore(db *gorm.DB, rdb *redis.Client) *PGStore {
	return &PGStore{db: db, rdb: rdb}
}

// Migrate creates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRow{})
}

type changeEvent struct {
	Path string   `json:"path"`
	Data Document `json:"data"`
}

func (s *PGStore) Get(ctx context.Context, path string) (Document, error) {
	var row DocumentRow
	err := s.db.WithContext(ctx).First(&row, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal([]byte(row.Data), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *PGStore) Set(ctx context.Context, path string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&DocumentRow{Path: path, Data: string(data)}).Error
	if err != nil {
		return err
	}
	s.publish(ctx, path, doc)
	return nil
}

func (s *PGStore) Update(ctx context.Context, path string, fields Document) error {
	return s.Txn(ctx, path, func(current Document) (Document, error) {
		if current == nil {
			current = Document{}
		}
		for k, v := range fields {
			current[k] = v
		}
		return current, nil
	})
}

func (s *PGStore) Delete(ctx context.Context, path string) error {
	err := s.db.WithContext(ctx).Delete(&DocumentRow{}, "path = ?", path).Error
	if err != nil {
		return err
	}
	s.publish(ctx, path, nil)
	return nil
}

func (s *PGStore) Txn(ctx context.Context, path string, fn TxnFunc) error {
	var written Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DocumentRow
		var current Document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "path = ?", path).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// path empty, fn sees nil
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(row.Data), &current); err != nil {
				return err
			}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			UpdateAll: true,
		}).Create(&DocumentRow{Path: path, Data: string(data)}).Error; err != nil {
			return err
		}
		written = next
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, path, written)
	return nil
}

func (s *PGStore) List(ctx context.Context, prefix string) (map[string]Document, error) {
	var rows []DocumentRow
	err := s.db.WithContext(ctx).
		Where("path LIKE ?", prefix+"%").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]Document, len(rows))
	for _, row := range rows {
		var doc Document
		if err := json.Unmarshal([]byte(row.Data), &doc); err != nil {
			return nil, err
		}
		out[row.Path] = doc
	}
	return out, nil
}

func (s *PGStore) Subscribe(prefix string, fn SubscribeFunc) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := s.rdb.PSubscribe(ctx, "doc:"+prefix+"*")
	go func() {
		for msg := range sub.Channel() {
			var ev changeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logrus.Warnf("store: bad change event on %s: %v", msg.Channel, err)
				continue
			}
			fn(ev.Path, ev.Data)
		}
	}()
	return func() {
		cancel()
		_ = sub.Close()
	}, nil
}

func (s *PGStore) publish(ctx context.Context, path string, doc Document) {
	payload, err := json.Marshal(changeEvent{Path: path, Data: doc})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, "doc:"+path, payload).Err(); err != nil {
		// Notification loss is tolerable; the document write already landed.
		logrus.Warnf("store: publish change for %s failed: %v", path, err)
	}
}
