package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"apiprobe/internal/oauth"
)

const connectTimeout = 10 * time.Second

// ProbeCredential is one persisted token set, keyed by (user_id, provider).
// Token JSON is stored encrypted; the plaintext never reaches the database.
type ProbeCredential struct {
	UserID          string `gorm:"primaryKey;type:text"`
	Provider        string `gorm:"primaryKey;type:text"`
	EncryptedTokens string `gorm:"type:text;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ProbeCredential) TableName() string { return "apiprobe.credentials" }

// Open connects to the credentials database. The DSN is pinged with a direct
// pgx connection first so a bad DSN fails inside connectTimeout instead of
// surfacing as a late gorm error mid-flow.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	conn, err := pgx.Connect(pingCtx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to credentials database")
	}
	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close(pingCtx)
		return nil, errors.Wrap(err, "ping credentials database")
	}
	if err := conn.Close(pingCtx); err != nil {
		log.Printf("[store] closing preflight connection: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open credentials database")
	}
	if err := db.AutoMigrate(&ProbeCredential{}); err != nil {
		return nil, errors.Wrap(err, "migrate credentials schema")
	}
	return db, nil
}

// DBStore persists token sets into the credentials database, AES-256-GCM
// encrypted, one row per (user, provider), upserted in place.
type DBStore struct {
	DB       *gorm.DB
	Key      []byte
	UserID   string
	Provider string
}

func (s *DBStore) Save(ctx context.Context, ts *oauth.TokenSet) error {
	raw, err := json.Marshal(ts)
	if err != nil {
		return errors.Wrap(err, "marshal token set")
	}
	enc, err := encrypt(s.Key, raw)
	if err != nil {
		return errors.Wrap(err, "encrypt token set")
	}

	cred := ProbeCredential{
		UserID:          s.UserID,
		Provider:        s.Provider,
		EncryptedTokens: enc,
	}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"encrypted_tokens", "updated_at"}),
	}).Create(&cred).Error
	if err != nil {
		return errors.Wrap(err, "upsert credential")
	}
	return nil
}

// Load returns the stored TokenSet for (user, provider), or nil when absent.
func (s *DBStore) Load(ctx context.Context) (*oauth.TokenSet, error) {
	var cred ProbeCredential
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND provider = ?", s.UserID, s.Provider).
		First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load credential")
	}
	plain, err := decrypt(s.Key, cred.EncryptedTokens)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt token set")
	}
	var ts oauth.TokenSet
	if err := json.Unmarshal(plain, &ts); err != nil {
		return nil, errors.Wrap(err, "decode token set")
	}
	return &ts, nil
}
