// Package store persists show profiles, drafted scripts and rendered audio with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrShowExists = errors.New("show already exists")
	ErrInvalid    = errors.New("invalid record")
)

type Store struct {
	db *gorm.DB
}

// Open connects to a sqlite:// or postgres:// database and migrates the schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	log := logging.NewLogger(ctx)

	dialector, isSQLite, err := dialectorFor(databaseURL)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	if isSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	store, err := New(ctx, db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, utils.WrapIfNotNil(err)
	}
	return store, nil
}

// New wraps an existing connection and runs AutoMigrate.
func New(ctx context.Context, db *gorm.DB) (*Store, error) {
	if err := db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return &Store{db: db}, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, bool, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	scheme, rest, found := strings.Cut(databaseURL, "://")
	if !found {
		return nil, false, fmt.Errorf("database url %q has no scheme (want sqlite:// or postgres://)", databaseURL)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		if strings.TrimSpace(rest) == "" {
			return nil, false, errors.New("sqlite database url needs a path")
		}
		return sqlite.Open(rest), true, nil
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return utils.WrapIfNotNil(err)
	}
	return utils.WrapIfNotNil(sqlDB.Close())
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return utils.WrapIfNotNil(err)
	}
	return utils.WrapIfNotNil(sqlDB.PingContext(ctx))
}

func notFound(err error, what string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %v", ErrNotFound, what, key)
	}
	return err
}

func orderedHosts(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (s *Store) CreateShow(ctx context.Context, profile model.ShowProfile) (*Show, error) {
	log := logging.NewLogger(ctx)

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		err := fmt.Errorf("%w: show name is required", ErrInvalid)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	if _, err := s.GetShowByName(ctx, name); err == nil {
		err = fmt.Errorf("%w: %s", ErrShowExists, name)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, utils.WrapIfNotNil(err)
	}

	show := Show{
		Name:        name,
		Description: strings.TrimSpace(profile.Description),
		Hosts:       hostsFromProfile(profile),
	}
	if err := s.db.WithContext(ctx).Create(&show).Error; err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	log.Infof("created show id=%d name=%q hosts=%d", show.ID, show.Name, len(show.Hosts))
	return &show, nil
}

// UpdateShow replaces the show's description and hosts. The name may change as long as it
// stays unique.
func (s *Store) UpdateShow(ctx context.Context, id uint, profile model.ShowProfile) (*Show, error) {
	log := logging.NewLogger(ctx)

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		err := fmt.Errorf("%w: show name is required", ErrInvalid)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		show := Show{}
		if err := tx.First(&show, id).Error; err != nil {
			return notFound(err, "show", id)
		}

		var clash int64
		if err := tx.Model(&Show{}).Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return fmt.Errorf("%w: %s", ErrShowExists, name)
		}

		updates := map[string]any{"name": name, "description": strings.TrimSpace(profile.Description)}
		if err := tx.Model(&show).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("show_id = ?", id).Delete(&Host{}).Error; err != nil {
			return err
		}
		hosts := hostsFromProfile(profile)
		for i := range hosts {
			hosts[i].ShowID = id
		}
		if len(hosts) > 0 {
			return tx.Create(&hosts).Error
		}
		return nil
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return s.GetShow(ctx, id)
}

func (s *Store) GetShow(ctx context.Context, id uint) (*Show, error) {
	show := Show{}
	err := s.db.WithContext(ctx).Preload("Hosts", orderedHosts).First(&show, id).Error
	if err != nil {
		return nil, utils.WrapIfNotNil(notFound(err, "show", id))
	}
	return &show, nil
}

func (s *Store) GetShowByName(ctx context.Context, name string) (*Show, error) {
	show := Show{}
	err := s.db.WithContext(ctx).
		Preload("Hosts", orderedHosts).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&show).Error
	if err != nil {
		return nil, utils.WrapIfNotNil(notFound(err, "show", name))
	}
	return &show, nil
}

func (s *Store) ListShows(ctx context.Context) ([]Show, error) {
	shows := make([]Show, 0)
	if err := s.db.WithContext(ctx).Preload("Hosts", orderedHosts).Order("name ASC").Find(&shows).Error; err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return shows, nil
}

// Draft is a freshly written episode script with its research trail.
type Draft struct {
	Content     string
	Facts       []string
	ResearchURL string
}

// SaveDraft records a podcast episode for the show and its script.
func (s *Store) SaveDraft(ctx context.Context, show *Show, draft Draft) (*Script, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(draft.Content) == "" {
		err := fmt.Errorf("%w: script content is required", ErrInvalid)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	script := Script{
		Content:     draft.Content,
		Facts:       draft.Facts,
		ResearchURL: draft.ResearchURL,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if show == nil {
			return tx.Create(&script).Error
		}

		hostNames := make([]string, 0, len(show.Hosts))
		for _, host := range show.Hosts {
			hostNames = append(hostNames, host.Name)
		}
		podcast := Podcast{
			ShowID:      &show.ID,
			Name:        show.Name,
			Description: show.Description,
			Hosts:       hostNames,
			Research:    draft.ResearchURL,
		}
		if err := tx.Create(&podcast).Error; err != nil {
			return err
		}
		script.ShowID = &show.ID
		script.PodcastID = &podcast.ID
		return tx.Create(&script).Error
	})
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	log.Infof("saved script id=%d chars=%d", script.ID, len(script.Content))
	return &script, nil
}

func (s *Store) GetScript(ctx context.Context, id uint) (*Script, error) {
	script := Script{}
	if err := s.db.WithContext(ctx).First(&script, id).Error; err != nil {
		return nil, utils.WrapIfNotNil(notFound(err, "script", id))
	}
	return &script, nil
}

// ListScripts returns scripts newest first without their audio payloads. A zero showID
// lists every script.
func (s *Store) ListScripts(ctx context.Context, showID uint) ([]Script, error) {
	query := s.db.WithContext(ctx).Omit("Audio").Order("id DESC")
	if showID != 0 {
		query = query.Where("show_id = ?", showID)
	}
	scripts := make([]Script, 0)
	if err := query.Find(&scripts).Error; err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return scripts, nil
}

// RenderedAudio is the outcome of one render stored against a script.
type RenderedAudio struct {
	Data     []byte
	Format   string
	Warnings []model.LineWarning
	RunID    string
}

func (s *Store) AttachAudio(ctx context.Context, scriptID uint, audio RenderedAudio) error {
	log := logging.NewLogger(ctx)
	script := Script{ID: scriptID}
	result := s.db.WithContext(ctx).Model(&script).Select("Audio", "AudioFormat", "Warnings", "RunID").Updates(Script{
		Audio:       audio.Data,
		AudioFormat: audio.Format,
		Warnings:    audio.Warnings,
		RunID:       audio.RunID,
	})
	if result.Error != nil {
		log.Errorf("error: %v", result.Error)
		return utils.WrapIfNotNil(result.Error)
	}
	if result.RowsAffected == 0 {
		err := fmt.Errorf("%w: script %d", ErrNotFound, scriptID)
		log.Errorf("error: %v", err)
		return utils.WrapIfNotNil(err)
	}
	log.Infof("attached audio script=%d bytes=%d format=%s warnings=%d", scriptID, len(audio.Data), audio.Format, len(audio.Warnings))
	return nil
}
