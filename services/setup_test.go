package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"blogapp/config"
	"blogapp/global"
	"blogapp/models"
	"blogapp/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	global.Db = db
	t.Cleanup(func() {
		global.Db = nil
		sqlDB.Close()
	})
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	global.RedisDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		global.RedisDB.Close()
		global.RedisDB = nil
	})
	return mr
}

func seedUser(t *testing.T, id string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Name: "User " + id, Email: id + "@example.com", Password: "x", Role: models.RoleUser}
	if err := global.Db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return user
}

func seedArticle(t *testing.T, id, author string) *models.Article {
	t.Helper()
	article := &models.Article{ID: id, Title: "Title " + id, Content: "body", Author: author, Published: true}
	if err := global.Db.Create(article).Error; err != nil {
		t.Fatalf("seed article %s: %v", id, err)
	}
	return article
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []InteractionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event InteractionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func recordEvents(t *testing.T) *recordingPublisher {
	t.Helper()
	p := &recordingPublisher{}
	Events = p
	t.Cleanup(func() { Events = nil })
	return p
}
