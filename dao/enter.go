package dao

import (
	"github.com/jmoiron/sqlx"
)

var (
	DB *sqlx.DB
	// CanLock mysql支持 SELECT ... FOR UPDATE, sqlite为false
	CanLock bool
	utils   = new(dbUtils)
	App     = new(AppGroup)
)

type AppGroup struct {
	FaqDb         FaqDb
	PatternDb     PatternDb
	InteractionDb InteractionDb
}
