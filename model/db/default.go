package db

import (
	"reflect"
	"sync"
	"time"

	"gitee.com/taoJie_1/faq-agent/utils"
)

// 所有数据库结构体 都需实现的接口
type Dbfunc interface {
	TableName() string
}

// 可能为null的字段, 用指针
type BaseField struct {
	Id        uint  `db:"id" json:"id"`
	CreatedAt int64 `db:"created_at" json:"created_at"`
	UpdatedAt int64 `db:"updated_at" json:"-"`
}

func (b *BaseField) CreatedAtFormat(loc *time.Location) string {
	return utils.TimeFormat(b.CreatedAt, loc)
}

func (b *BaseField) UpdatedAtFormat(loc *time.Location) string {
	return utils.TimeFormat(b.UpdatedAt, loc)
}

var (
	once sync.Once

	baseFieldInfo struct {
		CreatedAtDbTag string
		UpdatedAtDbTag string
	}
)

func GetBaseFieldDbTags() struct {
	CreatedAtDbTag string
	UpdatedAtDbTag string
} {
	once.Do(func() {
		t := reflect.TypeOf(BaseField{})

		if field, found := t.FieldByName("CreatedAt"); found {
			baseFieldInfo.CreatedAtDbTag = field.Tag.Get("db")
		}
		if field, found := t.FieldByName("UpdatedAt"); found {
			baseFieldInfo.UpdatedAtDbTag = field.Tag.Get("db")
		}
	})
	return baseFieldInfo
}
