// 包 clocklist：世界时钟列表的 PostgreSQL 存储，记录用户添加的城市及显示顺序
package clocklist

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clock-map/internal/logger"
	"clock-map/internal/metrics"

	_ "github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("clocklist: entry not found")
	ErrEmptyName = errors.New("clocklist: empty name")
)

// DefaultCities：首次启动时写入的演示城市
var DefaultCities = []string{"Los Angeles", "Tokyo", "Paris", "London", "Sydney", "Berlin", "Rio de Janeiro", "Moscow", "Ravenna"}

// Entry：时钟列表中的一行；Name 原样保存，与解析器的精确匹配保持一致
type Entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Store: 数据库访问入口，持有连接池
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db, log: logger.Component("clocklist")} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const selectEntries = `SELECT id, name, label, position, created_at FROM _clock_entries ORDER BY position, id`

// List: 按显示顺序返回全部条目
func (s *Store) List(ctx context.Context) (out []Entry, err error) {
	defer observe("list", &err)
	rows, err := s.db.QueryContext(ctx, selectEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Label, &e.Position, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Names: 仅返回名称，供地图渲染使用
func (s *Store) Names(ctx context.Context) ([]string, error) {
	es, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name
	}
	return names, nil
}

// Add: 追加到列表末尾；名称已存在时只更新标签，位置不变
// 约束：空白名称拒绝；label 为空时使用名称
func (s *Store) Add(ctx context.Context, name, label string) (e *Entry, err error) {
	defer observe("add", &err)
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if label == "" {
		label = name
	}
	row := s.db.QueryRowContext(ctx, `INSERT INTO _clock_entries(name, label, position)
        VALUES($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM _clock_entries))
        ON CONFLICT (name) DO UPDATE SET label=EXCLUDED.label
        RETURNING id, name, label, position, created_at`, name, label)
	var out Entry
	if err := row.Scan(&out.ID, &out.Name, &out.Label, &out.Position, &out.CreatedAt); err != nil {
		return nil, err
	}
	s.log.Debug("clock_entry_add", "name", name, "position", out.Position)
	return &out, nil
}

// Remove: 名称不存在时返回 ErrNotFound
func (s *Store) Remove(ctx context.Context, name string) (err error) {
	defer observe("remove", &err)
	res, err := s.db.ExecContext(ctx, `DELETE FROM _clock_entries WHERE name=$1`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Debug("clock_entry_remove", "name", name)
	return nil
}

// SeedDefaults: 表为空时在单个事务内写入 DefaultCities，返回写入条数
func (s *Store) SeedDefaults(ctx context.Context) (n int, err error) {
	defer observe("seed", &err)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM _clock_entries`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for i, name := range DefaultCities {
		if _, err := tx.ExecContext(ctx, `INSERT INTO _clock_entries(name, label, position) VALUES($1, $2, $3) ON CONFLICT (name) DO NOTHING`, name, name, i); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.log.Info("clock_entries_seeded", "count", len(DefaultCities))
	return len(DefaultCities), nil
}

func observe(op string, err *error) {
	status := "ok"
	switch {
	case *err == nil:
	case errors.Is(*err, ErrNotFound), errors.Is(*err, ErrEmptyName):
		status = "rejected"
	default:
		status = "error"
	}
	metrics.ClockListOpsTotal.WithLabelValues(op, status).Inc()
}
