package db

import (
	"context"
	"fmt"
)

const (
	linksSchema = `CREATE TABLE IF NOT EXISTS links (
			           id SERIAL PRIMARY KEY,
		        short_url VARCHAR(50) UNIQUE NOT NULL,
		     original_url TEXT NOT NULL,
		            title TEXT NOT NULL DEFAULT '',
		         owner_id INT,
		        is_custom BOOLEAN NOT NULL DEFAULT FALSE,
		     clicks_count INT NOT NULL DEFAULT 0,
		       expires_at TIMESTAMPTZ,
		        is_active BOOLEAN NOT NULL DEFAULT TRUE,
		    password_hash TEXT NOT NULL DEFAULT '',
		       max_clicks INT NOT NULL DEFAULT 0,
		       created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		       updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		       deleted_at TIMESTAMPTZ);

			 CREATE INDEX IF NOT EXISTS idx_links_short_url ON links(short_url);
		     CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
		     CREATE INDEX IF NOT EXISTS idx_links_deleted_at ON links(deleted_at);`

	clicksSchema = `CREATE TABLE IF NOT EXISTS clicks (
			            id SERIAL PRIMARY KEY,
			     event_uid UUID NOT NULL,
			       link_id INT NOT NULL REFERENCES links(id) ON DELETE CASCADE,
			    ip_address INET,
			    user_agent TEXT NOT NULL DEFAULT '',
			       referer TEXT NOT NULL DEFAULT '',
			       browser TEXT NOT NULL DEFAULT '',
		   browser_version TEXT NOT NULL DEFAULT '',
			            os TEXT NOT NULL DEFAULT '',
			    os_version TEXT NOT NULL DEFAULT '',
			   device_type TEXT NOT NULL DEFAULT '',
			       country TEXT NOT NULL DEFAULT '',
			          city TEXT NOT NULL DEFAULT '',
			      timezone TEXT NOT NULL DEFAULT '',
			      latitude DOUBLE PRECISION,
			     longitude DOUBLE PRECISION,
			    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW());

				 CREATE INDEX IF NOT EXISTS idx_clicks_link_id_created_at ON clicks(link_id, created_at);
		         CREATE INDEX IF NOT EXISTS idx_clicks_created_at ON clicks(created_at);`
)

// Migration создаёт таблицы links и clicks, если они ещё не существуют, добавляет индексы
func (d *DataBase) Migration(ctx context.Context) error {

	// создаём таблицу links с индексами
	query := linksSchema
	_, err := d.Pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы links: %w", err)
	}

	// создаём таблицу clicks с индексами
	query = clicksSchema
	_, err = d.Pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы clicks: %w", err)
	}

	return nil
}
