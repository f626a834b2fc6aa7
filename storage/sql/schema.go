package sql

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

const (
	dialectSQLite = "sqlite"
	dialectMySQL  = "mysql"
)

type migration struct {
	key   string
	query string
}

func migQuery(query string) migration {
	return migration{
		key:   fmt.Sprintf("%x", sha1.Sum([]byte(query)))[0:8],
		query: query,
	}
}

func migrations(dialect string) []migration {
	var queries []migration

	idColumn := "`id` integer not null primary key autoincrement,"
	// Matching columns compare byte for byte; MySQL's default collations
	// fold kana voicing marks and emoji.
	exact := ""
	if dialect == dialectMySQL {
		idColumn = "`id` bigint not null auto_increment primary key,"
		exact = " character set utf8mb4 collate utf8mb4_bin"
	}

	// Members
	queries = append(queries, migQuery(strings.Join([]string{
		"create table members (",
		idColumn,
		"`name`              varchar(100) not null,",
		"`name_key`          varchar(100)" + exact + " not null,",
		"`line_user_id`      varchar(64)" + exact + " null,",
		"`line_display_name` varchar(100)" + exact + " null,",
		"`is_target`         tinyint(1)   default 0 not null,",
		"`created_at`        datetime     default CURRENT_TIMESTAMP not null,",
		"`updated_at`        datetime     default CURRENT_TIMESTAMP not null",
		");",
	}, "")))
	queries = append(queries, migQuery("create index members_name_key on members(`name_key`);"))
	queries = append(queries, migQuery("create index members_line_display_name on members(`line_display_name`);"))

	// NULLs are distinct in both engines, so only linked rows compete.
	queries = append(queries, migQuery("create unique index members_line_user_id on members(`line_user_id`);"))

	return queries
}
