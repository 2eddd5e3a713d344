package gormpersistence

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry 是 MySQL 唯一约束冲突的错误码
const mysqlDuplicateEntry = 1062

// isDuplicateEntryError 检查是否是 MySQL 唯一约束冲突
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
